package chat

import (
	"log"
	"sync/atomic"
)

// transferredBytes is a cumulative, process-wide count of file bytes
// relayed through handleSendRequest, read by the metrics package via
// TransferredBytes.
var transferredBytes atomic.Int64

// TransferredBytes reports the cumulative number of file bytes relayed
// through peer file transfers since process start.
func TransferredBytes() int64 {
	return transferredBytes.Load()
}

// handleSendRequest implements the whole of the mediated file transfer
// exchange, mirroring the original server's single synchronous send_file
// routine: the server replies to the SENDER only with /send_ok or
// /send_bad_user, and the recipient is never consulted. On /send_ok the
// sender immediately pushes one buffered read's worth of raw file bytes,
// or the literal control token /bad_path if the local file could not be
// opened; there is no accept/decline step on the recipient's side. The
// server relays /sending <path> followed by the raw bytes straight to
// the recipient's socket.
func (s *Session) handleSendRequest(fields []string) {
	if len(fields) != 3 {
		return
	}
	targetName, path := fields[1], fields[2]

	ch := s.Channel()
	if ch == nil {
		return
	}
	target := ch.Lookup(targetName)
	if target == nil {
		s.writeLine("/send_bad_user\n")
		return
	}

	s.writeLine("/send_ok\n")

	buf := make([]byte, transferBufferSize)
	n, err := s.reader.Read(buf)
	if err != nil && n == 0 {
		log.Printf("[session %s] file transfer read error: %v", s.name, err)
		return
	}
	payload := buf[:n]

	if trimLine(string(payload)) == "/bad_path" {
		return
	}

	target.writeLine("/sending " + path + "\n")
	target.writeMu.Lock()
	_, werr := target.conn.Write(payload)
	target.writeMu.Unlock()
	if werr != nil {
		log.Printf("[session %s] file transfer write error: %v", s.name, werr)
		return
	}

	transferredBytes.Add(int64(n))
	log.Printf("[session %s] sent %s to %s (%d bytes)", s.name, path, target.Name(), n)
}
