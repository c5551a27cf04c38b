package chat

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"
)

// transferBufferSize bounds a single peer file transfer payload, matching
// the protocol's single-recv-buffer limitation. Larger files are truncated;
// this is an accepted limitation, not a correctness requirement.
const transferBufferSize = 2048

// afkTimeout is how long a CONNECTED session may go without activity
// before it is disconnected as AFK.
const afkTimeout = 100 * time.Second

// afkPollInterval bounds how often the watchdog re-checks a session so that
// disconnection is observed promptly after the deadline passes.
const afkPollInterval = 100 * time.Millisecond

func clockStamp() string {
	s, err := strftime.Format("%H:%M:%S", time.Now())
	if err != nil {
		return time.Now().Format("15:04:05")
	}
	return s
}

// serverNotice formats a server-originated notice line, newline-terminated.
func serverNotice(format string, args ...any) string {
	return fmt.Sprintf("[Server message (%s)] %s\n", clockStamp(), fmt.Sprintf(format, args...))
}

// userLine formats a broadcast chat line from name, newline-terminated.
func userLine(name, text string) string {
	return fmt.Sprintf("[%s (%s)] %s\n", name, clockStamp(), text)
}

// whisperLine formats a private message delivered to its recipient.
func whisperLine(from, text string) string {
	return fmt.Sprintf("[%s whispers to you: (%s)] %s\n", from, clockStamp(), text)
}
