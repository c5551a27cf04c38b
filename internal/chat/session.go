package chat

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Status is a session's position in its channel's membership model.
type Status int32

const (
	StatusQueue Status = iota
	StatusConnected
	StatusDisconnected
)

// Session is one client's connection to a channel. All mutable fields are
// accessed through atomics so the AFK watchdog, the admin console, and the
// session's own receive loop can touch them without a shared lock.
type Session struct {
	name   string
	connID uuid.UUID

	conn   net.Conn
	reader *bufio.Reader
	lister ChannelLister

	writeMu sync.Mutex

	channel      atomic.Pointer[Channel]
	status       atomic.Int32
	mutedUntil   atomic.Int64
	lastActivity atomic.Int64
	kicked       atomic.Bool
}

func newSession(name string, conn net.Conn, reader *bufio.Reader, lister ChannelLister) *Session {
	s := &Session{
		name:   name,
		connID: uuid.New(),
		conn:   conn,
		reader: reader,
		lister: lister,
	}
	s.status.Store(int32(StatusQueue))
	s.lastActivity.Store(time.Now().Unix())
	return s
}

func (s *Session) Name() string   { return s.name }
func (s *Session) ConnID() string { return s.connID.String() }

func (s *Session) Status() Status       { return Status(s.status.Load()) }
func (s *Session) setStatus(st Status)  { s.status.Store(int32(st)) }
func (s *Session) Kicked() bool         { return s.kicked.Load() }
func (s *Session) setChannel(c *Channel) { s.channel.Store(c) }
func (s *Session) Channel() *Channel    { return s.channel.Load() }

func (s *Session) touchActivity() { s.lastActivity.Store(time.Now().Unix()) }

// writeLine writes msg to the connection, serialized against concurrent
// broadcasts and the session's own replies.
func (s *Session) writeLine(msg string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.Write([]byte(msg))
	if err != nil {
		log.Printf("[session %s] write error: %v", s.name, err)
	}
}

func (s *Session) closeConn() {
	s.conn.Close()
}

// Notify pushes a server-notice-formatted line to this session, for use by
// callers outside the chat package (the admin console) that cannot reach
// writeLine directly.
func (s *Session) Notify(format string, args ...any) {
	s.writeLine(serverNotice(format, args...))
}

// Mute sets mutedUntil seconds in the future. duration <= 0 clears any
// existing mute.
func (s *Session) Mute(duration time.Duration) {
	if duration <= 0 {
		s.mutedUntil.Store(0)
		return
	}
	s.mutedUntil.Store(time.Now().Add(duration).Unix())
}

func (s *Session) muteRemaining() int64 {
	until := s.mutedUntil.Load()
	if until == 0 {
		return 0
	}
	remain := until - time.Now().Unix()
	if remain <= 0 {
		return 0
	}
	return remain
}

// Kick marks the session kicked (suppresses the channel's own leave log,
// since the console already logged the kick), removes it from its
// channel's membership synchronously, and closes its connection. The
// membership removal happens here rather than being left for the
// session's own receive loop to discover via RANDEXIT, so that an admin
// kick is atomic with respect to concurrent occupancy queries.
func (s *Session) Kick() {
	s.kicked.Store(true)
	if ch := s.Channel(); ch != nil {
		ch.Process(opRemove, s)
	}
	s.closeConn()
}

// watchAFK disconnects a CONNECTED session that has been idle for
// afkTimeout. It keeps waiting while the session is QUEUE and exits once the
// session is DISCONNECTED by any means, including its own exit.
func (s *Session) watchAFK() {
	ticker := time.NewTicker(afkPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if s.Status() == StatusDisconnected {
			return
		}
		if s.Status() != StatusConnected {
			continue
		}
		idle := time.Now().Unix() - s.lastActivity.Load()
		if idle >= int64(afkTimeout.Seconds()) {
			if ch := s.Channel(); ch != nil {
				ch.Process(opTimeout, s)
			}
			s.closeConn()
			return
		}
	}
}

// run is the session's receive loop: read a line, dispatch it, repeat,
// until the connection closes or /quit is issued. It always performs the
// matching membership removal exactly once before returning.
func (s *Session) run() {
	defer func() {
		if s.Status() != StatusDisconnected {
			if ch := s.Channel(); ch != nil {
				ch.Process(opRemove, s)
			}
		}
		s.closeConn()
	}()

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if s.Status() != StatusDisconnected {
				if ch := s.Channel(); ch != nil {
					ch.Process(opRandExit, s)
				}
			}
			return
		}
		text := trimLine(line)
		if text == "" {
			continue
		}
		if !s.dispatch(text) {
			return
		}
	}
}

// dispatch handles a single input line. It returns false when the session
// should stop reading (after /quit).
func (s *Session) dispatch(text string) bool {
	if s.Status() == StatusQueue {
		s.writeLine(serverNotice("You are still in the waiting queue."))
		return true
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "/quit":
		s.writeLine(serverNotice("Goodbye."))
		if ch := s.Channel(); ch != nil {
			ch.Process(opRemove, s)
		}
		return false

	case "/list":
		s.handleList()

	case "/whisper":
		s.handleWhisper(fields)

	case "/switch":
		s.handleSwitch(fields)

	case "/send":
		s.handleSendRequest(fields)

	default:
		s.handleBroadcast(text)
	}

	if s.muteRemaining() == 0 {
		s.touchActivity()
	}
	return true
}

func (s *Session) handleBroadcast(text string) {
	ch := s.Channel()
	if ch == nil {
		return
	}
	if remain := s.muteRemaining(); remain > 0 {
		s.writeLine(serverNotice("You are still muted for %d seconds.", remain))
		return
	}
	ch.mu.Lock()
	ch.broadcastLocked(userLine(s.name, text))
	ch.mu.Unlock()
}

// handleList replies with one literal "[Channel] <name> <connected>/<capacity>/<queued>."
// line per known channel, newline-joined with no trailing newline and no
// serverNotice wrapper, per the wire protocol's /list reply format.
func (s *Session) handleList() {
	if s.lister == nil {
		return
	}
	channels := s.lister.Channels()
	lines := make([]string, 0, len(channels))
	for _, c := range channels {
		stat := c.Stat()
		lines = append(lines, fmt.Sprintf("[Channel] %s %d/%d/%d.",
			stat.Name, stat.Connected, stat.Capacity, stat.Queued))
	}
	s.writeLine(strings.Join(lines, "\n"))
}

// handleWhisper delivers a private message to a single named peer in the
// same channel. A malformed command (fewer than two tokens) and a whisper
// to an absent peer both reproduce the original server's "is not here"
// wording, including its leading-space quirk for the malformed case.
func (s *Session) handleWhisper(fields []string) {
	if remain := s.muteRemaining(); remain > 0 {
		s.writeLine(serverNotice("You are still muted for %d seconds.", remain))
		return
	}
	if len(fields) < 2 {
		s.writeLine(serverNotice(" is not here."))
		return
	}
	targetName := fields[1]
	text := strings.Join(fields[2:], " ")

	ch := s.Channel()
	if ch == nil {
		return
	}
	target := ch.Lookup(targetName)
	if target == nil {
		s.writeLine(serverNotice("%s is not here.", targetName))
		return
	}
	target.writeLine(whisperLine(s.name, text))
}

// handleSwitch moves s from its current channel into the named one. The
// destination is checked for a name collision before s is removed from
// its origin, so a refused switch leaves s's membership untouched.
func (s *Session) handleSwitch(fields []string) {
	if s.lister == nil {
		return
	}
	if len(fields) != 2 {
		s.writeLine(serverNotice(" does not exist."))
		return
	}
	target := fields[1]

	dest, ok := s.lister.Lookup(target)
	if !ok {
		s.writeLine(serverNotice("%s does not exist.", target))
		return
	}
	if dest.LookupAny(s.name) != nil {
		s.writeLine(serverNotice("Cannot switch to the %s channel.", target))
		return
	}

	origin := s.Channel()
	if origin != nil {
		origin.Process(opRemove, s)
	}
	dest.Process(opAdd, s)
}

