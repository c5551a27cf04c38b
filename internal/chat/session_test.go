package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_BroadcastReachesOtherMembers(t *testing.T) {
	c := NewChannel("common", 9001, 5)
	s1, _, lines1 := newTestSession(t, "alice", nil)
	c.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	s2, _, lines2 := newTestSession(t, "bob", nil)
	c.Process(opAdd, s2)
	expectLine(t, lines2, "Welcome")
	expectLine(t, lines2, "bob has joined")
	expectLine(t, lines1, "bob has joined")

	s1.handleBroadcast("hello there")
	expectLine(t, lines2, "[alice")
}

func TestSession_MuteSuppressesBroadcastAndWhisper(t *testing.T) {
	c := NewChannel("common", 9001, 5)
	s1, _, lines1 := newTestSession(t, "alice", nil)
	c.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	s1.Mute(5 * time.Second)
	s1.handleBroadcast("hello")
	line := expectLine(t, lines1, "muted")
	assert.Contains(t, line, "still muted for")

	s1.handleWhisper([]string{"/whisper", "bob", "hi"})
	expectLine(t, lines1, "still muted for")
}

func TestSession_MuteDoesNotResetActivityClock(t *testing.T) {
	c := NewChannel("common", 9001, 5)
	s1, _, lines1 := newTestSession(t, "alice", nil)
	c.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	before := s1.lastActivity.Load()
	s1.Mute(5 * time.Second)
	s1.dispatch("this will be rejected")
	expectLine(t, lines1, "muted")
	assert.Equal(t, before, s1.lastActivity.Load())
}

func TestSession_WhisperDeliversOnlyToTarget(t *testing.T) {
	c := NewChannel("common", 9001, 5)
	s1, _, lines1 := newTestSession(t, "alice", nil)
	c.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	s2, _, lines2 := newTestSession(t, "bob", nil)
	c.Process(opAdd, s2)
	expectLine(t, lines2, "Welcome")
	expectLine(t, lines2, "bob has joined")
	expectLine(t, lines1, "bob has joined")

	s1.handleWhisper([]string{"/whisper", "bob", "secret", "message"})
	expectLine(t, lines2, "whispers to you")
}

func TestSession_WhisperUnknownUserReportsError(t *testing.T) {
	c := NewChannel("common", 9001, 5)
	s1, _, lines1 := newTestSession(t, "alice", nil)
	c.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	s1.handleWhisper([]string{"/whisper", "ghost", "hello"})
	expectLine(t, lines1, "ghost is not here.")
}

func TestSession_WhisperMalformedReportsIsNotHere(t *testing.T) {
	c := NewChannel("common", 9001, 5)
	s1, _, lines1 := newTestSession(t, "alice", nil)
	c.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	s1.handleWhisper([]string{"/whisper"})
	expectLine(t, lines1, "is not here.")
}

func TestSession_SwitchMovesBetweenChannels(t *testing.T) {
	origin := NewChannel("common", 9001, 5)
	dest := NewChannel("other", 9002, 5)
	lister := &testLister{channels: []*Channel{origin, dest}}

	s1, _, lines1 := newTestSession(t, "alice", lister)
	origin.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome to the common")
	expectLine(t, lines1, "alice has joined")

	s1.handleSwitch([]string{"/switch", "other"})
	expectLine(t, lines1, "Welcome to the other")
	assert.Equal(t, dest, s1.Channel())
	assert.Equal(t, 0, origin.Stat().Connected)
	assert.Equal(t, 1, dest.Stat().Connected)
}

func TestSession_SwitchToUnknownChannelRefuses(t *testing.T) {
	origin := NewChannel("common", 9001, 5)
	lister := &testLister{channels: []*Channel{origin}}

	s1, _, lines1 := newTestSession(t, "alice", lister)
	origin.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	s1.handleSwitch([]string{"/switch", "nope"})
	expectLine(t, lines1, "nope does not exist.")
	assert.Equal(t, origin, s1.Channel())
}

func TestSession_SwitchCollisionRefusesWithoutLeavingOrigin(t *testing.T) {
	origin := NewChannel("common", 9001, 5)
	dest := NewChannel("other", 9002, 5)
	lister := &testLister{channels: []*Channel{origin, dest}}

	s1, _, lines1 := newTestSession(t, "alice", lister)
	origin.Process(opAdd, s1)
	expectLine(t, lines1, "Welcome")
	expectLine(t, lines1, "alice has joined")

	s2, _, lines2 := newTestSession(t, "bob", lister)
	dest.Process(opAdd, s2)
	expectLine(t, lines2, "Welcome")

	s3, _, lines3 := newTestSession(t, "bob", lister)
	origin.Process(opAdd, s3)
	expectLine(t, lines3, "Welcome")
	expectLine(t, lines3, "bob has joined")
	expectLine(t, lines1, "bob has joined")

	s3.handleSwitch([]string{"/switch", "other"})
	expectLine(t, lines3, "Cannot switch to the other channel.")
	assert.Equal(t, origin, s3.Channel())
	assert.Equal(t, 2, origin.Stat().Connected)
	assert.Equal(t, 1, dest.Stat().Connected)
}
