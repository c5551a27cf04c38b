// Package console implements the interactive administrative console: a
// line-oriented command loop over stdin that can kick or mute a user,
// empty a channel, or shut the whole server down.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"relaychat/internal/registry"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
	infoColor = color.New(color.FgCyan)
)

// Console runs the admin command loop against a fixed registry.
type Console struct {
	reg      *registry.Registry
	out      io.Writer
	shutdown func()
}

// New builds a Console bound to reg. shutdown is invoked once, when the
// operator issues /shutdown.
func New(reg *registry.Registry, out io.Writer, shutdown func()) *Console {
	return &Console{reg: reg, out: out, shutdown: shutdown}
}

// Run reads commands from in until EOF or /shutdown. It blocks the calling
// goroutine; cmd/server runs it on its main goroutine.
func (c *Console) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	infoColor.Fprintln(c.out, "admin console ready: /kick /mute /empty /list /shutdown")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !c.dispatch(line) {
			return
		}
	}
}

func (c *Console) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "/kick":
		c.cmdKick(fields[1:])
	case "/mute":
		c.cmdMute(fields[1:])
	case "/empty":
		c.cmdEmpty(fields[1:])
	case "/list":
		c.cmdList()
	case "/shutdown":
		c.cmdShutdown()
		return false
	default:
		errColor.Fprintf(c.out, "unknown command: %s\n", fields[0])
	}
	return true
}

// splitChannelUser splits the spec's "<channel>:<user>" admin target token.
func splitChannelUser(field string) (channel, user string, ok bool) {
	idx := strings.IndexByte(field, ':')
	if idx < 0 {
		return "", "", false
	}
	return field[:idx], field[idx+1:], true
}

func (c *Console) cmdKick(args []string) {
	if len(args) != 1 {
		errColor.Fprintln(c.out, "usage: /kick <channel>:<user>")
		return
	}
	chName, user, ok := splitChannelUser(args[0])
	if !ok {
		errColor.Fprintln(c.out, "usage: /kick <channel>:<user>")
		return
	}
	ch, exists := c.reg.Lookup(chName)
	if !exists {
		errColor.Fprintf(c.out, "%s does not exist.\n", chName)
		return
	}
	target := ch.LookupAny(user)
	if target == nil {
		errColor.Fprintf(c.out, "%s is not in %s.\n", user, chName)
		return
	}
	target.Kick()
	okColor.Fprintf(c.out, "Kicked %s.\n", user)
}

func (c *Console) cmdMute(args []string) {
	if len(args) != 2 {
		errColor.Fprintln(c.out, "usage: /mute <channel>:<user> <seconds>")
		return
	}
	chName, user, ok := splitChannelUser(args[0])
	if !ok {
		errColor.Fprintln(c.out, "usage: /mute <channel>:<user> <seconds>")
		return
	}
	ch, exists := c.reg.Lookup(chName)
	if !exists {
		errColor.Fprintf(c.out, "%s is not here.\n", user)
		return
	}
	target := ch.LookupAny(user)
	if target == nil {
		errColor.Fprintf(c.out, "%s is not here.\n", user)
		return
	}

	seconds, err := strconv.Atoi(args[1])
	if err != nil || seconds <= 0 {
		errColor.Fprintln(c.out, "Invalid mute time.")
		return
	}

	duration := time.Duration(seconds) * time.Second
	target.Mute(duration)
	target.Notify("You have been muted for %d seconds.", seconds)
	okColor.Fprintf(c.out, "Muted %s for %d seconds.\n", user, seconds)
}

func (c *Console) cmdEmpty(args []string) {
	if len(args) != 1 {
		errColor.Fprintln(c.out, "usage: /empty <channel>")
		return
	}
	ch, ok := c.reg.Lookup(args[0])
	if !ok {
		errColor.Fprintf(c.out, "no such channel: %s\n", args[0])
		return
	}
	ch.Empty()
	okColor.Fprintf(c.out, "emptied %s\n", args[0])
}

func (c *Console) cmdList() {
	for _, ch := range c.reg.Channels() {
		stat := ch.Stat()
		fmt.Fprintf(c.out, "%-16s port=%-5d %d/%d connected, %d waiting\n",
			stat.Name, stat.Port, stat.Connected, stat.Capacity, stat.Queued)
	}
}

func (c *Console) cmdShutdown() {
	okColor.Fprintln(c.out, "shutting down")
	for _, ch := range c.reg.Channels() {
		ch.ShutdownAll()
	}
	if c.shutdown != nil {
		c.shutdown()
	}
}
