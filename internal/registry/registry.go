// Package registry holds the immutable, ordered set of channels a server
// process was started with, and implements chat.ChannelLister so sessions
// can resolve /list and /switch against it.
package registry

import "relaychat/internal/chat"

// Registry is a fixed, ordered list of channels built once at startup.
type Registry struct {
	order []*chat.Channel
	byName map[string]*chat.Channel
}

// New builds a Registry from an ordered channel list. The order is
// preserved for /list output; lookups are by name.
func New(channels []*chat.Channel) *Registry {
	r := &Registry{
		order:  channels,
		byName: make(map[string]*chat.Channel, len(channels)),
	}
	for _, c := range channels {
		r.byName[c.Name] = c
	}
	return r
}

// Channels returns the registry's channels in configuration order.
func (r *Registry) Channels() []*chat.Channel {
	return r.order
}

// Lookup resolves a channel by name.
func (r *Registry) Lookup(name string) (*chat.Channel, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// StartAll runs every channel's accept loop in its own goroutine and
// returns immediately. Errors from an individual channel's Start are
// delivered on errs, one entry per failed channel.
func (r *Registry) StartAll(errs chan<- error) {
	for _, c := range r.order {
		c := c
		go func() {
			if err := c.Start(r); err != nil {
				errs <- err
			}
		}()
	}
}

// StopAll stops every channel's listener.
func (r *Registry) StopAll() {
	for _, c := range r.order {
		c.Stop()
	}
}
