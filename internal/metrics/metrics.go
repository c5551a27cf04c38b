// Package metrics periodically logs server-wide occupancy in a
// human-readable form, grounded on the same log.Printf ambient logging
// used throughout the server.
package metrics

import (
	"context"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"relaychat/internal/chat"
	"relaychat/internal/registry"
)

// Run logs aggregate occupancy every interval until ctx is canceled.
func Run(ctx context.Context, reg *registry.Registry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logSnapshot(reg, start)
		}
	}
}

func logSnapshot(reg *registry.Registry, start time.Time) {
	var totalConnected, totalQueued, totalCapacity int
	for _, ch := range reg.Channels() {
		stat := ch.Stat()
		totalConnected += stat.Connected
		totalQueued += stat.Queued
		totalCapacity += stat.Capacity
	}
	log.Printf("metrics: uptime=%s connected=%s/%s queued=%s transferred=%s",
		time.Since(start).Round(time.Second),
		humanize.Comma(int64(totalConnected)),
		humanize.Comma(int64(totalCapacity)),
		humanize.Comma(int64(totalQueued)),
		humanize.Bytes(uint64(chat.TransferredBytes())),
	)
}
