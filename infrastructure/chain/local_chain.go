package chain

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// LocalChain produces one block height per interval, starting after a given height
type LocalChain struct {
	interval time.Duration
	start    uint64
}

// NewLocalChain creates a clock whose first block is after+1
func NewLocalChain(interval time.Duration, after uint64) *LocalChain {
	if interval <= 0 {
		interval = time.Second
	}
	return &LocalChain{interval: interval, start: after + 1}
}

// Heights emits consecutive heights until ctx is done, then closes the channel.
// A slow consumer delays production; heights are never skipped.
func (c *LocalChain) Heights(ctx context.Context) <-chan uint64 {
	out := make(chan uint64)

	go func() {
		defer close(out)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		height := c.start
		log.WithFields(log.Fields{
			"startHeight": height,
			"interval":    c.interval,
		}).Info("Local block clock started")

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			select {
			case <-ctx.Done():
				return
			case out <- height:
				height++
			}
		}
	}()

	return out
}
