package application

import (
	"context"

	"stackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// DrawKeeperWorker feeds every new block to the pot so that due draws run
// before any other write at that height
type DrawKeeperWorker struct {
	pot    interfaces.PotService
	blocks BlockSource
}

// NewDrawKeeperWorker creates a new draw keeper
func NewDrawKeeperWorker(pot interfaces.PotService, blocks BlockSource) *DrawKeeperWorker {
	return &DrawKeeperWorker{
		pot:    pot,
		blocks: blocks,
	}
}

// Start runs the keeper until ctx is done or the returned stop function is called.
// The returned channel closes when the keeper goroutine exits.
func (w *DrawKeeperWorker) Start(ctx context.Context) (stop func(), done <-chan struct{}) {
	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		log.WithField("height", w.pot.Height()).Info("Draw keeper started")

		heights := w.blocks.Heights(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Info("Draw keeper shutting down...")
				return
			case height, ok := <-heights:
				if !ok {
					log.Info("Block source closed, draw keeper stopping")
					return
				}
				w.processBlock(ctx, height)
			}
		}
	}()

	return cancel, finished
}

// processBlock observes a single height. Failures are logged and the next
// block retries the draw.
func (w *DrawKeeperWorker) processBlock(ctx context.Context, height uint64) {
	result, err := w.pot.ObserveBlock(ctx, height)
	if err != nil {
		log.WithFields(log.Fields{
			"height": height,
			"error":  err,
		}).Error("Failed to observe block")
		return
	}

	if result == nil {
		log.WithFields(log.Fields{
			"height":          height,
			"blocksUntilDraw": w.pot.BlocksUntilNextDraw(),
		}).Debug("Observed block")
		return
	}

	log.WithFields(log.Fields{
		"height": height,
		"drawId": result.DrawID,
		"winner": result.Winner,
		"prize":  result.PrizeAmount.Dec(),
	}).Info("Draw executed by keeper")
}
