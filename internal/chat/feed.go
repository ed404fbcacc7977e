package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/diogo/roomchat/internal/backend"
	"github.com/diogo/roomchat/internal/models"
)

// Feed forwards live snapshots to one reader. A reader that falls behind
// only sees the newest snapshot.
type Feed struct {
	sub    backend.Subscription
	out    chan []models.Message
	done   chan struct{}
	once   sync.Once
	cache  MessageStore
	logger zerolog.Logger
}

func newFeed(ctx context.Context, sub backend.Subscription, cache MessageStore, logger zerolog.Logger) *Feed {
	f := &Feed{
		sub:    sub,
		out:    make(chan []models.Message, 1),
		done:   make(chan struct{}),
		cache:  cache,
		logger: logger,
	}
	go f.run(ctx)
	return f
}

func (f *Feed) run(ctx context.Context) {
	defer close(f.done)
	defer close(f.out)

	for snap := range f.sub.Snapshots() {
		if err := f.cache.Save(ctx, snap); err != nil {
			f.logger.Warn().Err(err).Int("count", len(snap)).Msg("failed to cache messages")
		}

		// sole sender: after draining, the send cannot block
		select {
		case <-f.out:
		default:
		}
		f.out <- snap
	}
}

// Snapshots delivers ordered message lists. It is closed after Close or
// when the subscription ends.
func (f *Feed) Snapshots() <-chan []models.Message {
	return f.out
}

// Close stops the subscription and waits for forwarding to finish. Only
// the first call has an effect.
func (f *Feed) Close() {
	f.once.Do(func() {
		f.sub.Stop()
		<-f.done
	})
}
