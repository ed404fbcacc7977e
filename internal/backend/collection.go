// Package backend implements the realtime message collection the chat
// screen reads from and appends to.
package backend

import (
	"context"
	"sync"

	"github.com/diogo/roomchat/internal/models"
)

// Collection is an append-only set of chat records with ordered live
// snapshots.
type Collection interface {
	// Subscribe opens a live query ordered ascending by createdAt. The
	// first snapshot arrives once the current contents are known, then
	// one per change.
	Subscribe(ctx context.Context) (Subscription, error)
	// Add appends a record. The backend assigns its id and createdAt.
	Add(ctx context.Context, fields models.Fields) (string, error)
	Close() error
}

// Subscription is a live query. Snapshots is closed after Stop or when
// the subscribing context ends.
type Subscription interface {
	Snapshots() <-chan []models.Message
	Stop()
}

// feed is a single-consumer snapshot channel. Every snapshot is a full
// copy of the collection, so a slow reader only ever needs the newest one
// and older pending ones are replaced.
type feed struct {
	mu     sync.Mutex
	out    chan []models.Message
	done   chan struct{}
	closed bool
	once   sync.Once
}

func newFeed() *feed {
	return &feed{
		out:  make(chan []models.Message, 1),
		done: make(chan struct{}),
	}
}

func (f *feed) push(snapshot []models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	select {
	case <-f.out:
	default:
	}
	f.out <- snapshot
}

func (f *feed) close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.out)
		close(f.done)
		f.mu.Unlock()
	})
}

// stopOnDone closes the feed via stop when ctx ends first
func (f *feed) stopOnDone(ctx context.Context, stop func()) {
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-f.done:
		}
	}()
}

// docSet holds the ordered documents seen by one subscription
type docSet struct {
	docs []models.Message
}

// add inserts msg and returns a fresh ordered snapshot
func (d *docSet) add(msg models.Message) []models.Message {
	d.docs = append(d.docs, msg)
	// records usually arrive in order; only sort when they don't
	if n := len(d.docs); n > 1 && msg.CreatedAt.Before(d.docs[n-2].CreatedAt) {
		models.SortByCreatedAt(d.docs)
	}
	return d.snapshot()
}

func (d *docSet) snapshot() []models.Message {
	out := make([]models.Message, len(d.docs))
	copy(out, d.docs)
	return out
}
