package backend

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/models"
)

// MemoryCollection is an in-process Collection. It backs offline mode and
// tests; it can be told to fail appends.
type MemoryCollection struct {
	mu     sync.Mutex
	docs   docSet
	seq    uint64
	subs   map[*memorySubscription]struct{}
	now    func() time.Time
	addErr error
	added  []models.Fields
	closed bool
}

// NewMemoryCollection creates an empty collection
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{
		subs: make(map[*memorySubscription]struct{}),
		now:  time.Now,
	}
}

// SetClock replaces the timestamp source used for createdAt
func (c *MemoryCollection) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// FailAdds makes every following Add return err; nil restores success
func (c *MemoryCollection) FailAdds(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addErr = err
}

// Seed appends already-stamped messages, notifying subscribers once
func (c *MemoryCollection) Seed(msgs ...models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var snap []models.Message
	for _, m := range msgs {
		c.seq++
		if m.ID == "" {
			m.ID = strconv.FormatUint(c.seq, 10)
		}
		snap = c.docs.add(m)
	}
	if snap != nil {
		c.broadcastLocked(snap)
	}
}

// Add appends a record stamped with the collection clock
func (c *MemoryCollection) Add(ctx context.Context, fields models.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apierrors.NewBackendError("add", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", apierrors.NewBackendError("add", apierrors.ErrNotConnected)
	}
	if c.addErr != nil {
		return "", apierrors.NewBackendError("add", c.addErr)
	}

	c.seq++
	msg := models.Message{
		ID:        strconv.FormatUint(c.seq, 10),
		Text:      fields.Text,
		ImageURL:  fields.ImageURL,
		User:      fields.User,
		SenderUID: fields.SenderUID,
		CreatedAt: c.now(),
		Type:      fields.Type,
	}
	c.added = append(c.added, fields)
	c.broadcastLocked(c.docs.add(msg))

	return msg.ID, nil
}

// Added returns every record passed to a successful Add, in call order
func (c *MemoryCollection) Added() []models.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Fields, len(c.added))
	copy(out, c.added)
	return out
}

// Subscribe delivers the current contents immediately, then every change
func (c *MemoryCollection) Subscribe(ctx context.Context) (Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, apierrors.NewBackendError("subscribe", apierrors.ErrNotConnected)
	}

	sub := &memorySubscription{feed: newFeed(), owner: c}
	c.subs[sub] = struct{}{}
	sub.feed.push(c.docs.snapshot())
	sub.feed.stopOnDone(ctx, sub.Stop)

	return sub, nil
}

// ActiveSubscriptions returns how many subscriptions are open
func (c *MemoryCollection) ActiveSubscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close stops every subscription; later calls fail with ErrNotConnected
func (c *MemoryCollection) Close() error {
	c.mu.Lock()
	subs := make([]*memorySubscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.closed = true
	c.mu.Unlock()

	for _, s := range subs {
		s.Stop()
	}
	return nil
}

func (c *MemoryCollection) broadcastLocked(snap []models.Message) {
	for sub := range c.subs {
		sub.feed.push(models.Clone(snap))
	}
}

func (c *MemoryCollection) remove(sub *memorySubscription) {
	c.mu.Lock()
	delete(c.subs, sub)
	c.mu.Unlock()
}

type memorySubscription struct {
	feed  *feed
	owner *MemoryCollection
	once  sync.Once
}

func (s *memorySubscription) Snapshots() <-chan []models.Message {
	return s.feed.out
}

func (s *memorySubscription) Stop() {
	s.once.Do(func() {
		s.owner.remove(s)
		s.feed.close()
	})
}

// ErrInjected is a ready-made failure for FailAdds
var ErrInjected = errors.New("injected backend failure")
