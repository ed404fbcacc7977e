package backend

import (
	"context"
	"sync"

	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/models"
)

// Dialer opens the underlying collection
type Dialer func(ctx context.Context) (Collection, error)

// LazyCollection connects on first use, so the chat screen and the cached
// list come up before the backend is reachable. A failed connect is
// retried by the next call.
type LazyCollection struct {
	mu     sync.Mutex
	dial   Dialer
	coll   Collection
	closed bool
}

// NewLazyCollection creates a collection that dials on demand
func NewLazyCollection(dial Dialer) *LazyCollection {
	return &LazyCollection{dial: dial}
}

func (l *LazyCollection) connect(ctx context.Context) (Collection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, apierrors.NewBackendError("connect", apierrors.ErrNotConnected)
	}
	if l.coll != nil {
		return l.coll, nil
	}

	coll, err := l.dial(ctx)
	if err != nil {
		return nil, err
	}
	l.coll = coll
	return coll, nil
}

// Connected reports whether a dial has succeeded
func (l *LazyCollection) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coll != nil
}

func (l *LazyCollection) Subscribe(ctx context.Context) (Subscription, error) {
	coll, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	return coll.Subscribe(ctx)
}

func (l *LazyCollection) Add(ctx context.Context, fields models.Fields) (string, error) {
	coll, err := l.connect(ctx)
	if err != nil {
		return "", err
	}
	return coll.Add(ctx, fields)
}

// Close closes the underlying collection if one was opened
func (l *LazyCollection) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.coll == nil {
		return nil
	}
	return l.coll.Close()
}
