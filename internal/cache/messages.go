package cache

import (
	"context"
	"encoding/json"

	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/models"
)

// MessagesKey is the fixed key holding the serialized message list
const MessagesKey = "chat_history"

// MessageCache stores the most recently observed ordered message list.
// It is a best-effort snapshot, never a source of truth.
type MessageCache struct {
	store Store
}

// NewMessageCache wraps store
func NewMessageCache(store Store) *MessageCache {
	return &MessageCache{store: store}
}

// Load returns the cached list. A missing key yields ErrCacheMiss; read
// and parse failures come back as *errors.CacheError.
func (c *MessageCache) Load(ctx context.Context) ([]models.Message, error) {
	raw, ok, err := c.store.Get(ctx, MessagesKey)
	if err != nil {
		return nil, apierrors.NewCacheError("read", MessagesKey, err)
	}
	if !ok {
		return nil, apierrors.NewCacheError("read", MessagesKey, apierrors.ErrCacheMiss)
	}

	var msgs []models.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, apierrors.NewCacheError("parse", MessagesKey, err)
	}
	return msgs, nil
}

// Save overwrites the cached list with msgs, order preserved
func (c *MessageCache) Save(ctx context.Context, msgs []models.Message) error {
	if msgs == nil {
		msgs = []models.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return apierrors.NewCacheError("encode", MessagesKey, err)
	}
	if err := c.store.Set(ctx, MessagesKey, string(data)); err != nil {
		return apierrors.NewCacheError("write", MessagesKey, err)
	}
	return nil
}

// Clear removes the cached list
func (c *MessageCache) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, MessagesKey); err != nil {
		return apierrors.NewCacheError("delete", MessagesKey, err)
	}
	return nil
}
