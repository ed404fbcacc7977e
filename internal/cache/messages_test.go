package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/models"
)

func newMessageCache(t *testing.T) (*MessageCache, *FileStore) {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewMessageCache(s), s
}

func TestMessageCache_LoadMiss(t *testing.T) {
	c, _ := newMessageCache(t)

	_, err := c.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrCacheMiss))
	assert.True(t, apierrors.IsCacheError(err))
}

func TestMessageCache_SaveLoadPreservesOrder(t *testing.T) {
	c, _ := newMessageCache(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	msgs := []models.Message{
		{ID: "3", Text: "third", CreatedAt: base.Add(2 * time.Minute), Type: models.TypeText},
		{ID: "1", Text: "first", CreatedAt: base, Type: models.TypeText, SenderUID: "a"},
		{ID: "2", ImageURL: "data:image/jpeg;base64,AA==", Text: models.ImagePlaceholder, CreatedAt: base.Add(time.Minute), Type: models.TypeImage},
	}

	require.NoError(t, c.Save(ctx, msgs))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Saved verbatim: no re-sorting on the way in or out
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
	assert.Equal(t, "2", got[2].ID)
	assert.True(t, got[2].IsImage())
	assert.True(t, got[1].CreatedAt.Equal(base))
}

func TestMessageCache_SaveOverwrites(t *testing.T) {
	c, _ := newMessageCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, []models.Message{{ID: "old"}}))
	require.NoError(t, c.Save(ctx, []models.Message{{ID: "a"}, {ID: "b"}}))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
}

func TestMessageCache_SaveNilWritesEmptyList(t *testing.T) {
	c, s := newMessageCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, nil))

	raw, ok, err := s.Get(ctx, MessagesKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestMessageCache_ParseFailure(t *testing.T) {
	c, s := newMessageCache(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, MessagesKey, "{corrupt"))

	_, err := c.Load(ctx)
	require.Error(t, err)
	var cacheErr *apierrors.CacheError
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, "parse", cacheErr.Op)
}

func TestMessageCache_Clear(t *testing.T) {
	c, _ := newMessageCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, []models.Message{{ID: "1"}}))
	require.NoError(t, c.Clear(ctx))

	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, apierrors.ErrCacheMiss)
}
