// Package chat coordinates the chat screen: the cached and live message
// list, sending text and images, and signing out.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diogo/roomchat/internal/auth"
	"github.com/diogo/roomchat/internal/backend"
	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/media"
	"github.com/diogo/roomchat/internal/models"
)

// Session reports the signed-in user and publishes auth-state changes.
type Session interface {
	CurrentUser() (auth.User, bool)
	SignOut(ctx context.Context) error
	Watch() (<-chan auth.State, func())
}

// MessageStore persists the last observed message list. Load returns
// apierrors.ErrCacheMiss when nothing was saved yet.
type MessageStore interface {
	Load(ctx context.Context) ([]models.Message, error)
	Save(ctx context.Context, msgs []models.Message) error
}

// Picker gives access to gallery images.
type Picker interface {
	Permission() media.Permission
	RequestPermission(ctx context.Context, ask media.Asker) (bool, error)
	List(ctx context.Context) ([]media.Candidate, error)
	Load(ctx context.Context, candidate media.Candidate, opts media.PickOptions) (*media.Asset, error)
}

// Controller owns the collaborators of the chat screen. Screen state is
// kept in State by the caller.
type Controller struct {
	session  Session
	messages backend.Collection
	cache    MessageStore
	picker   Picker
	pickOpts media.PickOptions
	logger   zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPicker enables image sending through picker
func WithPicker(picker Picker) Option {
	return func(c *Controller) {
		c.picker = picker
	}
}

// WithPickOptions overrides the image preparation options
func WithPickOptions(opts media.PickOptions) Option {
	return func(c *Controller) {
		c.pickOpts = opts
	}
}

// NewController creates a Controller with a no-op logger and the default
// pick options.
func NewController(session Session, messages backend.Collection, cache MessageStore, opts ...Option) *Controller {
	c := &Controller{
		session:  session,
		messages: messages,
		cache:    cache,
		pickOpts: media.DefaultPickOptions(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser returns the signed-in user; the zero User when signed out
func (c *Controller) CurrentUser() auth.User {
	if c.session == nil {
		return auth.User{}
	}
	user, _ := c.session.CurrentUser()
	return user
}

// WatchAuth follows the session's auth-state changes. Without a session
// the channel is nil.
func (c *Controller) WatchAuth() (<-chan auth.State, func()) {
	if c.session == nil {
		return nil, func() {}
	}
	return c.session.Watch()
}

// Picker returns the configured picker, or nil
func (c *Controller) Picker() Picker {
	return c.picker
}

// LoadCached returns the cached message list. Failures are logged and
// yield an empty list.
func (c *Controller) LoadCached(ctx context.Context) []models.Message {
	msgs, err := c.cache.Load(ctx)
	if err != nil {
		if errors.Is(err, apierrors.ErrCacheMiss) {
			c.logger.Debug().Msg("no cached messages")
		} else {
			c.logger.Warn().Err(err).Msg("failed to load cached messages")
		}
		return []models.Message{}
	}
	c.logger.Debug().Int("count", len(msgs)).Msg("loaded cached messages")
	return msgs
}

// Subscribe opens the live message list. Every snapshot is written to the
// cache before it is forwarded. With a lazily dialed collection the error
// may be a connect failure; the cached list stays usable either way.
func (c *Controller) Subscribe(ctx context.Context) (*Feed, error) {
	sub, err := c.messages.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	return newFeed(ctx, sub, c.cache, c.logger), nil
}

// SendMessage appends draft as a text message. Whitespace-only drafts are
// not sent and report false.
func (c *Controller) SendMessage(ctx context.Context, draft string) (bool, error) {
	if strings.TrimSpace(draft) == "" {
		return false, nil
	}

	user := c.CurrentUser()
	id, err := c.messages.Add(ctx, models.TextFields(draft, user.Email, user.UID))
	if err != nil {
		c.logger.Error().Err(err).Str("action", apierrors.ActionSendText).Msg("send failed")
		return false, apierrors.NewSendError(apierrors.ActionSendText, err)
	}

	c.logger.Debug().Str("id", id).Str("action", apierrors.ActionSendText).Msg("message sent")
	return true, nil
}

// RequestPermission asks for gallery access once. A refusal returns
// ErrPermissionDenied.
func (c *Controller) RequestPermission(ctx context.Context, ask media.Asker) error {
	if c.picker == nil {
		return apierrors.ErrPermissionDenied
	}
	granted, err := c.picker.RequestPermission(ctx, ask)
	if err != nil {
		return err
	}
	if !granted {
		return apierrors.ErrPermissionDenied
	}
	return nil
}

// Candidates lists the images that can be picked
func (c *Controller) Candidates(ctx context.Context) ([]media.Candidate, error) {
	if c.picker == nil {
		return nil, apierrors.ErrPermissionDenied
	}
	return c.picker.List(ctx)
}

// PickImage prepares candidate for sending. A nil candidate is a
// cancelled pick and returns a nil asset.
func (c *Controller) PickImage(ctx context.Context, candidate *media.Candidate) (*media.Asset, error) {
	if candidate == nil {
		return nil, nil
	}
	if c.picker == nil {
		return nil, apierrors.ErrPermissionDenied
	}

	asset, err := c.picker.Load(ctx, *candidate, c.pickOpts)
	if err != nil {
		if errors.Is(err, apierrors.ErrPermissionDenied) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Warn().Err(err).Str("path", candidate.Path).Msg("failed to read image")
		if !errors.Is(err, apierrors.ErrNoImageData) {
			err = fmt.Errorf("%w: %v", apierrors.ErrNoImageData, err)
		}
		return nil, err
	}
	return asset, nil
}

// SendImage appends asset as an image message. A nil asset is a cancelled
// pick: nothing is sent and no error is returned.
func (c *Controller) SendImage(ctx context.Context, asset *media.Asset) (bool, error) {
	if asset == nil {
		return false, nil
	}
	if asset.Base64 == "" {
		return false, apierrors.ErrNoImageData
	}

	user := c.CurrentUser()
	id, err := c.messages.Add(ctx, models.ImageFields(media.DataURI(asset), user.Email, user.UID))
	if err != nil {
		c.logger.Error().Err(err).Str("action", apierrors.ActionSendImage).Msg("send failed")
		return false, apierrors.NewSendError(apierrors.ActionSendImage, err)
	}

	c.logger.Debug().
		Str("id", id).
		Str("action", apierrors.ActionSendImage).
		Int("bytes", len(asset.Base64)).
		Msg("image sent")
	return true, nil
}

// SendImageFile runs the whole image flow for one file: permission,
// preparation and append.
func (c *Controller) SendImageFile(ctx context.Context, path string, ask media.Asker) (bool, error) {
	if err := c.RequestPermission(ctx, ask); err != nil {
		return false, err
	}
	asset, err := c.PickImage(ctx, &media.Candidate{Path: path})
	if err != nil {
		return false, err
	}
	return c.SendImage(ctx, asset)
}

// Logout signs the session out. Screen state is left as is; watchers of
// the session react to the change.
func (c *Controller) Logout(ctx context.Context) error {
	if c.session == nil {
		return apierrors.ErrNoSession
	}
	if err := c.session.SignOut(ctx); err != nil {
		c.logger.Error().Err(err).Msg("sign out failed")
		return err
	}
	c.logger.Info().Msg("signed out")
	return nil
}
