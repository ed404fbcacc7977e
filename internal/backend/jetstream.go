package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/models"
)

// JetStreamConfig configures the NATS-backed collection
type JetStreamConfig struct {
	URL     string
	Creds   string
	Stream  string
	Subject string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// JetStreamCollection stores each record as one message on a JetStream
// stream. The stream sequence is the record id and the server-side stored
// timestamp is its createdAt.
type JetStreamCollection struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	cfg    JetStreamConfig
	logger zerolog.Logger
}

// ConnectJetStream connects to NATS and makes sure the stream exists
func ConnectJetStream(ctx context.Context, cfg JetStreamConfig) (*JetStreamCollection, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := []nats.Option{
		nats.Name("roomchat"),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				cfg.Logger.Warn().Err(err).Msg("disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			cfg.Logger.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to NATS")
		}),
	}
	if cfg.Creds != "" {
		opts = append(opts, nats.UserCredentials(cfg.Creds))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, apierrors.NewBackendError("connect", fmt.Errorf("%w: %v", apierrors.ErrNotConnected, err))
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, apierrors.NewBackendError("connect", fmt.Errorf("failed to create jetstream context: %w", err))
	}

	c := &JetStreamCollection{nc: nc, js: js, cfg: cfg, logger: cfg.Logger}

	setupCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := c.ensureStream(setupCtx); err != nil {
		nc.Close()
		return nil, err
	}

	return c, nil
}

func (c *JetStreamCollection) ensureStream(ctx context.Context) error {
	stream, err := c.js.Stream(ctx, c.cfg.Stream)
	if err == nil {
		c.logger.Debug().Str("stream", stream.CachedInfo().Config.Name).Msg("found existing stream")
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return apierrors.NewBackendError("stream", err)
	}

	c.logger.Info().Str("stream", c.cfg.Stream).Msg("stream not found, creating")
	_, err = c.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        c.cfg.Stream,
		Description: "roomchat messages",
		Subjects:    []string{c.cfg.Subject},
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		return apierrors.NewBackendError("stream", fmt.Errorf("failed to create stream %q: %w", c.cfg.Stream, err))
	}
	return nil
}

// Add publishes fields and waits for the stream acknowledgement
func (c *JetStreamCollection) Add(ctx context.Context, fields models.Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", apierrors.NewBackendError("add", fmt.Errorf("failed to marshal record: %w", err))
	}

	ack, err := c.js.Publish(ctx, c.cfg.Subject, data)
	if err != nil {
		return "", apierrors.NewBackendError("add", err)
	}

	id := strconv.FormatUint(ack.Sequence, 10)
	c.logger.Debug().Str("id", id).Str("type", string(fields.Type)).Msg("record appended")
	return id, nil
}

// Subscribe replays the whole stream through an ordered consumer. The
// first snapshot is emitted once the backlog is drained.
func (c *JetStreamCollection) Subscribe(ctx context.Context) (Subscription, error) {
	cons, err := c.js.OrderedConsumer(ctx, c.cfg.Stream, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{c.cfg.Subject},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, apierrors.NewBackendError("subscribe", err)
	}

	sub := &jetStreamSubscription{feed: newFeed(), logger: c.logger}

	stream, err := c.js.Stream(ctx, c.cfg.Stream)
	if err != nil {
		return nil, apierrors.NewBackendError("subscribe", err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return nil, apierrors.NewBackendError("subscribe", err)
	}
	if info.State.Msgs == 0 {
		sub.feed.push([]models.Message{})
	}

	cc, err := cons.Consume(sub.handle, jetstream.ConsumeErrHandler(func(_ jetstream.ConsumeContext, err error) {
		c.logger.Warn().Err(err).Str("stream", c.cfg.Stream).Msg("subscription error")
	}))
	if err != nil {
		sub.feed.close()
		return nil, apierrors.NewBackendError("subscribe", err)
	}
	sub.cc = cc
	sub.feed.stopOnDone(ctx, sub.Stop)

	return sub, nil
}

// Close drains the NATS connection
func (c *JetStreamCollection) Close() error {
	if c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return err
	}
	return nil
}

type jetStreamSubscription struct {
	mu     sync.Mutex
	docs   docSet
	feed   *feed
	cc     jetstream.ConsumeContext
	logger zerolog.Logger
	once   sync.Once
}

func (s *jetStreamSubscription) handle(msg jetstream.Msg) {
	meta, err := msg.Metadata()
	if err != nil {
		s.logger.Warn().Err(err).Msg("message without metadata")
		return
	}

	record, ok := decodeRecord(msg.Data(), meta.Sequence.Stream, meta.Timestamp)
	if !ok {
		s.logger.Warn().Uint64("seq", meta.Sequence.Stream).Msg("skipping malformed record")
		if meta.NumPending == 0 {
			s.mu.Lock()
			snap := s.docs.snapshot()
			s.mu.Unlock()
			s.feed.push(snap)
		}
		return
	}

	s.mu.Lock()
	snap := s.docs.add(record)
	s.mu.Unlock()

	// hold back while replaying the backlog, so the first snapshot is complete
	if meta.NumPending == 0 {
		s.feed.push(snap)
	}
}

func (s *jetStreamSubscription) Snapshots() <-chan []models.Message {
	return s.feed.out
}

func (s *jetStreamSubscription) Stop() {
	s.once.Do(func() {
		if s.cc != nil {
			s.cc.Stop()
		}
		s.feed.close()
	})
}

// decodeRecord reads a record leniently: unknown fields are ignored and
// missing ones stay empty. Only non-JSON payloads are rejected.
func decodeRecord(data []byte, seq uint64, createdAt time.Time) (models.Message, bool) {
	if !gjson.ValidBytes(data) {
		return models.Message{}, false
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return models.Message{}, false
	}

	return models.Message{
		ID:        strconv.FormatUint(seq, 10),
		Text:      r.Get("text").String(),
		ImageURL:  r.Get("imageUrl").String(),
		User:      r.Get("user").String(),
		SenderUID: r.Get("senderUid").String(),
		CreatedAt: createdAt,
		Type:      models.MessageType(r.Get("type").String()),
	}, true
}
