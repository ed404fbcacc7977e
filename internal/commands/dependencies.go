package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/roomchat/internal/auth"
	"github.com/diogo/roomchat/internal/backend"
	"github.com/diogo/roomchat/internal/cache"
	"github.com/diogo/roomchat/internal/chat"
	"github.com/diogo/roomchat/internal/config"
	"github.com/diogo/roomchat/internal/logging"
	"github.com/diogo/roomchat/internal/media"
	"github.com/diogo/roomchat/internal/render"
	"github.com/diogo/roomchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, ctrl *chat.Controller, opts render.Options) (tui.Outcome, error)
	RunSettings(cfg config.Config, path string) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, ctrl *chat.Controller, opts render.Options) (tui.Outcome, error) {
	return tui.RunChat(ctx, ctrl, opts)
}

func (d *DefaultTUI) RunSettings(cfg config.Config, path string) error {
	return tui.RunSettings(cfg, path)
}

// activeTUI is replaced in tests
var activeTUI TUIInterface = &DefaultTUI{}

// connectBackend opens the live collection; replaced in tests
var connectBackend = func(ctx context.Context, cfg backend.JetStreamConfig) (backend.Collection, error) {
	return backend.ConnectJetStream(ctx, cfg)
}

// depOptions selects which dependencies a command needs
type depOptions struct {
	// backend opens the message collection
	backend bool
	// offline swaps the collection for an in-memory one
	offline bool
	// logToFile sends logs to the config dir instead of stderr, for
	// commands that own the terminal
	logToFile bool
}

// Dependencies holds what a command needs, built from the config
type Dependencies struct {
	Config     config.Config
	ConfigPath string
	ConfigDir  string
	Logger     zerolog.Logger
	Session    *auth.FileSession
	Store      cache.Store
	Messages   *cache.MessageCache
	Collection backend.Collection
	Gallery    *media.Gallery

	logFile *os.File
}

// configPaths resolves the config file and its directory
func configPaths() (string, string, error) {
	path := configFlag
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return "", "", err
		}
	}
	return path, filepath.Dir(path), nil
}

// loadDependencies builds the dependency set for one command run
func loadDependencies(ctx context.Context, opts depOptions) (*Dependencies, error) {
	path, dir, err := configPaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfigFrom(path)
	if err != nil {
		return nil, err
	}

	d := &Dependencies{Config: cfg, ConfigPath: path, ConfigDir: dir}

	level := cfg.Log.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	if opts.logToFile {
		logger, f, err := logging.NewFile(level, dir)
		if err != nil {
			return nil, err
		}
		d.Logger, d.logFile = logger, f
	} else {
		d.Logger = logging.New(level, os.Stderr)
	}

	d.Session, err = auth.LoadSession(dir)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.Store, err = cache.Open(cfg.Cache.Driver, dir)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	d.Messages = cache.NewMessageCache(d.Store)

	d.Gallery = media.NewGallery(cfg.Gallery.Dir, cfg.Gallery.Access, func(access string) error {
		return persistGalleryAccess(path, access)
	})

	if opts.backend {
		d.openCollection(ctx, opts.offline)
	}

	return d, nil
}

func (d *Dependencies) openCollection(ctx context.Context, offline bool) {
	if offline {
		d.Collection = d.offlineCollection(ctx)
		return
	}

	cfg := backend.JetStreamConfig{
		URL:     d.Config.NATS.URL,
		Creds:   d.Config.NATS.Creds,
		Stream:  d.Config.NATS.Stream,
		Subject: d.Config.NATS.Subject,
		Timeout: time.Duration(d.Config.NATS.Timeout) * time.Second,
		Logger:  d.Logger,
	}

	// the connection is made by the first subscribe or send, so the cached
	// list can be shown while NATS is unreachable
	d.Collection = backend.NewLazyCollection(func(ctx context.Context) (backend.Collection, error) {
		coll, err := connectBackend(ctx, cfg)
		if err != nil {
			d.Logger.Warn().Err(err).Str("url", cfg.URL).Msg("connect failed")
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
		}
		return coll, nil
	})
}

// offlineCollection starts the in-memory room from the cached list, so its
// first snapshot writes back what the cache already holds
func (d *Dependencies) offlineCollection(ctx context.Context) *backend.MemoryCollection {
	coll := backend.NewMemoryCollection()
	cached, err := d.Messages.Load(ctx)
	if err != nil {
		d.Logger.Debug().Err(err).Msg("offline mode: starting from an empty room")
	} else {
		coll.Seed(cached...)
	}
	d.Logger.Info().Int("count", len(cached)).Msg("offline mode: using in-memory collection")
	return coll
}

// Controller wires the chat controller over the dependencies
func (d *Dependencies) Controller() *chat.Controller {
	return chat.NewController(d.Session, d.Collection, d.Messages,
		chat.WithLogger(d.Logger),
		chat.WithPicker(d.Gallery),
	)
}

// RenderOptions returns the markdown options from the config
func (d *Dependencies) RenderOptions() render.Options {
	return render.OptionsFromConfig(d.Config.Markdown)
}

// Close releases the collection, the cache and the log file
func (d *Dependencies) Close() {
	if d.Collection != nil {
		if err := d.Collection.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("failed to close collection")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("failed to close cache")
		}
	}
	if d.logFile != nil {
		d.logFile.Close()
	}
}

// persistGalleryAccess records the permission answer in the config file
func persistGalleryAccess(path, access string) error {
	cfg, err := config.LoadConfigFrom(path)
	if err != nil {
		return err
	}
	cfg.Gallery.Access = access
	return config.SaveConfigTo(path, cfg)
}
