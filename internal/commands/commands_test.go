package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/roomchat/internal/auth"
	"github.com/diogo/roomchat/internal/backend"
	"github.com/diogo/roomchat/internal/cache"
	"github.com/diogo/roomchat/internal/chat"
	"github.com/diogo/roomchat/internal/config"
	apierrors "github.com/diogo/roomchat/internal/errors"
	"github.com/diogo/roomchat/internal/models"
	"github.com/diogo/roomchat/internal/render"
	"github.com/diogo/roomchat/internal/tui"
)

// cliEnv isolates one command run: its own home dir and an in-memory room
type cliEnv struct {
	home string
	coll *backend.MemoryCollection
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	env := &cliEnv{home: t.TempDir(), coll: backend.NewMemoryCollection()}
	t.Setenv(config.EnvHome, env.home)

	oldConnect := connectBackend
	connectBackend = func(ctx context.Context, cfg backend.JetStreamConfig) (backend.Collection, error) {
		return env.coll, nil
	}
	t.Cleanup(func() { connectBackend = oldConnect })

	return env
}

func resetFlags() {
	configFlag = ""
	logLevelFlag = "off"
	offlineFlag = false
	sendImageFlag = ""
	tailOnceFlag = false
	loginEmailFlag = ""
	exportFormatFlag = "markdown"
	exportOutputFlag = ""
	exportImagesFlag = false
	_ = rootCmd.Flags().Set("version", "false")
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func (e *cliEnv) signIn(t *testing.T, email string) auth.User {
	t.Helper()
	session, err := auth.LoadSession(e.home)
	require.NoError(t, err)
	user, err := session.SignIn(email)
	require.NoError(t, err)
	return user
}

func TestVersionFlag(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "roomchat "+Version)
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, _, err = env.run(t, "", "login", "--email", "me@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as me@example.com")

	out, _, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "me@example.com")
	assert.Contains(t, out, "uid: ")

	out, _, err = env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, _, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestLogin_RequiresValidEmail(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "", "login")
	assert.Error(t, err)

	_, _, err = env.run(t, "", "login", "--email", "not an email")
	assert.Error(t, err)
}

func TestSend_Text(t *testing.T) {
	env := newCLIEnv(t)
	user := env.signIn(t, "me@example.com")

	_, errOut, err := env.run(t, "", "send", "hello room")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Sent")

	added := env.coll.Added()
	require.Len(t, added, 1)
	assert.Equal(t, "hello room", added[0].Text)
	assert.Equal(t, "me@example.com", added[0].User)
	assert.Equal(t, user.UID, added[0].SenderUID)
	assert.Equal(t, models.TypeText, added[0].Type)
}

func TestSend_Rejected(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "", "send")
	assert.Error(t, err)

	_, _, err = env.run(t, "", "send", "   ")
	assert.Error(t, err)
	assert.Empty(t, env.coll.Added())
}

func TestSend_Failure(t *testing.T) {
	env := newCLIEnv(t)
	env.coll.FailAdds(backend.ErrInjected)

	_, _, err := env.run(t, "", "send", "hello")
	require.Error(t, err)
	assert.True(t, apierrors.IsSendError(err))
	assert.ErrorIs(t, err, backend.ErrInjected)
}

func TestSend_ImagePermissionDenied(t *testing.T) {
	env := newCLIEnv(t)

	_, errOut, err := env.run(t, "n\n", "send", "--image", filepath.Join(env.home, "a.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrPermissionDenied)
	assert.Contains(t, errOut, "Allow roomchat to read your pictures?")
	assert.Empty(t, env.coll.Added())

	cfg, err := config.LoadConfigFrom(filepath.Join(env.home, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, config.GalleryAccessDenied, cfg.Gallery.Access)
}

func TestSend_ImageUnreadable(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.home, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	_, _, err := env.run(t, "y\n", "send", "--image", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrNoImageData)
	assert.Empty(t, env.coll.Added())
}

func TestTail_Once(t *testing.T) {
	env := newCLIEnv(t)
	user := env.signIn(t, "me@example.com")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env.coll.Seed(
		models.Message{ID: "1", Text: "hi there", User: "them@example.com", SenderUID: "other", CreatedAt: base, Type: models.TypeText},
		models.Message{ID: "2", Text: "hello back", User: "me@example.com", SenderUID: user.UID, CreatedAt: base.Add(time.Minute), Type: models.TypeText},
	)

	out, _, err := env.run(t, "", "tail", "--once")
	require.NoError(t, err)

	assert.Contains(t, out, "them@example.com")
	assert.Contains(t, out, "hello back")
	assert.Less(t, strings.Index(out, "hi there"), strings.Index(out, "hello back"))

	// the live snapshot was written through to the cache
	store, err := cache.Open(config.CacheDriverFile, env.home)
	require.NoError(t, err)
	defer store.Close()
	cached, err := cache.NewMessageCache(store).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestTailPrinter_PlacementAndDedup(t *testing.T) {
	var buf bytes.Buffer
	p := newTailPrinter(&buf, "me", 40)

	msgs := []models.Message{
		{ID: "1", Text: "theirs", User: "a@example.com", SenderUID: "other"},
		{ID: "2", Text: "mine", User: "me@example.com", SenderUID: "me"},
	}
	p.print(msgs)
	p.print(msgs)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "theirs"))
	assert.Equal(t, 1, strings.Count(out, "mine"))

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if strings.Contains(line, "mine") {
			assert.True(t, strings.HasPrefix(line, " "), "own message should be right-aligned: %q", line)
		}
		if strings.Contains(line, "theirs") {
			assert.False(t, strings.HasPrefix(line, " "), "other message should be left-aligned: %q", line)
		}
	}
}

func TestTailPrinter_ImageWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := newTailPrinter(&buf, "me", 80)

	p.print([]models.Message{{ID: "1", Text: models.ImagePlaceholder, ImageURL: "data:image/jpeg;base64,AAAA", Type: models.TypeImage}})
	assert.Contains(t, buf.String(), "[image] "+models.ImagePlaceholder)
	assert.Contains(t, buf.String(), "unknown")
}

func TestCacheShowAndClear(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "", "cache", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached messages")

	store, err := cache.Open(config.CacheDriverFile, env.home)
	require.NoError(t, err)
	require.NoError(t, cache.NewMessageCache(store).Save(context.Background(), []models.Message{
		{ID: "1", Text: "cached line", User: "a@example.com", Type: models.TypeText},
	}))
	require.NoError(t, store.Close())

	out, _, err = env.run(t, "", "cache", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "cached line")
	assert.Contains(t, out, "1 cached messages")

	out, _, err = env.run(t, "", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")

	out, _, err = env.run(t, "", "cache", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached messages")
}

func TestConfigCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.home, "config.json"), strings.TrimSpace(out))

	out, _, err = env.run(t, "", "config", "set", "nats.url", "nats://chat.example:4222")
	require.NoError(t, err)
	assert.Contains(t, out, "nats.url = nats://chat.example:4222")

	out, _, err = env.run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "nats://chat.example:4222")
	assert.Contains(t, out, "gallery.access")

	_, _, err = env.run(t, "", "config", "set", "tui_theme", "no-such-theme")
	assert.Error(t, err)

	_, _, err = env.run(t, "", "config", "set", "tui_theme", render.TUIThemeNames()[0])
	assert.NoError(t, err)

	_, _, err = env.run(t, "", "config", "set", "markdown.style", "sepia")
	assert.Error(t, err)
}

func TestConfigFlag_OverridesHome(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "alt", "config.json")

	_, _, err := env.run(t, "", "--config", path, "config", "set", "nats.stream", "ALT")
	require.NoError(t, err)

	cfg, err := config.LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "ALT", cfg.NATS.Stream)
}

type fakeTUI struct {
	outcome      tui.Outcome
	called       bool
	user         auth.User
	settingsPath string

	// session stands in for the chat screen's startup when set
	session func(ctx context.Context, ctrl *chat.Controller)
}

func (f *fakeTUI) RunSettings(cfg config.Config, path string) error {
	f.settingsPath = path
	return nil
}

func (f *fakeTUI) RunChat(ctx context.Context, ctrl *chat.Controller, opts render.Options) (tui.Outcome, error) {
	f.called = true
	f.user = ctrl.CurrentUser()
	if f.session != nil {
		f.session(ctx, ctrl)
	}
	return f.outcome, nil
}

// failConnect makes every dial to the room fail
func failConnect(t *testing.T) *int {
	t.Helper()
	dials := 0
	old := connectBackend
	connectBackend = func(ctx context.Context, cfg backend.JetStreamConfig) (backend.Collection, error) {
		dials++
		return nil, errors.New("nats: no servers available for connection")
	}
	t.Cleanup(func() { connectBackend = old })
	return &dials
}

func TestChat_CacheShownWithoutBackend(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, "me@example.com")
	seedCache(t, env.home,
		models.Message{ID: "1", Text: "kept offline", User: "a@example.com", Type: models.TypeText},
	)
	dials := failConnect(t)

	var (
		cached []models.Message
		subErr error
	)
	fake := &fakeTUI{session: func(ctx context.Context, ctrl *chat.Controller) {
		cached = ctrl.LoadCached(ctx)
		_, subErr = ctrl.Subscribe(ctx)
	}}
	old := activeTUI
	activeTUI = fake
	defer func() { activeTUI = old }()

	_, _, err := env.run(t, "", "chat")
	require.NoError(t, err)
	assert.True(t, fake.called)

	require.Len(t, cached, 1)
	assert.Equal(t, "kept offline", cached[0].Text)

	require.Error(t, subErr)
	assert.Contains(t, subErr.Error(), "no servers available")
	assert.Equal(t, 1, *dials)
}

func TestTail_CacheShownWithoutBackend(t *testing.T) {
	env := newCLIEnv(t)
	seedCache(t, env.home,
		models.Message{ID: "1", Text: "kept offline", User: "a@example.com", Type: models.TypeText},
	)
	failConnect(t)

	out, _, err := env.run(t, "", "tail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
	assert.Contains(t, out, "kept offline")
}

func TestChat_OfflineKeepsCache(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, "me@example.com")
	seedCache(t, env.home,
		models.Message{ID: "1", Text: "first", User: "a@example.com", Type: models.TypeText},
		models.Message{ID: "2", Text: "second", User: "b@example.com", Type: models.TypeText},
	)

	var snap []models.Message
	fake := &fakeTUI{session: func(ctx context.Context, ctrl *chat.Controller) {
		feed, err := ctrl.Subscribe(ctx)
		require.NoError(t, err)
		defer feed.Close()
		select {
		case snap = <-feed.Snapshots():
		case <-time.After(2 * time.Second):
			t.Error("no snapshot from the offline room")
		}
	}}
	old := activeTUI
	activeTUI = fake
	defer func() { activeTUI = old }()

	_, _, err := env.run(t, "", "chat", "--offline")
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Empty(t, env.coll.Added(), "offline mode must not touch the live room")

	store, err := cache.Open(config.CacheDriverFile, env.home)
	require.NoError(t, err)
	defer store.Close()
	cached, err := cache.NewMessageCache(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "first", cached[0].Text)
	assert.Equal(t, "second", cached[1].Text)
}

func TestChat_Offline(t *testing.T) {
	env := newCLIEnv(t)
	env.signIn(t, "me@example.com")

	fake := &fakeTUI{outcome: tui.Outcome{SignedOut: true}}
	old := activeTUI
	activeTUI = fake
	defer func() { activeTUI = old }()

	out, _, err := env.run(t, "", "chat", "--offline")
	require.NoError(t, err)
	assert.True(t, fake.called)
	assert.Equal(t, "me@example.com", fake.user.Email)
	assert.Contains(t, out, "Signed out")
}

func TestChat_NotSignedInHint(t *testing.T) {
	env := newCLIEnv(t)

	fake := &fakeTUI{}
	old := activeTUI
	activeTUI = fake
	defer func() { activeTUI = old }()

	_, errOut, err := env.run(t, "", "chat", "--offline")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Not signed in")
}

func TestConfig_OpensSettingsMenu(t *testing.T) {
	env := newCLIEnv(t)

	fake := &fakeTUI{}
	old := activeTUI
	activeTUI = fake
	defer func() { activeTUI = old }()

	_, _, err := env.run(t, "", "config")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.home, "config.json"), fake.settingsPath)
}

func seedCache(t *testing.T, home string, msgs ...models.Message) {
	t.Helper()
	store, err := cache.Open(config.CacheDriverFile, home)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, cache.NewMessageCache(store).Save(context.Background(), msgs))
}

func TestCacheExport(t *testing.T) {
	env := newCLIEnv(t)
	seedCache(t, env.home,
		models.Message{ID: "1", Text: "first line", User: "a@example.com", Type: models.TypeText},
		models.Message{ID: "2", Text: "second line", User: "b@example.com", Type: models.TypeText},
	)

	out, _, err := env.run(t, "", "cache", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "## a@example.com")
	assert.Contains(t, out, "second line")

	path := filepath.Join(env.home, "room.json")
	out, _, err = env.run(t, "", "cache", "export", "--format", "json", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 messages")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"first line"`)

	_, _, err = env.run(t, "", "cache", "export", "--format", "pdf")
	assert.Error(t, err)
}

func TestCacheSearch(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "", "cache", "search", "lunch")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages match")

	seedCache(t, env.home,
		models.Message{ID: "1", Text: "lunch at noon?", User: "a@example.com", Type: models.TypeText},
		models.Message{ID: "2", Text: "sure", User: "b@example.com", Type: models.TypeText},
	)

	out, _, err = env.run(t, "", "cache", "search", "LUNCH")
	require.NoError(t, err)
	assert.Contains(t, out, "a@example.com: lunch at noon?")
	assert.NotContains(t, out, "sure")
}
