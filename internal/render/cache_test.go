package render

import (
	"strings"
	"sync"
	"testing"
)

func TestCacheKey_FollowsOptions(t *testing.T) {
	base := DefaultOptions()

	variants := map[string]Options{
		"narrow pane":  base.WithWidth(36),
		"light theme":  base.WithStyle(ThemeLight),
		"no emoji":     base.WithEmoji(false),
		"joined lines": base.WithPreserveNewLines(false),
	}
	for name, opts := range variants {
		if cacheKey(opts) == cacheKey(base) {
			t.Errorf("%s: expected a key different from the default", name)
		}
	}

	if cacheKey(base) != cacheKey(DefaultOptions()) {
		t.Error("equal options should share a key")
	}
}

func TestPool_ReusesPerBubbleWidth(t *testing.T) {
	ClearCache()
	defer ClearCache()

	// a resized terminal asks for a second bubble width
	wide := DefaultOptions().WithWidth(72)
	narrow := DefaultOptions().WithWidth(48)

	r1, err := globalPool.get(wide)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := r1.Render("see you at **noon**")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, "noon") {
		t.Errorf("expected the message text in %q", out)
	}
	globalPool.put(wide, r1)

	if _, err := globalPool.get(wide); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("expected 1 pool after reuse, got %d", CacheSize())
	}

	r2, err := globalPool.get(narrow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	globalPool.put(narrow, r2)
	if CacheSize() != 2 {
		t.Errorf("expected 2 pools, got %d", CacheSize())
	}
}

func TestPool_ConcurrentMessageText(t *testing.T) {
	ClearCache()
	defer ClearCache()

	msgs := []string{
		"hello room",
		"anyone up for *lunch*?",
		"`make test` is green :tada:",
		"- bring snacks\n- bring coffee",
	}

	opts := DefaultOptions().WithWidth(60)
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			if out := MessageText(text, opts); strings.TrimSpace(out) == "" {
				errs <- text
			}
		}(msgs[i%len(msgs)])
	}
	wg.Wait()
	close(errs)

	for text := range errs {
		t.Errorf("empty render for %q", text)
	}
	if CacheSize() != 1 {
		t.Errorf("expected 1 pool after concurrent renders, got %d", CacheSize())
	}
}

func TestClearCache_DropsPools(t *testing.T) {
	ClearCache()

	MessageText("brb", DefaultOptions())
	if CacheSize() != 1 {
		t.Errorf("expected 1 pool, got %d", CacheSize())
	}

	ClearCache()
	if CacheSize() != 0 {
		t.Errorf("expected 0 pools after clear, got %d", CacheSize())
	}
}

func TestCreateRenderer_CustomStylePath(t *testing.T) {
	if _, err := createRenderer(DefaultOptions().WithStyle("/nonexistent/room-theme.json")); err == nil {
		t.Error("expected an error for a missing style file")
	}

	r, err := createRenderer(DefaultOptions().WithStyle(ThemeLight))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out, err := r.Render("# standup notes"); err != nil || out == "" {
		t.Errorf("expected rendered heading, got %q (%v)", out, err)
	}
}
