package api

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/kalambet/themeprefs/internal/backend"
	"github.com/kalambet/themeprefs/internal/localstore"
	"github.com/kalambet/themeprefs/internal/prefs"
)

var ctx = context.Background()

// newTestPrefs returns an initialized store over an in-memory local store.
func newTestPrefs(t *testing.T) (*prefs.Store, *localstore.Store) {
	t.Helper()
	local := localstore.NewMemory()
	p := prefs.New(prefs.Deps{
		Detect: func() backend.Kind { return backend.KindBrowser },
		Local:  local,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	p.Init(ctx)
	return p, local
}

// newUninitializedPrefs returns a store whose Init was never called.
func newUninitializedPrefs() *prefs.Store {
	return prefs.New(prefs.Deps{
		Detect: func() backend.Kind { return backend.KindBrowser },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}
