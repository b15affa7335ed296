package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kalambet/themeprefs/internal/api"
	"github.com/kalambet/themeprefs/internal/backend"
	"github.com/kalambet/themeprefs/internal/config"
	"github.com/kalambet/themeprefs/internal/localstore"
	"github.com/kalambet/themeprefs/internal/prefs"
	"github.com/kalambet/themeprefs/internal/settings"
	"github.com/kalambet/themeprefs/internal/theme"
)

// source is where CLI commands read and change preferences: the store
// itself, or a running server.
type source interface {
	View(ctx context.Context) (prefs.View, error)
	SetTheme(ctx context.Context, name string) (prefs.View, error)
	SetRadius(ctx context.Context, radius float64) (prefs.View, error)
	Themes(ctx context.Context) ([]api.ThemeInfo, error)
	CSS(ctx context.Context) (string, error)
	Close() error
}

var openSource = func(ctx context.Context) (source, error) {
	if remote {
		c, err := newAPIClient()
		if err != nil {
			return nil, err
		}
		return &remoteSource{client: c}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg, newLogger(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	return &localSource{store: st}, nil
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// sessionStore is an initialized preference store plus whatever shell store
// it opened.
type sessionStore struct {
	*prefs.Store
	cfg   config.Config
	local *localstore.Store
	shell *settings.Store
}

// Close waits for pending saves and closes the shell store.
func (s *sessionStore) Close() error {
	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	err := s.Flush(flushCtx)
	if s.shell != nil {
		if cerr := s.shell.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// openStore builds and initializes the preference store described by cfg.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sessionStore, error) {
	catalog, err := theme.LoadCatalogOrBuiltin(cfg.Theme.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading theme catalog: %w", err)
	}

	ss := &sessionStore{cfg: cfg, local: localstore.OpenDir(cfg.Storage.DataDir)}
	opener := func(ctx context.Context) (backend.ShellStore, error) {
		st, err := settings.Open(ctx, cfg.Storage.DataDir, cfg.Storage.StoreName)
		if err != nil {
			return nil, err
		}
		ss.shell = st
		return st, nil
	}

	ss.Store = prefs.New(prefs.Deps{
		Shell:    opener,
		Local:    ss.local,
		Catalog:  catalog,
		Mode:     theme.EnvMode{Var: "THEMEPREFS_APPEARANCE_MODE", Fallback: theme.ParseMode(cfg.Appearance.Mode)},
		Defaults: &prefs.Record{Theme: cfg.Prefs.DefaultTheme, Radius: cfg.Prefs.DefaultRadius},
		Logger:   logger,
	})
	if err := ss.Init(ctx); err != nil {
		ss.Close()
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	return ss, nil
}

// localSource works on the store in this process.
type localSource struct {
	store *sessionStore
}

func (l *localSource) View(context.Context) (prefs.View, error) {
	return l.store.View(), nil
}

func (l *localSource) SetTheme(ctx context.Context, name string) (prefs.View, error) {
	if err := l.store.SetTheme(ctx, name); err != nil {
		return prefs.View{}, err
	}
	return l.flushed(ctx)
}

func (l *localSource) SetRadius(ctx context.Context, radius float64) (prefs.View, error) {
	if err := l.store.SetRadius(ctx, radius); err != nil {
		return prefs.View{}, err
	}
	return l.flushed(ctx)
}

func (l *localSource) flushed(ctx context.Context) (prefs.View, error) {
	if err := l.store.Flush(ctx); err != nil {
		return prefs.View{}, err
	}
	return l.store.View(), nil
}

func (l *localSource) Themes(context.Context) ([]api.ThemeInfo, error) {
	return api.ListThemes(l.store), nil
}

func (l *localSource) CSS(context.Context) (string, error) {
	return l.store.CSS(), nil
}

func (l *localSource) Close() error { return l.store.Close() }

// remoteSource goes through the HTTP API of a running server.
type remoteSource struct {
	client *apiClient
}

func (r *remoteSource) View(ctx context.Context) (prefs.View, error) {
	var v prefs.View
	resp, err := r.client.get(ctx, "/preferences")
	if err != nil {
		return v, err
	}
	return v, decodeJSON(resp, &v)
}

func (r *remoteSource) SetTheme(ctx context.Context, name string) (prefs.View, error) {
	var v prefs.View
	resp, err := r.client.put(ctx, "/preferences/theme", map[string]any{"theme": name})
	if err != nil {
		return v, err
	}
	return v, decodeJSON(resp, &v)
}

func (r *remoteSource) SetRadius(ctx context.Context, radius float64) (prefs.View, error) {
	var v prefs.View
	resp, err := r.client.put(ctx, "/preferences/radius", map[string]any{"radius": radius})
	if err != nil {
		return v, err
	}
	return v, decodeJSON(resp, &v)
}

func (r *remoteSource) Themes(ctx context.Context) ([]api.ThemeInfo, error) {
	var themes []api.ThemeInfo
	resp, err := r.client.get(ctx, "/themes")
	if err != nil {
		return nil, err
	}
	return themes, decodeJSON(resp, &themes)
}

func (r *remoteSource) CSS(ctx context.Context) (string, error) {
	resp, err := r.client.get(ctx, "/theme.css")
	if err != nil {
		return "", err
	}
	return readText(resp)
}

func (r *remoteSource) Close() error { return nil }
