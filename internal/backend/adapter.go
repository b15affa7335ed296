// Package backend selects and wraps the store that persists the preference
// record: the desktop shell's structured settings store when the process is
// hosted by the shell, otherwise a synchronous local key-value store.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Error kinds returned by adapters and Select.
var (
	ErrUnavailable = errors.New("backend unavailable")
	ErrMalformed   = errors.New("malformed record")
	ErrWrite       = errors.New("write failed")
)

// Adapter loads and saves the single serialized record under one key.
type Adapter interface {
	Kind() Kind
	// Load returns the stored record. ok is false when nothing is stored.
	Load(ctx context.Context) (rec json.RawMessage, ok bool, err error)
	Save(ctx context.Context, rec json.RawMessage) error
}

// ShellStore is the structured key-value store managed by the desktop shell.
// Set stages a value; Save commits staged values durably.
type ShellStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Save(ctx context.Context) error
}

// ShellOpener opens (or creates) the shell's named store.
type ShellOpener func(ctx context.Context) (ShellStore, error)

// KeyValue is a synchronous string store, the standalone counterpart of the
// shell store.
type KeyValue interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
}

// Select returns the adapter for the session. The shell store is tried only
// when kind is KindDesktopShell; if opening it fails, the browser adapter is
// returned together with an error wrapping ErrUnavailable. The caller keeps
// the returned adapter for the rest of the session.
func Select(ctx context.Context, kind Kind, key string, open ShellOpener, local KeyValue, logger *slog.Logger) (Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	browser := NewBrowserAdapter(key, local)

	if kind != KindDesktopShell {
		return browser, nil
	}
	if open == nil {
		err := fmt.Errorf("%w: no shell store opener configured", ErrUnavailable)
		logger.Warn("desktop shell store unavailable, using local storage", "error", err)
		return browser, err
	}

	store, err := open(ctx)
	if err != nil {
		err = fmt.Errorf("%w: opening shell store: %v", ErrUnavailable, err)
		logger.Warn("desktop shell store unavailable, using local storage", "error", err)
		return browser, err
	}
	return NewShellAdapter(key, store), nil
}
