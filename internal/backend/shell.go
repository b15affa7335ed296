package backend

import (
	"context"
	"encoding/json"
	"fmt"
)

type shellAdapter struct {
	key   string
	store ShellStore
}

// NewShellAdapter wraps an opened shell store.
func NewShellAdapter(key string, store ShellStore) Adapter {
	return &shellAdapter{key: key, store: store}
}

func (a *shellAdapter) Kind() Kind { return KindDesktopShell }

func (a *shellAdapter) Load(ctx context.Context) (json.RawMessage, bool, error) {
	v, ok, err := a.store.Get(ctx, a.key)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s from shell store: %w", a.key, err)
	}
	if !ok || len(v) == 0 || string(v) == "null" {
		return nil, false, nil
	}
	if !isObject(v) {
		return nil, false, fmt.Errorf("%w: %s is not a JSON object", ErrMalformed, a.key)
	}
	return v, true, nil
}

func (a *shellAdapter) Save(ctx context.Context, rec json.RawMessage) error {
	if err := a.store.Set(ctx, a.key, rec); err != nil {
		return fmt.Errorf("%w: staging %s: %v", ErrWrite, a.key, err)
	}
	if err := a.store.Save(ctx); err != nil {
		return fmt.Errorf("%w: committing shell store: %v", ErrWrite, err)
	}
	return nil
}
