package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

type browserAdapter struct {
	key   string
	items KeyValue
}

// NewBrowserAdapter wraps a synchronous key-value store.
func NewBrowserAdapter(key string, items KeyValue) Adapter {
	return &browserAdapter{key: key, items: items}
}

func (a *browserAdapter) Kind() Kind { return KindBrowser }

func (a *browserAdapter) Load(_ context.Context) (json.RawMessage, bool, error) {
	raw, ok := a.items.GetItem(a.key)
	if !ok || raw == "" {
		return nil, false, nil
	}
	v := json.RawMessage(raw)
	if !isObject(v) {
		return nil, false, fmt.Errorf("%w: %s holds %q", ErrMalformed, a.key, truncate(raw, 64))
	}
	return v, true, nil
}

func (a *browserAdapter) Save(_ context.Context, rec json.RawMessage) error {
	if err := a.items.SetItem(a.key, string(rec)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// isObject reports whether v is well-formed JSON whose top level is an object.
func isObject(v json.RawMessage) bool {
	if !json.Valid(v) {
		return false
	}
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
