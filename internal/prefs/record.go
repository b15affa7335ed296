package prefs

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/kalambet/themeprefs/internal/backend"
)

// StorageKey is the single slot the record lives under in either backend.
// Changing it orphans previously saved preferences.
const StorageKey = "theme-config"

// Record is the persisted preference record. An empty Theme means no theme
// is set. Extra carries fields this version does not know about so they
// survive a save.
type Record struct {
	Theme  string
	Radius float64
	Extra  map[string]json.RawMessage
}

// DefaultRecord returns the built-in defaults.
func DefaultRecord() Record {
	return Record{Theme: "zinc", Radius: 0.5}
}

func (r Record) clone() Record {
	out := r
	if r.Extra != nil {
		out.Extra = maps.Clone(r.Extra)
	}
	return out
}

// MarshalJSON writes {"theme"?, "radius", ...extra}.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		m[k] = v
	}
	if r.Theme != "" {
		m["theme"] = r.Theme
	}
	m["radius"] = r.Radius
	return json.Marshal(m)
}

// UnmarshalJSON reads a record, keeping unknown fields in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var out Record
	if err := out.apply(fields); err != nil {
		return err
	}
	*r = out
	return nil
}

// apply overlays the present fields onto r.
func (r *Record) apply(fields map[string]json.RawMessage) error {
	for k, v := range fields {
		switch k {
		case "theme":
			var name *string
			if err := json.Unmarshal(v, &name); err != nil {
				return fmt.Errorf("theme: %w", err)
			}
			if name == nil {
				r.Theme = ""
			} else {
				r.Theme = *name
			}
		case "radius":
			var radius *float64
			if err := json.Unmarshal(v, &radius); err != nil {
				return fmt.Errorf("radius: %w", err)
			}
			if radius == nil {
				return fmt.Errorf("radius: null")
			}
			r.Radius = *radius
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[k] = v
		}
	}
	return nil
}

// Merge overlays a stored record onto defaults: fields present in raw win,
// absent fields keep the default. A record that is not an object, or whose
// known fields have the wrong type, yields defaults and an error wrapping
// backend.ErrMalformed.
func Merge(defaults Record, raw json.RawMessage) (Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return defaults.clone(), fmt.Errorf("%w: %v", backend.ErrMalformed, err)
	}
	if fields == nil {
		return defaults.clone(), fmt.Errorf("%w: record is null", backend.ErrMalformed)
	}
	out := defaults.clone()
	if err := out.apply(fields); err != nil {
		return defaults.clone(), fmt.Errorf("%w: %v", backend.ErrMalformed, err)
	}
	return out, nil
}
