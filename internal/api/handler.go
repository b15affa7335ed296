package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/themeprefs/internal/prefs"
	"github.com/kalambet/themeprefs/internal/theme"
)

const maxRequestBodySize = 64 << 10 // 64KB

// Preferences is the preference state the API reads and mutates.
// *prefs.Store satisfies it.
type Preferences interface {
	View() prefs.View
	CSS() string
	Catalog() theme.Catalog
	Mode() theme.Mode
	SetTheme(ctx context.Context, name string) error
	SetRadius(ctx context.Context, radius float64) error
	Flush(ctx context.Context) error
}

// Deps holds dependencies for the HTTP API.
type Deps struct {
	Prefs Preferences
	// Token enables bearer auth on everything except /health.
	Token string
}

// ThemeInfo is one catalog entry as listed by the API and MCP tools.
type ThemeInfo struct {
	Name         string `json:"name"`
	PrimaryColor string `json:"primary_color"`
	Hex          string `json:"hex,omitempty"`
	Current      bool   `json:"current"`
}

type preferencesPatch struct {
	Theme  *string  `json:"theme"`
	Radius *float64 `json:"radius"`
}

// NewHandler returns the preferences REST API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/preferences", handleGetPreferences(deps))
		r.Patch("/preferences", handlePatchPreferences(deps))
		r.Put("/preferences/theme", handlePutTheme(deps))
		r.Put("/preferences/radius", handlePutRadius(deps))
		r.Get("/themes", handleListThemes(deps))
		r.Get("/theme.css", handleThemeCSS(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleGetPreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Prefs.View())
	}
}

func handlePatchPreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch preferencesPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		if patch.Theme == nil && patch.Radius == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "at least one of theme or radius is required")
			return
		}
		if patch.Theme != nil && *patch.Theme == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "theme must not be empty")
			return
		}
		if patch.Radius != nil {
			if err := validateRadius(*patch.Radius); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
				return
			}
		}

		if patch.Theme != nil {
			if err := deps.Prefs.SetTheme(r.Context(), *patch.Theme); err != nil {
				writeSetError(w, err)
				return
			}
		}
		if patch.Radius != nil {
			if err := deps.Prefs.SetRadius(r.Context(), *patch.Radius); err != nil {
				writeSetError(w, err)
				return
			}
		}
		respondAfterSave(w, r, deps)
	}
}

func handlePutTheme(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Theme string `json:"theme"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Theme == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "theme is required")
			return
		}
		if err := deps.Prefs.SetTheme(r.Context(), body.Theme); err != nil {
			writeSetError(w, err)
			return
		}
		respondAfterSave(w, r, deps)
	}
}

func handlePutRadius(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Radius *float64 `json:"radius"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Radius == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "radius is required")
			return
		}
		if err := validateRadius(*body.Radius); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		if err := deps.Prefs.SetRadius(r.Context(), *body.Radius); err != nil {
			writeSetError(w, err)
			return
		}
		respondAfterSave(w, r, deps)
	}
}

func handleListThemes(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ListThemes(deps.Prefs))
	}
}

func handleThemeCSS(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Write([]byte(deps.Prefs.CSS()))
	}
}

// ListThemes resolves every catalog entry against the current mode.
func ListThemes(p Preferences) []ThemeInfo {
	view := p.View()
	mode := p.Mode()
	catalog := p.Catalog()

	out := make([]ThemeInfo, 0, len(catalog))
	for _, t := range catalog {
		primary := t.CSSVars.ForMode(mode)["primary"]
		info := ThemeInfo{
			Name:         t.Name,
			PrimaryColor: theme.FormatHSL(primary),
			Current:      t.Name == view.Theme,
		}
		if hex, err := theme.HexColor(primary); err == nil {
			info.Hex = hex
		}
		out = append(out, info)
	}
	return out
}

func validateRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return fmt.Errorf("radius must be a non-negative number, got %v", r)
	}
	return nil
}

// respondAfterSave waits for the write-through to land, then returns the view.
// Save failures are logged by the store and do not fail the request.
func respondAfterSave(w http.ResponseWriter, r *http.Request, deps Deps) {
	if err := deps.Prefs.Flush(r.Context()); err != nil {
		slog.Warn("waiting for preference save", "error", err)
	}
	writeJSON(w, http.StatusOK, deps.Prefs.View())
}

func writeSetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prefs.ErrNotInitialized):
		httpError(w, http.StatusServiceUnavailable, "unavailable_error", "preferences not loaded yet")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpError(w, http.StatusServiceUnavailable, "unavailable_error", "request ended before preferences loaded: %v", err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "updating preferences: %v", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
