package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/themeprefs/internal/prefs"
)

const testToken = "test-token-12345"

func setupHandler(t *testing.T, token string) (http.Handler, *prefs.Store) {
	t.Helper()
	p, _ := newTestPrefs(t)
	return NewHandler(Deps{Prefs: p, Token: token}), p
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) prefs.View {
	t.Helper()
	var v prefs.View
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding view: %v; body = %s", err, rr.Body.String())
	}
	return v
}

func errorType(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error: %v; body = %s", err, rr.Body.String())
	}
	return body.Error.Type
}

func TestHealth_NoAuth(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/health", "", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestAuth(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", testToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences", "", tt.token))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			if errorType(t, rr) != "authentication_error" {
				t.Errorf("error type = %q, want authentication_error", errorType(t, rr))
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != `Bearer realm="themeprefs"` {
				t.Errorf("WWW-Authenticate = %q", got)
			}
		})
	}
}

func TestAuth_DisabledWithoutToken(t *testing.T) {
	h, _ := setupHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestGetPreferences(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences", "", testToken))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	v := decodeView(t, rr)
	if v.Theme != "zinc" || v.Radius != 0.5 {
		t.Errorf("view = %+v, want zinc/0.5", v)
	}
	if v.PrimaryColor != "hsl(240 5.9% 10%)" {
		t.Errorf("PrimaryColor = %q", v.PrimaryColor)
	}
	if v.Backend != "browser" || !v.Ready {
		t.Errorf("Backend/Ready = %q/%v", v.Backend, v.Ready)
	}
}

func TestPutTheme(t *testing.T) {
	h, p := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/theme", `{"theme":"violet"}`, testToken))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	v := decodeView(t, rr)
	if v.Theme != "violet" || v.DisplayClass != "theme-violet" {
		t.Errorf("view = %+v, want violet", v)
	}
	if p.ThemeName() != "violet" {
		t.Errorf("ThemeName = %q, want violet", p.ThemeName())
	}
}

func TestPutTheme_UnknownName(t *testing.T) {
	h, _ := setupHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/theme", `{"theme":"nonexistent"}`, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	v := decodeView(t, rr)
	if v.DisplayClass != "theme-nonexistent" || v.PrimaryColor != "hsl()" {
		t.Errorf("view = %+v", v)
	}
}

func TestPutTheme_BadRequests(t *testing.T) {
	h, _ := setupHandler(t, "")

	for _, body := range []string{`{}`, `{"theme":""}`, `not json`, `{"theme":5}`} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/theme", body, ""))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, rr.Code, http.StatusBadRequest)
			continue
		}
		if errorType(t, rr) != "invalid_request_error" {
			t.Errorf("body %s: error type = %q", body, errorType(t, rr))
		}
	}
}

func TestPutRadius(t *testing.T) {
	h, p := setupHandler(t, "")

	for _, body := range []string{`{"radius":0.75}`, `{"radius":1.0}`} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/radius", body, ""))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
		}
	}
	if p.Radius() != 1.0 {
		t.Errorf("Radius = %v, want 1", p.Radius())
	}
}

func TestPutRadius_BadRequests(t *testing.T) {
	h, p := setupHandler(t, "")

	for _, body := range []string{`{}`, `{"radius":-0.5}`, `{"radius":"big"}`} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/radius", body, ""))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, rr.Code, http.StatusBadRequest)
		}
	}
	if p.Radius() != 0.5 {
		t.Errorf("Radius = %v after rejected requests, want 0.5", p.Radius())
	}
}

func TestPatchPreferences(t *testing.T) {
	h, _ := setupHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPatch, "/preferences", `{"theme":"green","radius":0.3}`, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	v := decodeView(t, rr)
	if v.Theme != "green" || v.Radius != 0.3 {
		t.Errorf("view = %+v, want green/0.3", v)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPatch, "/preferences", `{"radius":0.9}`, ""))
	v = decodeView(t, rr)
	if v.Theme != "green" || v.Radius != 0.9 {
		t.Errorf("partial patch view = %+v, want green/0.9", v)
	}
}

func TestPatchPreferences_Empty(t *testing.T) {
	h, _ := setupHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPatch, "/preferences", `{}`, ""))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSet_NotInitialized(t *testing.T) {
	h := NewHandler(Deps{Prefs: newUninitializedPrefs()})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/theme", `{"theme":"red"}`, ""))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if errorType(t, rr) != "unavailable_error" {
		t.Errorf("error type = %q, want unavailable_error", errorType(t, rr))
	}
}

func TestListThemes(t *testing.T) {
	h, p := setupHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/themes", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var themes []ThemeInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &themes); err != nil {
		t.Fatalf("decoding themes: %v", err)
	}
	if len(themes) != len(p.Catalog()) {
		t.Fatalf("got %d themes, want %d", len(themes), len(p.Catalog()))
	}
	current := 0
	for _, th := range themes {
		if th.Current {
			current++
			if th.Name != "zinc" {
				t.Errorf("current theme = %q, want zinc", th.Name)
			}
		}
		if !strings.HasPrefix(th.PrimaryColor, "hsl(") {
			t.Errorf("%s primary = %q", th.Name, th.PrimaryColor)
		}
	}
	if current != 1 {
		t.Errorf("%d themes marked current, want 1", current)
	}
}

func TestThemeCSS(t *testing.T) {
	h, _ := setupHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/theme.css", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q, want text/css", ct)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, ".theme-zinc {") || !strings.Contains(body, "--radius: 0.5rem;") {
		t.Errorf("css = %q", body)
	}
}
