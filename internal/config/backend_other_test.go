//go:build !darwin

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themeprefs", "config.json")

	b := newFileBackend(path)
	if err := b.SetInt("server.port", 4300); err != nil {
		t.Fatalf("SetInt failed: %v", err)
	}
	if err := setKeyWith(b, "prefs.default_radius", "0.625"); err != nil {
		t.Fatalf("setKeyWith failed: %v", err)
	}

	again := newFileBackend(path)
	port, ok, err := again.GetInt("server.port")
	if err != nil || !ok || port != 4300 {
		t.Errorf("GetInt(server.port) = %d, %v, %v", port, ok, err)
	}
	radius, ok, err := again.GetFloat("prefs.default_radius")
	if err != nil || !ok || radius != 0.625 {
		t.Errorf("GetFloat(prefs.default_radius) = %v, %v, %v", radius, ok, err)
	}

	if err := again.Delete("server.port"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := newFileBackend(path).GetInt("server.port"); ok {
		t.Error("server.port still present after Delete")
	}
}

func TestFileBackend_NumericRadiusReadsAsString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"prefs.default_radius": 0.75}`), 0o600); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	cfg, err := loadWith(newFileBackend(path), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prefs.DefaultRadius != 0.75 {
		t.Errorf("Prefs.DefaultRadius = %v, want 0.75", cfg.Prefs.DefaultRadius)
	}
}

func TestFileBackend_CorruptFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0o600); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	cfg, err := loadWith(newFileBackend(path), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100", cfg.Server.Port)
	}
}

func TestFileBackend_NullFileAcceptsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("null"), 0o600); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	b := newFileBackend(path)
	if err := setKeyWith(b, "prefs.default_theme", "slate"); err != nil {
		t.Fatalf("setKeyWith: %v", err)
	}
	cfg, err := loadWith(newFileBackend(path), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prefs.DefaultTheme != "slate" {
		t.Errorf("Prefs.DefaultTheme = %q, want slate", cfg.Prefs.DefaultTheme)
	}
}
