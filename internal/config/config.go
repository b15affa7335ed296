// Package config loads the tool configuration for themeprefs: defaults,
// then the platform-native backend, then THEMEPREFS_* environment variables.
package config

import (
	"strings"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Prefs      PrefsConfig
	Theme      ThemeConfig
	Appearance AppearanceConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
	// Token enables bearer auth on the HTTP API when non-empty.
	Token string
}

type StorageConfig struct {
	DataDir   string
	StoreName string
}

type PrefsConfig struct {
	DefaultTheme  string
	DefaultRadius float64
}

type ThemeConfig struct {
	// CatalogPath points at a JSON or YAML catalog. Empty uses the builtin one.
	CatalogPath string
}

type AppearanceConfig struct {
	Mode string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir:   defaultDataDir(),
			StoreName: "settings",
		},
		Prefs: PrefsConfig{
			DefaultTheme:  "zinc",
			DefaultRadius: 0.5,
		},
		Appearance: AppearanceConfig{
			Mode: "light",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.themeprefs.app) and the
// server token falls back to macOS Keychain.
// Elsewhere the backend is a JSON file at $XDG_CONFIG_HOME/themeprefs/config.json
// and the token falls back to $XDG_DATA_HOME/themeprefs/secrets.json.
//
// Environment variables (THEMEPREFS_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// Keychain coordinates of the server token.
const (
	tokenService = "themeprefs"
	tokenAccount = "server_token"
)

// keychain abstracts Keychain access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// The token is optional; a keychain miss leaves the API open on localhost.
	if cfg.Server.Token == "" && kc != nil {
		if tok, err := kc.Get(tokenService, tokenAccount); err == nil && tok != "" {
			cfg.Server.Token = tok
		}
	}

	return cfg, nil
}

// TokenHint names where a server token can be stored besides
// THEMEPREFS_SERVER_TOKEN.
func TokenHint() string { return tokenHint() }

// keychainReader reads from the platform keychain.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
