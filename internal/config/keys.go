package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "THEMEPREFS_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.token", typ: kString, env: "THEMEPREFS_SERVER_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Token },
	},
	{
		key: "storage.data_dir", typ: kString, env: "THEMEPREFS_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.store_name", typ: kString, env: "THEMEPREFS_STORAGE_STORE_NAME",
		apply:   func(cfg *Config, v any) { cfg.Storage.StoreName = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.StoreName },
	},
	{
		key: "prefs.default_theme", typ: kString, env: "THEMEPREFS_PREFS_DEFAULT_THEME",
		apply:   func(cfg *Config, v any) { cfg.Prefs.DefaultTheme = v.(string) },
		extract: func(cfg Config) any { return cfg.Prefs.DefaultTheme },
	},
	{
		key: "prefs.default_radius", typ: kFloat, env: "THEMEPREFS_PREFS_DEFAULT_RADIUS",
		apply:   func(cfg *Config, v any) { cfg.Prefs.DefaultRadius = v.(float64) },
		extract: func(cfg Config) any { return cfg.Prefs.DefaultRadius },
	},
	{
		key: "theme.catalog_path", typ: kString, env: "THEMEPREFS_THEME_CATALOG_PATH",
		apply:   func(cfg *Config, v any) { cfg.Theme.CatalogPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Theme.CatalogPath },
	},
	{
		key: "appearance.mode", typ: kString, env: "THEMEPREFS_APPEARANCE_MODE",
		apply:   func(cfg *Config, v any) { cfg.Appearance.Mode = v.(string) },
		extract: func(cfg Config) any { return cfg.Appearance.Mode },
	},
	{
		key: "log.level", typ: kString, env: "THEMEPREFS_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetFloat(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
