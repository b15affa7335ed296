//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultsDomain = "com.themeprefs.app"

func defaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, "Library", "Application Support", "themeprefs")
	}
	return "themeprefs-data"
}

func tokenHint() string {
	return fmt.Sprintf("macOS Keychain (service: %s, account: %s)", tokenService, tokenAccount)
}

type darwinBackend struct {
	domain string
}

func newPlatformBackend() ConfigBackend {
	return &darwinBackend{domain: defaultsDomain}
}

func (b *darwinBackend) read(key string) (string, bool, error) {
	cmd := exec.Command("defaults", "read", b.domain, key)
	out, err := cmd.CombinedOutput()
	s := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading default for key '%s': %w, output: %s", key, err, s)
	}
	return s, true, nil
}

func (b *darwinBackend) GetString(key string) (string, bool, error) {
	return b.read(key)
}

func (b *darwinBackend) GetInt(key string) (int, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, true, nil
}

func (b *darwinBackend) GetFloat(key string) (float64, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, fmt.Errorf("invalid number for %s: %w", key, err)
	}
	return f, true, nil
}

func (b *darwinBackend) SetString(key, val string) error {
	return b.write(key, "-string", val)
}

func (b *darwinBackend) SetInt(key string, val int) error {
	return b.write(key, "-int", strconv.Itoa(val))
}

func (b *darwinBackend) SetFloat(key string, val float64) error {
	return b.write(key, "-float", strconv.FormatFloat(val, 'f', -1, 64))
}

func (b *darwinBackend) write(key, typ, val string) error {
	out, err := exec.Command("defaults", "write", b.domain, key, typ, val).CombinedOutput()
	if err != nil {
		return fmt.Errorf("writing default for key '%s': %w, output: %s", key, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *darwinBackend) Delete(key string) error {
	out, err := exec.Command("defaults", "delete", b.domain, key).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil
		}
		return fmt.Errorf("deleting default for key '%s': %w, output: %s", key, err, strings.TrimSpace(string(out)))
	}
	return nil
}
