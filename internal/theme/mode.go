package theme

import "os"

// Mode is the appearance mode supplied by the host.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode maps exactly "dark" to ModeDark and everything else to ModeLight.
func ParseMode(s string) Mode {
	if s == string(ModeDark) {
		return ModeDark
	}
	return ModeLight
}

// ModeProvider yields the current appearance mode.
type ModeProvider interface {
	Mode() Mode
}

// StaticMode is a ModeProvider that always reports the same mode.
type StaticMode string

func (m StaticMode) Mode() Mode { return ParseMode(string(m)) }

// EnvMode reads the mode from an environment variable on every call, falling
// back to Fallback when the variable is unset.
type EnvMode struct {
	Var      string
	Fallback Mode
}

func (e EnvMode) Mode() Mode {
	if v, ok := os.LookupEnv(e.Var); ok {
		return ParseMode(v)
	}
	return ParseMode(string(e.Fallback))
}
