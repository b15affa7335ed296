package config

// ConfigBackend is where non-secret themeprefs settings live between runs.
// On macOS that is the com.themeprefs.app defaults domain; elsewhere it is
// $XDG_CONFIG_HOME/themeprefs/config.json. Each typed getter reports
// ok=false for a key that was never written.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	GetFloat(key string) (val float64, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	SetFloat(key string, val float64) error
	Delete(key string) error
}
