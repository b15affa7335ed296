package backend

import "os"

// DesktopShellMarker is exported by the desktop shell into the environment of
// every process it hosts.
const DesktopShellMarker = "THEMEPREFS_DESKTOP_SHELL"

// Kind identifies a persistence backend.
type Kind int

const (
	KindBrowser Kind = iota
	KindDesktopShell
)

func (k Kind) String() string {
	switch k {
	case KindDesktopShell:
		return "desktop-shell"
	case KindBrowser:
		return "browser"
	default:
		return "unknown"
	}
}

// Detect reports KindDesktopShell when the shell marker is present. A missing
// marker is the normal standalone case, not an error.
func Detect(lookup func(string) (string, bool)) Kind {
	if lookup == nil {
		return KindBrowser
	}
	if _, ok := lookup(DesktopShellMarker); ok {
		return KindDesktopShell
	}
	return KindBrowser
}

// DetectEnv runs Detect against the process environment.
func DetectEnv() Kind {
	return Detect(os.LookupEnv)
}
