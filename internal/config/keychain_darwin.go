//go:build darwin

package config

import (
	"context"
	"os/exec"
	"time"
)

// keychainTimeout bounds a Keychain lookup; a locked keychain can prompt and
// block the security tool indefinitely.
const keychainTimeout = 3 * time.Second

// keychainExec reads a generic password, such as the server token stored with
//
//	security add-generic-password -s themeprefs -a server_token -w <token>
func keychainExec(service, account string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), keychainTimeout)
	defer cancel()
	return exec.CommandContext(ctx,
		"security", "find-generic-password",
		"-s", service,
		"-a", account,
		"-w",
	).Output()
}
