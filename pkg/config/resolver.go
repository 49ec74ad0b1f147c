package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// EnvResolver resolves `${env:NAME}` secret-strings from the process
// environment. It is the only resolver the core ships by default; keychain
// backends are collaborator territory, so `keychain://...` returns an
// error. Any string with none of these prefixes is returned unchanged.
//
// A `command://...` form is also honored here because it requires no
// external store beyond what's already on the host, covering the common
// case of shelling out for dynamically produced credentials.
type EnvResolver struct{}

func (EnvResolver) Resolve(secretString string) (string, error) {
	switch {
	case strings.HasPrefix(secretString, "${env:") && strings.HasSuffix(secretString, "}"):
		name := strings.TrimSuffix(strings.TrimPrefix(secretString, "${env:"), "}")
		val, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("config: environment variable %q is not set", name)
		}
		return val, nil
	case strings.HasPrefix(secretString, "command://"):
		command := strings.TrimPrefix(secretString, "command://")
		out, err := exec.Command("sh", "-c", command).Output()
		if err != nil {
			return "", fmt.Errorf("config: resolving %q: %w", secretString, err)
		}
		return strings.TrimSpace(string(out)), nil
	case strings.HasPrefix(secretString, "keychain://"):
		return "", fmt.Errorf("config: keychain secret resolution is not implemented by the default resolver; supply a Resolver from the host application")
	default:
		return secretString, nil
	}
}
