// Package envutil provides environment-variable helpers for the process
// spawner: PATH augmentation for non-login shells and prefix-based scrubbing
// of injection-prone variables.
package envutil

import (
	"os"
	"path/filepath"
	"strings"
)

// PathWithUserDirs returns the PATH value to hand to spawned commands. It
// prepends user-local tool directories (currently ~/.local/bin) that a
// non-login shell would otherwise miss. Directories that do not exist are
// left out; when none exist the current PATH is returned unchanged.
func PathWithUserDirs(current string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return current
	}

	var extra []string
	for _, dir := range []string{filepath.Join(home, ".local", "bin")} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			extra = append(extra, dir)
		}
	}
	if len(extra) == 0 {
		return current
	}
	return strings.Join(extra, string(os.PathListSeparator)) + string(os.PathListSeparator) + current
}

// SetEnv sets or replaces an environment variable in an env slice. If the
// key already exists its value is updated in place; otherwise the new entry
// is appended.
func SetEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// RemoveEnvPrefix removes all variables whose key starts with prefix from an
// env slice. The spawner uses it to strip DYLD_* and LD_* variables before
// sandboxed execution, preventing dynamic-library injection.
func RemoveEnvPrefix(env []string, prefix string) []string {
	result := make([]string, 0, len(env))
	for _, e := range env {
		key := e
		if idx := strings.IndexByte(e, '='); idx >= 0 {
			key = e[:idx]
		}
		if !strings.HasPrefix(key, prefix) {
			result = append(result, e)
		}
	}
	return result
}
