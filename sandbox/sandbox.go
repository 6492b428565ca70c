// Package sandbox defines the declarative access policy applied to shell
// commands and its on-disk persistence.
//
// A Policy describes which filesystem paths a command may read or write and
// whether it may reach the network. Policies are loaded fresh from a fixed
// per-user location on every command invocation; a missing or unparseable
// file falls back to DefaultPolicy and is never an error for the caller.
package sandbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// policyFile is the policy location relative to the user's home directory.
const policyFile = ".shellbox/sandbox-policy.json"

// Policy describes allowed and denied filesystem and network access for
// sandboxed commands.
//
// DenyWrite always takes precedence over AllowWrite for overlapping paths.
// Path entries may use a leading "~" as home-directory shorthand; callers
// must expand entries via ExpandHome before handing them to the OS.
type Policy struct {
	// Enabled controls whether commands run inside the OS sandbox at all.
	Enabled bool `json:"enabled"`

	// DenyRead lists paths the command must not read. Reads are otherwise
	// unrestricted, so this is an exception list over an allow-all base.
	DenyRead []string `json:"denyRead"`

	// AllowWrite lists paths writable in addition to the workspace root
	// and the temp area.
	AllowWrite []string `json:"allowWrite"`

	// DenyWrite lists paths that must never be writable, even when covered
	// by AllowWrite or the workspace root.
	DenyWrite []string `json:"denyWrite"`

	// AllowNetwork permits network access from inside the sandbox.
	AllowNetwork bool `json:"allowNetwork"`
}

// DefaultPolicy returns the policy used when no file exists on disk:
// sandboxing on, common credential directories unreadable, no extra
// writable paths, network denied.
func DefaultPolicy() *Policy {
	return &Policy{
		Enabled: true,
		DenyRead: []string{
			"~/.ssh",
			"~/.aws",
			"~/.gnupg",
			"~/.config/gcloud",
		},
		AllowWrite:   []string{}, // workspace root and temp are added at run time
		DenyWrite:    []string{},
		AllowNetwork: false,
	}
}

// Clone returns a deep copy of the policy. The execution engine mutates a
// clone when appending ephemeral allow-write entries so the loaded policy
// is never changed in place.
func (p *Policy) Clone() *Policy {
	cp := *p
	cp.DenyRead = append([]string(nil), p.DenyRead...)
	cp.AllowWrite = append([]string(nil), p.AllowWrite...)
	cp.DenyWrite = append([]string(nil), p.DenyWrite...)
	return &cp
}

// Load reads the policy from the default per-user location.
// Any read or parse failure yields DefaultPolicy; Load never fails.
func Load() *Policy {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads the policy from path, falling back to DefaultPolicy on any
// error. The file may contain comments and trailing commas (JSONC); Save
// always writes plain JSON.
func LoadFrom(path string) *Policy {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultPolicy()
	}
	p := new(Policy)
	if err := json.Unmarshal(jsonc.ToJSON(data), p); err != nil {
		return DefaultPolicy()
	}
	return p
}

// Save writes the policy to the default per-user location.
func Save(p *Policy) error {
	return SaveTo(DefaultPath(), p)
}

// SaveTo serializes the policy as indented JSON and writes it to path,
// creating parent directories as needed.
func SaveTo(path string, p *Policy) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sandbox: create policy dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("sandbox: encode policy: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("sandbox: write policy: %w", err)
	}
	return nil
}

// DefaultPath returns the fixed per-user policy location,
// ~/.shellbox/sandbox-policy.json. When the home directory cannot be
// determined the path is rooted at the system temp directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, filepath.FromSlash(policyFile))
}

// ExpandHome expands a leading "~" or "~/" to the user's home directory.
// It is pure apart from the home lookup and never touches the filesystem.
// Paths without the shorthand are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
