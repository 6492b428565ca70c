package platform

import (
	"strings"
	"testing"

	"github.com/shellbox-dev/shellbox/sandbox"
)

func TestSeatbeltProfileBase(t *testing.T) {
	profile := seatbeltProfile("/Users/test/project", sandbox.DefaultPolicy())

	for _, want := range []string{
		"(version 1)",
		"(deny default)",
		"(allow process-exec)",
		"(allow process-fork)",
		"(allow file-read*)",
		"(deny file-write*)",
		`(allow file-write* (subpath "/Users/test/project"))`,
		`(allow file-write* (subpath "/tmp"))`,
		`(allow file-write* (subpath "/private/tmp"))`,
		"(deny network*)",
	} {
		if !strings.Contains(profile, want) {
			t.Errorf("profile missing %q:\n%s", want, profile)
		}
	}
}

func TestSeatbeltProfileNetworkAllowed(t *testing.T) {
	policy := sandbox.DefaultPolicy()
	policy.AllowNetwork = true

	profile := seatbeltProfile("/ws", policy)
	if !strings.Contains(profile, "(allow network*)") {
		t.Error("profile should allow network")
	}
	if strings.Contains(profile, "(deny network*)") {
		t.Error("profile should not deny network")
	}
}

// Deny-write rules must appear after allow-write rules for the same path so
// that, under SBPL's last-match-wins evaluation, deny always beats allow.
func TestSeatbeltProfileDenyWriteAfterAllowWrite(t *testing.T) {
	policy := &sandbox.Policy{
		Enabled:    true,
		AllowWrite: []string{"/data/shared"},
		DenyWrite:  []string{"/data/shared"},
	}

	profile := seatbeltProfile("/ws", policy)
	allowIdx := strings.Index(profile, `(allow file-write* (subpath "/data/shared"))`)
	denyIdx := strings.Index(profile, `(deny file-write* (subpath "/data/shared"))`)

	if allowIdx < 0 || denyIdx < 0 {
		t.Fatalf("profile missing allow/deny rules for /data/shared:\n%s", profile)
	}
	if denyIdx < allowIdx {
		t.Errorf("deny rule at %d must come after allow rule at %d", denyIdx, allowIdx)
	}
}

func TestSeatbeltProfileDenyReadEntries(t *testing.T) {
	policy := &sandbox.Policy{
		Enabled:  true,
		DenyRead: []string{"/etc/secrets", "/opt/keys"},
	}

	profile := seatbeltProfile("/ws", policy)
	allowAll := strings.Index(profile, "(allow file-read*)")
	for _, p := range policy.DenyRead {
		denyIdx := strings.Index(profile, `(deny file-read* (subpath "`+p+`"))`)
		if denyIdx < 0 {
			t.Errorf("profile missing deny-read for %s", p)
			continue
		}
		if denyIdx < allowAll {
			t.Errorf("deny-read for %s must come after the allow-all read rule", p)
		}
	}
}

func TestSeatbeltBuildInvocation(t *testing.T) {
	inv := NewSeatbelt().Build("ls -la", "/Users/test/project", sandbox.DefaultPolicy())
	if inv == nil {
		t.Fatal("Build returned nil")
	}
	if inv.Program != SandboxExecPath {
		t.Errorf("Program = %q, want %q", inv.Program, SandboxExecPath)
	}
	if len(inv.Args) != 5 {
		t.Fatalf("Args = %v, want 5 entries", inv.Args)
	}
	if inv.Args[0] != "-p" {
		t.Errorf("Args[0] = %q, want -p", inv.Args[0])
	}
	if inv.Args[2] != "sh" || inv.Args[3] != "-c" || inv.Args[4] != "ls -la" {
		t.Errorf("trailing args = %v, want [sh -c 'ls -la']", inv.Args[2:])
	}
	if !strings.Contains(inv.Args[1], "(deny default)") {
		t.Error("Args[1] should carry the generated profile")
	}
}

func TestEscapeSBPL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/plain/path", "/plain/path"},
		{`/with"quote`, `/with\"quote`},
		{`/with\backslash`, `/with\\backslash`},
		{"/with\nnewline", `/with\nnewline`},
		{"/with\x00null", "/withnull"},
	}

	for _, tt := range tests {
		if got := escapeSBPL(tt.in); got != tt.want {
			t.Errorf("escapeSBPL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// A path crafted to terminate the string literal must not introduce new
// profile rules.
func TestSeatbeltProfileInjectionResistant(t *testing.T) {
	policy := &sandbox.Policy{
		Enabled:   true,
		DenyWrite: []string{`/tmp/x") (allow network*) (deny file-read* (subpath "/`},
	}

	profile := seatbeltProfile("/ws", policy)
	for _, line := range strings.Split(profile, "\n") {
		if line == "(allow network*)" {
			t.Fatalf("injected rule escaped the string literal:\n%s", profile)
		}
	}
}
