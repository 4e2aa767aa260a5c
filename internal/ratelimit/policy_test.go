package ratelimit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "contractor-verify/pkg/errors"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ratelimit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestLoadPolicy(t *testing.T) {
	path := writePolicy(t, `
default_limit: 50
default_window_minutes: 15
actions:
  verify_business:
    limit: 10
    window_minutes: 60
  login:
    limit: 5
    window_minutes: 5
`)

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}

	limit, window := p.Resolve("verify_business")
	if limit != 10 || window != time.Hour {
		t.Errorf("verify_business = (%d, %v), want (10, 1h)", limit, window)
	}

	limit, window = p.Resolve("unknown_action")
	if limit != 50 || window != 15*time.Minute {
		t.Errorf("fallback = (%d, %v), want (50, 15m)", limit, window)
	}
}

func TestLoadPolicyDefaultsWhenOmitted(t *testing.T) {
	path := writePolicy(t, `
actions:
  login:
    limit: 5
    window_minutes: 5
`)

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	limit, window := p.Resolve("anything")
	if limit != 100 || window != time.Hour {
		t.Errorf("built-in defaults = (%d, %v), want (100, 1h)", limit, window)
	}
}

func TestLoadPolicyRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero action limit":  "actions:\n  x:\n    limit: 0\n    window_minutes: 5\n",
		"negative defaults":  "default_limit: -1\n",
		"non yaml":           "{{{not yaml",
		"zero action window": "actions:\n  x:\n    limit: 5\n    window_minutes: 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPolicy(writePolicy(t, content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, errs.ErrPolicy) {
				t.Errorf("err = %v, want policy error", err)
			}
		})
	}
}

func TestLoadPolicyMissingFile(t *testing.T) {
	_, err := LoadPolicy("/nonexistent/ratelimit.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errs.Is(err, errs.ErrPolicy) {
		t.Errorf("err = %v, want policy error", err)
	}
}
