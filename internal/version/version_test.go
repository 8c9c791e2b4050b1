package version

import (
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := Version
	Version = v
	t.Cleanup(func() { Version = orig })
}

func TestDefaultVersionParses(t *testing.T) {
	if _, err := Semver(); err != nil {
		t.Fatalf("default Version %q: %v", Version, err)
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	withVersion(t, "1.4.2-rc.1+abc")
	if got := Pretty(); got != "1.4.2-rc.1+abc" {
		t.Fatalf("Pretty() = %q", got)
	}

	withVersion(t, "not a version")
	if got := Pretty(); got != "not a version" {
		t.Fatalf("Pretty() = %q", got)
	}
}

func TestCompatible(t *testing.T) {
	withVersion(t, "0.3.1")
	tests := []struct {
		producer string
		want     bool
	}{
		{"0.3.0", true},
		{"0.3.9", true},
		{"0.3.2-dev", true},
		{"0.4.0", false},
		{"0.2.9", false},
		{"1.3.0", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := Compatible(tt.producer); got != tt.want {
			t.Errorf("Compatible(%q) = %v, want %v", tt.producer, got, tt.want)
		}
	}
}
