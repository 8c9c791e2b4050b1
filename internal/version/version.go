// Package version holds the lowc build fingerprint. The variables can be
// overridden at build time via -ldflags.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

var (
	// Version is the semantic version of lowc. It is also recorded as the
	// producer of every artifact container.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Semver parses Version.
func Semver() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	return v, nil
}

// Pretty renders Version with each numeric component coloured. Colour output
// follows color.NoColor.
func Pretty() string {
	v, err := Semver()
	if err != nil {
		return Version
	}
	s := majorColor.Sprint(v.Major()) + "." + minorColor.Sprint(v.Minor()) + "." + patchColor.Sprint(v.Patch())
	if pre := v.Prerelease(); pre != "" {
		s += "-" + pre
	}
	if meta := v.Metadata(); meta != "" {
		s += "+" + meta
	}
	return s
}

// Compatible reports whether an artifact produced by producer can be reused
// by this build: same major and minor version, any patch.
func Compatible(producer string) bool {
	cur, err := Semver()
	if err != nil {
		return false
	}
	c, err := semver.NewConstraint(fmt.Sprintf("~%d.%d.0-0", cur.Major(), cur.Minor()))
	if err != nil {
		return false
	}
	p, err := semver.NewVersion(producer)
	if err != nil {
		return false
	}
	return c.Check(p)
}
