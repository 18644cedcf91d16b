// Package version reports the build the binary was produced from.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Set at link time:
//
//	go build -ldflags "-X github.com/tierworks/sellertiers/internal/shared/version.Version=1.4.0 -X github.com/tierworks/sellertiers/internal/shared/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = "unknown"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// IsRelease reports whether v is a valid semantic version without a
// prerelease suffix. Development builds report false.
func IsRelease(v string) bool {
	n := Normalize(v)
	return semver.IsValid(n) && semver.Prerelease(n) == ""
}

// Info describes the running build.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Release bool   `json:"release"`
}

// Current returns the build info of this binary. Valid versions are
// reported in canonical form.
func Current() Info {
	v := Version
	if n := Normalize(v); semver.IsValid(n) {
		v = semver.Canonical(n)
	}
	return Info{Version: v, Commit: Commit, Release: IsRelease(Version)}
}
