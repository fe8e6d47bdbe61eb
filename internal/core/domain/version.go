package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ServerVersion is a parsed chat server version such as "0.62.0-rc1".
type ServerVersion struct {
	Major   int     `json:"major"`
	Minor   int     `json:"minor"`
	Patch   int     `json:"patch"`
	Release *string `json:"release,omitempty"`
	Raw     string  `json:"raw"`
}

// ParseServerVersion reads a dot/dash delimited version string.
// It never fails: missing or non-numeric components are 0.
func ParseServerVersion(raw string) ServerVersion {
	v := ServerVersion{Raw: raw}

	parts := strings.Split(raw, "-")
	if len(parts) > 1 {
		release := parts[1]
		v.Release = &release
	}

	numbers := strings.Split(parts[0], ".")
	v.Major = versionNumber(numbers, 0)
	v.Minor = versionNumber(numbers, 1)
	v.Patch = versionNumber(numbers, 2)
	return v
}

func versionNumber(parts []string, index int) int {
	if index >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[index])
	if err != nil {
		return 0
	}
	return n
}

// IsAtLeast reports whether actual is the same as or newer than required.
// Only major, minor and patch take part; release tags are ignored.
func IsAtLeast(actual, required ServerVersion) bool {
	if actual.Major != required.Major {
		return actual.Major > required.Major
	}
	if actual.Minor != required.Minor {
		return actual.Minor > required.Minor
	}
	return actual.Patch >= required.Patch
}

// IsAtLeast is the method form of IsAtLeast.
func (v ServerVersion) IsAtLeast(required ServerVersion) bool {
	return IsAtLeast(v, required)
}

// String returns the normalized major.minor.patch[-release] form.
func (v ServerVersion) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Release != nil {
		s += "-" + *v.Release
	}
	return s
}

// Compatibility is the outcome of comparing a server version with the
// required and recommended thresholds.
type Compatibility int

const (
	// Compatible means the server meets the recommended version.
	Compatible Compatibility = iota
	// NotRecommended means the server meets the required but not the recommended version.
	NotRecommended
	// Incompatible means the server is older than the required version.
	Incompatible
)

// String returns the string representation of the compatibility level.
func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case NotRecommended:
		return "not_recommended"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// ServerInfo is the public server information document.
type ServerInfo struct {
	Version string `json:"version"`
}
