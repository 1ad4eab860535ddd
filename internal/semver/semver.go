// Package semver implements the narrow three-part version compare the
// preamble's VERSION metadata field needs (spec.md §4.1, SPEC_FULL.md §9).
// No pack dependency covers bare major.minor.patch compare against a
// {min,max} range without pulling in full constraint-expression parsing,
// so this stays hand-rolled; see DESIGN.md.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed major.minor.patch version.
type Version struct {
	Major, Minor, Patch int
}

// Parse parses a "X.Y.Z" string. A missing minor or patch component
// defaults to 0 ("2" parses as 2.0.0).
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("semver: too many components in %q", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("semver: invalid component %q in %q", p, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmp(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmp(v.Minor, other.Minor)
	default:
		return cmp(v.Patch, other.Patch)
	}
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Range is an inclusive [Min, Max] supported version range.
type Range struct {
	Min, Max Version
}

// Result classifies a version against a Range.
type Result int

const (
	Supported Result = iota
	TooOld
	TooNew
	Invalid
)

func (r Result) String() string {
	switch r {
	case Supported:
		return "Supported"
	case TooOld:
		return "TooOld"
	case TooNew:
		return "TooNew"
	default:
		return "Invalid"
	}
}

// Check parses raw and classifies it against rng. A parse failure is
// reported as Invalid, never as an error — the caller (irstream) maps
// every non-Supported Result to errs.ErrUnsupportedVersion uniformly.
func Check(raw string, rng Range) Result {
	v, err := Parse(raw)
	if err != nil {
		return Invalid
	}
	if v.Compare(rng.Min) < 0 {
		return TooOld
	}
	if v.Compare(rng.Max) > 0 {
		return TooNew
	}
	return Supported
}
