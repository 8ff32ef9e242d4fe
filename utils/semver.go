package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var semverRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)`)

// ParseSemver extracts the leading major.minor.patch triple from a version
// string. Returns ok=false when the string does not start with one.
func ParseSemver(v string) (parts [3]int, ok bool) {
	m := semverRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return parts, false
	}
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return parts, false
		}
		parts[i] = n
	}
	return parts, true
}

// SemverGte reports a >= b. Unparseable versions satisfy the bound
// (fail-open): a client that cannot report a clean version string is not
// locked out by version gating.
func SemverGte(a, b string) bool {
	pa, okA := ParseSemver(a)
	pb, okB := ParseSemver(b)
	if !okA || !okB {
		return true
	}
	for i := 0; i < 3; i++ {
		if pa[i] > pb[i] {
			return true
		}
		if pa[i] < pb[i] {
			return false
		}
	}
	return true
}

// SemverLte reports a <= b, with the same fail-open rule.
func SemverLte(a, b string) bool {
	pa, okA := ParseSemver(a)
	pb, okB := ParseSemver(b)
	if !okA || !okB {
		return true
	}
	for i := 0; i < 3; i++ {
		if pa[i] < pb[i] {
			return true
		}
		if pa[i] > pb[i] {
			return false
		}
	}
	return true
}
