// Package compat compares the version a Rexster server reports against the
// minimum version the CLI supports.
package compat

import (
	"strings"

	"golang.org/x/mod/semver"
)

// MinimumServerVersion is the oldest Rexster release whose REST API matches
// what the client sends.
const MinimumServerVersion = "2.0.0"

// Result is the outcome of a version check.
type Result struct {
	ServerVersion  string
	MinimumVersion string
	// Valid is false when the server version is not a semantic version; in
	// that case Supported is false as well.
	Valid     bool
	Supported bool
}

// Check compares serverVersion with minimum. An empty minimum uses
// MinimumServerVersion.
func Check(serverVersion, minimum string) Result {
	if strings.TrimSpace(minimum) == "" {
		minimum = MinimumServerVersion
	}
	result := Result{
		ServerVersion:  strings.TrimSpace(serverVersion),
		MinimumVersion: strings.TrimPrefix(strings.TrimSpace(minimum), "v"),
	}

	server := normalizeVersion(result.ServerVersion)
	floor := normalizeVersion(minimum)
	if !semver.IsValid(server) || !semver.IsValid(floor) {
		return result
	}
	result.Valid = true
	result.Supported = semver.Compare(server, floor) >= 0
	return result
}

// Newer reports whether version a is strictly newer than b. Invalid versions
// are never newer.
func Newer(a, b string) bool {
	na, nb := normalizeVersion(a), normalizeVersion(b)
	if !semver.IsValid(na) || !semver.IsValid(nb) {
		return false
	}
	return semver.Compare(na, nb) > 0
}

// normalizeVersion prefixes a "v" and maps Maven style "-SNAPSHOT" builds to
// a semver prerelease.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return strings.Replace(v, "-SNAPSHOT", "-snapshot", 1)
}
