// Package validation checks user supplied endpoint settings before a client
// is built.
//
// Rexster servers usually run on localhost or a private network, so loopback
// and private addresses are accepted. Cloud metadata hosts are always
// rejected.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Input limits.
const (
	MaxURLLength       = 2048
	MaxGraphNameLength = 255
	MaxPayloadBytes    = 1 << 20
)

// ValidateBaseURL checks that raw is an absolute http or https URL with a
// host and without query or fragment.
func ValidateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(raw) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters (got %d)", MaxURLLength, len(raw))
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if isCloudMetadata(host) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("base URL must not contain a query or fragment")
	}
	return nil
}

// ValidateGraphName checks that name can be used as a single path segment.
func ValidateGraphName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("graph name cannot be empty")
	}
	if n := utf8.RuneCountInString(name); n > MaxGraphNameLength {
		return fmt.Errorf("graph name exceeds maximum length of %d characters (got %d)", MaxGraphNameLength, n)
	}
	if strings.ContainsAny(name, "/?#") {
		return fmt.Errorf("graph name %q must not contain '/', '?' or '#'", name)
	}
	return nil
}

// ValidatePayloadSize rejects request bodies over MaxPayloadBytes.
func ValidatePayloadSize(n int) error {
	if n > MaxPayloadBytes {
		return fmt.Errorf("request payload exceeds maximum size of %d bytes (got %d)", MaxPayloadBytes, n)
	}
	return nil
}

func isCloudMetadata(hostname string) bool {
	switch h := strings.ToLower(hostname); h {
	case "169.254.169.254", "metadata.google.internal", "metadata", "instance-data", "fd00:ec2::254":
		return true
	default:
		return strings.HasSuffix(h, ".metadata.google.internal")
	}
}
