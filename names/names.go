// Package names generates kubernetes-compatible resource names from construct paths.
package names

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

const (
	// DefaultMaxLen is the maximum length of a DNS label (RFC 1123)
	DefaultMaxLen = 63
	// HashLen is the number of hex characters of the path hash appended to generated names
	HashLen = 8

	// hiddenComponent is dropped from generated names, so constructs can be wrapped without changing names
	hiddenComponent = "Default"
	delimiter       = "-"
)

var invalidChars = regexp.MustCompile(`[^a-z0-9-]`)

// Options controls name generation
type Options struct {
	// MaxLen is the maximum length of the generated name. If <= 0, DefaultMaxLen is used.
	MaxLen int
	// DisableHash turns off the hash suffix. Names are then only unique if the paths' components are.
	DisableHash bool
}

// ToDNSLabel generates a name from the provided path components that is a valid RFC 1123 DNS label.
// Components are lowercased and stripped of invalid characters, and empty or "Default" components are dropped.
// Unless disabled, an 8-character hash of the full original path is appended,
// so two distinct paths never produce the same name even if their sanitized components collide.
// If the result would exceed MaxLen, components are trimmed and the hash is kept.
func ToDNSLabel(path []string, opts Options) string {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	components := make([]string, 0, len(path))
	for _, p := range path {
		if p == hiddenComponent {
			continue
		}
		c := strings.Trim(invalidChars.ReplaceAllString(strings.ToLower(p), ""), delimiter)
		if c == "" {
			continue
		}
		components = append(components, c)
	}

	if opts.DisableHash {
		return trim(strings.Join(components, delimiter), maxLen)
	}

	hash := pathHash(path)
	if len(components) == 0 {
		return trim(hash, maxLen)
	}
	// Leave room for the delimiter and the hash
	budget := maxLen - HashLen - len(delimiter)
	if budget <= 0 {
		return trim(hash, maxLen)
	}
	prefix := trim(strings.Join(components, delimiter), budget)
	return prefix + delimiter + hash
}

func pathHash(path []string) string {
	sum := sha256.Sum256([]byte(strings.Join(path, "/")))
	return hex.EncodeToString(sum[:])[:HashLen]
}

func trim(s string, maxLen int) string {
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.Trim(s, delimiter)
}
