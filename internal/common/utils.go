package common

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

var (
	markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)
	seedURLPattern      = regexp.MustCompile(`^https?://[a-zA-Z0-9][-a-zA-Z0-9.]*[a-zA-Z0-9](:[0-9]+)?(/[^\s]*)?$`)
)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// Truncate returns at most n characters (runes) of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown artifacts.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// ValidateSeedURL sanitizes rawURL and returns it parsed, or an error if it
// is not an absolute http(s) URL with a usable host.
func ValidateSeedURL(rawURL string) (*url.URL, error) {
	cleaned := SanitizeURL(rawURL)
	if cleaned == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if strings.Contains(cleaned, " ") {
		return nil, fmt.Errorf("URL %q contains spaces", rawURL)
	}
	if !seedURLPattern.MatchString(cleaned) {
		return nil, fmt.Errorf("URL %q is malformed", rawURL)
	}

	parsed, err := url.Parse(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("URL %q must use http or https", rawURL)
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, "{}[]<>\"'") {
		return nil, fmt.Errorf("URL %q has an invalid host", rawURL)
	}
	return parsed, nil
}

// Cell fits s into a table column of the given display width, cutting or
// padding with spaces. Wide characters count as two columns.
func Cell(s string, width int) string {
	s = runewidth.Truncate(s, width, "")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
