package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// Stats summarizes a piece of markdown without exposing it.
type Stats struct {
	Fingerprint string
	Bytes       int
	Words       int
	Headings    int
}

// Fingerprint hashes content into a short stable identifier for log correlation.
func Fingerprint(content string) string {
	if content == "" {
		return ""
	}
	s := sha1.Sum([]byte(content))
	return hex.EncodeToString(s[:6])
}

// WordCount counts whitespace separated tokens.
func WordCount(content string) int {
	trimmed := strings.TrimSpace(whitespace.ReplaceAllString(content, " "))
	if trimmed == "" {
		return 0
	}
	return len(strings.Split(trimmed, " "))
}

// Describe builds Stats for content.
func Describe(content string) Stats {
	return Stats{
		Fingerprint: Fingerprint(content),
		Bytes:       len(content),
		Words:       WordCount(content),
		Headings:    len(headingRe.FindAllStringIndex(content, -1)),
	}
}

// Abbreviate shortens s to at most n runes, marking the cut with "...".
func Abbreviate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
