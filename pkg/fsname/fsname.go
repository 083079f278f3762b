// Package fsname maps arbitrary titles to filesystem-safe path segments.
//
// The same input must always produce the same output: directory and file
// names derived here are how downloads are matched back to their source
// titles on later runs.
package fsname

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Fallback is returned when sanitization leaves nothing usable.
const Fallback = "unnamed_file"

var (
	// Characters forbidden on common filesystems (Windows is the strictest),
	// plus ASCII control characters.
	forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	separatorRuns  = regexp.MustCompile(`[\s\-]+`)
)

// Sanitize returns a filesystem-safe rendition of title. Forbidden characters
// are removed outright (never replaced with placeholders, which could collide),
// whitespace and hyphen runs collapse to a single underscore, and leading or
// trailing separators and punctuation are trimmed. Empty or fully-consumed
// input yields Fallback.
//
// Sanitize is idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(title string) string {
	s := forbiddenChars.ReplaceAllString(title, "")
	s = separatorRuns.ReplaceAllString(s, "_")
	s = strings.TrimFunc(s, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})

	if s == "" {
		return Fallback
	}
	return s
}

// SanitizeLimit sanitizes title and truncates the result to at most maxLen
// runes, preserving the file extension when one is present.
func SanitizeLimit(title string, maxLen int) string {
	s := Sanitize(title)
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}

	ext := filepath.Ext(s)
	extLen := len([]rune(ext))
	if extLen >= maxLen {
		// Extension alone does not fit; plain cut is all we can do.
		return string(runes[:maxLen])
	}

	stem := []rune(strings.TrimSuffix(s, ext))
	return string(stem[:maxLen-extLen]) + ext
}
