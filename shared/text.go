package shared

import (
	"errors"
	"unicode"
)

const MaxSnippetLen = 64

// ValidateUsername rejects names that would make timeline URIs ambiguous.
func ValidateUsername(username string) error {
	if len(username) == 0 {
		return errors.New("username cannot be empty")
	}
	for _, c := range username {
		if unicode.IsSpace(c) {
			return errors.New("username must not contain whitespace")
		}
		if c == '/' {
			return errors.New("username must not contain slashes")
		}
	}
	return nil
}

func TruncateWithEllipsis(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	// https://stackoverflow.com/a/73939904/7479498
	lastSpaceIx := maxLen
	len := 0
	for i, r := range text {
		if unicode.IsSpace(r) {
			lastSpaceIx = i
		}
		len++
		if len > maxLen {
			return text[:lastSpaceIx] + "…"
		}
	}
	// If here, string is shorter or equal to maxLen
	return text
}
