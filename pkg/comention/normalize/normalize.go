// Package normalize folds arbitrary text into the canonical form all
// matching operates on, and splits entity names into comparable tokens.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// suffixes are generational/possessive name parts that carry no
// discriminating power ("Griffey Jr" and "Griffey" are the same person
// as far as a headline is concerned).
var suffixes = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
	"v":   {},
}

// Normalize folds text to a canonical comparable form:
// accents are decomposed and stripped, everything is lowercased, any rune
// outside [a-z0-9 ] becomes a space, whitespace runs collapse to one space,
// and the result is trimmed. The function is pure and idempotent, so
// "José Fernández" and "jose fernandez" fold to the same bytes.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Step 1: canonical decomposition, then drop the combining marks the
	// decomposition split off. "é" becomes "e" + U+0301; the mark goes.
	decomposed := norm.NFD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSpace := false

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}

		// Step 2: lowercase before the ASCII filter so "É" survives as "e".
		r = unicode.ToLower(r)

		// Step 3+4: anything outside [a-z0-9] separates tokens; runs of
		// separators collapse to a single space, leading ones vanish.
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		} else if b.Len() > 0 {
			pendingSpace = true
		}
	}

	return b.String()
}

// Tokenize normalizes an entity name and splits it into name tokens,
// dropping generational suffixes and fragments shorter than 2 characters.
// Order follows the source name so output stays deterministic.
func Tokenize(name string) []string {
	normalized := Normalize(name)
	if normalized == "" {
		return nil
	}

	parts := strings.Split(normalized, " ")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if _, drop := suffixes[part]; drop {
			continue
		}
		if len(part) < 2 {
			continue
		}
		tokens = append(tokens, part)
	}

	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
