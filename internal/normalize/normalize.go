// Package normalize canonicalizes untrusted command strings before any
// sandbox phase inspects them. It is the sole point where raw model output
// becomes the form every later check trusts — nothing downstream re-reads
// the original bytes.
package normalize

import (
	"fmt"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrNonASCII is returned when a residual non-ASCII byte survives
// normalization and stripping.
type ErrNonASCII struct {
	Rune rune
}

func (e *ErrNonASCII) Error() string {
	return fmt.Sprintf("non_ascii_command: residual rune %q", e.Rune)
}

// Command runs the three-step canonicalization required by phase 0 of the
// command sandbox: NFKD normalization, zero-width/format character removal,
// then a hard ASCII check. Every later phase operates only on this string.
func Command(raw string) (string, error) {
	folded := norm.NFKD.String(raw)
	stripped := stripZeroWidth(folded)
	for _, r := range stripped {
		if r > unicode.MaxASCII {
			return "", &ErrNonASCII{Rune: r}
		}
	}
	return stripped, nil
}

// zeroWidthRunes are the specific zero-width / directional-mark code points
// seen in real homoglyph and token-splitting evasion attempts. unicode.Cf
// (the "format" category) catches the rest, but these are checked first
// since they're the ones actually observed in the wild.
var zeroWidthRunes = map[rune]bool{
	'​': true, // ZERO WIDTH SPACE
	'‌': true, // ZERO WIDTH NON-JOINER
	'‍': true, // ZERO WIDTH JOINER
	'‎': true, // LEFT-TO-RIGHT MARK
	'‏': true, // RIGHT-TO-LEFT MARK
	'\uFEFF': true, // BOM / ZERO WIDTH NO-BREAK SPACE
	'⁠': true, // WORD JOINER
	'⁡': true, // FUNCTION APPLICATION
	'⁢': true, // INVISIBLE TIMES
	'⁣': true, // INVISIBLE SEPARATOR
	'⁤': true, // INVISIBLE PLUS
}

// stripZeroWidth removes zero-width and formatting characters (ZWJ, ZWSP,
// BOM, directional marks, ...) that can be used to split or hide tokens
// from allowlist/blocklist matching without changing visual rendering.
func stripZeroWidth(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if isZeroWidthOrFormat(r) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func isZeroWidthOrFormat(r rune) bool {
	if zeroWidthRunes[r] {
		return true
	}
	return unicode.Is(unicode.Cf, r)
}
