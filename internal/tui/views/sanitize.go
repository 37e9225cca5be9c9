package views

import (
	"strings"
	"unicode/utf8"
)

// sanitizeForTerminal drops runes that break tcell cell accounting or
// would reach the terminal as control sequences: emoji modifiers and
// joiners, variation selectors, and C0/C1 controls other than newline and
// tab. A skin-toned thumbs-up becomes a plain two-cell thumbs-up.
func sanitizeForTerminal(s string) string {
	if !strings.ContainsFunc(s, dropRune) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if !dropRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func dropRune(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case r < 0x20 || (r >= 0x7F && r <= 0x9F):
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return true
	case r == 0x200D: // zero width joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	case r == utf8.RuneError:
		return true
	default:
		return false
	}
}
