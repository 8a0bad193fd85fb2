package rewrite

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// entity matches a character reference that is already encoded and must not be encoded twice.
var entity = regexp.MustCompile(`^&(?:[A-Za-z][A-Za-z0-9]{1,31}|#[0-9]{1,7}|#[xX][0-9A-Fa-f]{1,6});`)

// EscapeAttr makes s safe to embed inside a double-quoted attribute value.
//
// Control characters are neutralised (tab, newline and carriage return become
// spaces, everything else is dropped, as is invalid UTF-8). The markup-significant
// characters & < > " ' are encoded; existing character references are kept as-is.
func EscapeAttr(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}

		switch {
		case r == '&':
			if m := entity.FindString(s[i:]); m != "" {
				b.WriteString(m)
				i += len(m)
				continue
			}
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '"':
			b.WriteString("&quot;")
		case r == '\'':
			b.WriteString("&#039;")
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
		i += size
	}

	return b.String()
}
