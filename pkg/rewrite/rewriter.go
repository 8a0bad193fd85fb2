// Package rewrite scans HTML fragments for image elements and rewrites their alt attribute.
//
// Matching is a lightweight regular-expression pass, not an HTML parser: a single
// element type and a single attribute do not need one. Markup that a browser would
// repair (a '>' inside an attribute value, unterminated tags) is matched best-effort.
package rewrite

import (
	"regexp"
	"strings"
)

const tagName = "<img"

var (
	// imgTag matches one opening image tag, up to the first '>'.
	imgTag = regexp.MustCompile(`(?i)<img(?:[\s/][^>]*)?>`)

	// attrToken matches the next attribute at the start of the input. Group 1 is the
	// name, group 2 the optional raw value including its quotes.
	attrToken = regexp.MustCompile(`^[\s/]*([^\s"'>/=]+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s"'=<>` + "`" + `]+))?`)
)

// Element describes one image tag found in a body.
type Element struct {
	Offset int    `json:"offset"` // byte offset of the tag in the body
	Markup string `json:"markup"`
	HasAlt bool   `json:"has_alt"`
	Alt    string `json:"alt"` // attribute value without quotes; empty when HasAlt is false
}

// Rewriter sets the alt attribute of every image element to a label.
// The zero value is ready to use and holds no state.
type Rewriter struct{}

// New returns a Rewriter.
func New() Rewriter {
	return Rewriter{}
}

// Rewrite returns body with every image's alt attribute set to label and the number
// of elements whose markup changed. Elements that already carry exactly the escaped
// label are left untouched and not counted, so rewriting the output again with the
// same label reports zero changes.
func (Rewriter) Rewrite(body, label string) (string, int) {
	if body == "" {
		return body, 0
	}

	attr := `alt="` + EscapeAttr(label) + `"`
	changed := 0

	out := imgTag.ReplaceAllStringFunc(body, func(tag string) string {
		next := rewriteTag(tag, attr)
		if next != tag {
			changed++
		}
		return next
	})

	if changed == 0 {
		return body, 0
	}
	return out, changed
}

// rewriteTag applies attr to a single tag. First syntactic alt occurrence wins.
func rewriteTag(tag, attr string) string {
	a, ok := findAlt(tag)
	if !ok {
		return tag[:len(tagName)] + " " + attr + tag[len(tagName):]
	}
	if tag[a.start:a.end] == attr {
		return tag
	}
	return tag[:a.start] + attr + tag[a.end:]
}

// altSpan locates an alt attribute inside a tag.
type altSpan struct {
	start, end int // whole attribute, name through value
	value      string
}

// findAlt walks the attributes of tag in order and returns the first one named alt.
// Characters that cannot start an attribute are skipped one at a time.
func findAlt(tag string) (altSpan, bool) {
	pos := len(tagName)
	limit := len(tag) - 1 // trailing '>'

	for pos < limit {
		m := attrToken.FindStringSubmatchIndex(tag[pos:limit])
		if m == nil || m[1] == 0 {
			pos++
			continue
		}

		if strings.EqualFold(tag[pos+m[2]:pos+m[3]], "alt") {
			a := altSpan{start: pos + m[2], end: pos + m[3]}
			if m[4] >= 0 {
				a.end = pos + m[5]
				a.value = unquote(tag[pos+m[4] : pos+m[5]])
			}
			return a, true
		}
		pos += m[1]
	}
	return altSpan{}, false
}

// Scan lists the image elements of body in document order.
func Scan(body string) []Element {
	locs := imgTag.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return nil
	}

	elems := make([]Element, 0, len(locs))
	for _, loc := range locs {
		tag := body[loc[0]:loc[1]]
		el := Element{Offset: loc[0], Markup: tag}
		if a, ok := findAlt(tag); ok {
			el.HasAlt = true
			el.Alt = a.value
		}
		elems = append(elems, el)
	}
	return elems
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
