package title

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/alttag/pkg/core"
)

const excerptLength = 155

var (
	placeholder = regexp.MustCompile(`%%([A-Za-z0-9_]+)%%`)
	whitespace  = regexp.MustCompile(`\s+`)
	markup      = regexp.MustCompile(`<[^>]*>`)
)

// Expand replaces %%name%% placeholders in template with values drawn from doc and site.
// Unknown placeholders are removed and the result is whitespace-normalised.
func Expand(template string, doc core.Document, site Site) string {
	out := placeholder.ReplaceAllStringFunc(template, func(tok string) string {
		name := strings.ToLower(tok[2 : len(tok)-2])
		return lookup(name, doc, site)
	})
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func lookup(name string, doc core.Document, site Site) string {
	switch name {
	case "title":
		return doc.Title
	case "sitename":
		return site.Name
	case "sitedesc":
		return site.Description
	case "sep":
		return site.Separator
	case "excerpt":
		if ex := doc.Metadata.String("excerpt"); ex != "" {
			return ex
		}
		return excerpt(doc.Body)
	case "id":
		return doc.ID
	case "pt_single":
		return capitalize(string(doc.Kind))
	case "date":
		return doc.Metadata.String("date")
	case "page":
		return ""
	default:
		return ""
	}
}

// excerpt strips markup from body and trims it to excerptLength runes on a word boundary.
func excerpt(body string) string {
	text := strings.TrimSpace(whitespace.ReplaceAllString(markup.ReplaceAllString(body, " "), " "))
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:excerptLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
