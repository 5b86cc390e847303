package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"

	"github.com/ramkansal/docfang/internal/profile"
	"github.com/ramkansal/docfang/pkg/plugin"
)

const (
	minCodeLength        = 10
	maxDescriptionLength = 200
	defaultLanguage      = "text"
	languageClassPrefix  = "language-"
)

var knownLanguages = map[string]bool{
	"python":     true,
	"javascript": true,
	"java":       true,
	"rust":       true,
	"go":         true,
	"cpp":        true,
	"bash":       true,
}

// languageRule inspects an element's classes and reports a language if it recognizes one.
type languageRule func(classes []string) (string, bool)

// languageRules are tried in order; the first match wins.
var languageRules = []languageRule{
	prefixedLanguage,
	knownLanguage,
}

func prefixedLanguage(classes []string) (string, bool) {
	for _, c := range classes {
		if lang, ok := strings.CutPrefix(c, languageClassPrefix); ok && lang != "" {
			return lang, true
		}
	}
	return "", false
}

func knownLanguage(classes []string) (string, bool) {
	for _, c := range classes {
		if knownLanguages[c] {
			return c, true
		}
	}
	return "", false
}

// DetectLanguage resolves the language of a code element from its class list.
func DetectLanguage(classAttr string) string {
	classes := strings.Fields(classAttr)
	for _, rule := range languageRules {
		if lang, ok := rule(classes); ok {
			return lang
		}
	}
	return defaultLanguage
}

func extractCodeExamples(doc *goquery.Document, p profile.Profile) []plugin.CodeExample {
	examples := []plugin.CodeExample{}

	doc.FindMatcher(p.Code()).Each(func(_ int, s *goquery.Selection) {
		code := joinText(s, " ")
		if utf8.RuneCountInString(code) < minCodeLength {
			return
		}

		class, _ := s.Attr("class")
		examples = append(examples, plugin.CodeExample{
			Language:    DetectLanguage(class),
			Code:        code,
			Description: codeDescription(s),
		})
	})

	return examples
}

// codeDescription looks exactly one element back from the code block's
// parent for a short introductory paragraph.
func codeDescription(s *goquery.Selection) *string {
	prev := s.Parent().Prev()
	if prev.Length() == 0 || prev.Get(0).DataAtom != atom.P {
		return nil
	}

	desc := joinText(prev, " ")
	if n := utf8.RuneCountInString(desc); n == 0 || n >= maxDescriptionLength {
		return nil
	}
	return strPtr(desc)
}
