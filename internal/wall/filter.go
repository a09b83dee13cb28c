package wall

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// defaultSensitiveWords are always masked regardless of configuration.
var defaultSensitiveWords = []string{"傻逼", "傻x", "傻叉", "妈的", "操你妈", "fuck", "shit"}

// Filter masks configured sensitive terms with asterisk runs. Matching is
// literal and case-insensitive; masking happens once at publish time and the
// masked text is what gets persisted.
type Filter struct {
	patterns []*regexp.Regexp
	masks    []string
}

// NewFilter builds a filter from the default word list plus extra terms.
// Blank and duplicate terms are dropped.
func NewFilter(extra ...string) *Filter {
	seen := make(map[string]struct{})
	f := &Filter{}
	for _, word := range append(append([]string{}, defaultSensitiveWords...), extra...) {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		f.patterns = append(f.patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(word)))
		f.masks = append(f.masks, mask(word))
	}
	return f
}

// Mask replaces each sensitive term in text with its asterisk run.
func (f *Filter) Mask(text string) string {
	for i, p := range f.patterns {
		text = p.ReplaceAllLiteralString(text, f.masks[i])
	}
	return text
}

// mask sizes the replacement to the term's character length, minimum two.
func mask(word string) string {
	n := utf8.RuneCountInString(word)
	if n < 2 {
		n = 2
	}
	return strings.Repeat("*", n)
}
