package moderation

import (
	"strings"
)

// leetMap folds common character substitutions back to letters before
// blocklist matching.
var leetMap = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'@': 'a',
	'$': 's',
	'!': 'i',
}

// blocklist maps terms (single words or phrases, already lowercase) to the
// violation category they represent. It is deliberately small: it only has
// to catch the unambiguous cases so that they are rejected even when the
// external classifier is down. The classifier handles everything subtle.
var blocklist = map[string]string{
	"nigger":        ViolationHateSpeech,
	"faggot":        ViolationHateSpeech,
	"heil hitler":   ViolationHateSpeech,
	"kill yourself": ViolationAbusive,
	"go die":        ViolationAbusive,
	"child porn":    ViolationExplicit,
	"send nudes":    ViolationExplicit,
	"bomb threat":   ViolationViolence,
}

// FilterResult reports a local blocklist hit.
type FilterResult struct {
	Blocked  bool
	Category string
	Term     string
}

// Filter is a local, always-available screen applied before the external
// classifier. Matching is case-insensitive, punctuation-tolerant, and folds
// leetspeak substitutions. Terms match on word boundaries only.
type Filter struct {
	words   map[string]string
	phrases map[string]string
}

// NewFilter builds a filter from the default blocklist.
func NewFilter() *Filter {
	return NewFilterWithTerms(blocklist)
}

// NewFilterWithTerms builds a filter from an explicit term -> category map.
func NewFilterWithTerms(terms map[string]string) *Filter {
	f := &Filter{
		words:   make(map[string]string),
		phrases: make(map[string]string),
	}
	for term, category := range terms {
		if strings.ContainsRune(term, ' ') {
			f.phrases[term] = category
		} else {
			f.words[term] = category
		}
	}
	return f
}

// Check screens text against the blocklist.
func (f *Filter) Check(text string) FilterResult {
	normalized := normalize(text)
	if normalized == "" {
		return FilterResult{}
	}

	tokens := strings.Fields(normalized)
	for _, tok := range tokens {
		if category, ok := f.words[tok]; ok {
			return FilterResult{Blocked: true, Category: category, Term: tok}
		}
	}

	joined := " " + strings.Join(tokens, " ") + " "
	for phrase, category := range f.phrases {
		if strings.Contains(joined, " "+phrase+" ") {
			return FilterResult{Blocked: true, Category: category, Term: phrase}
		}
	}
	return FilterResult{}
}

// normalize lowercases, folds leetspeak, and replaces punctuation with
// spaces so that terms match on word boundaries.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if folded, ok := leetMap[r]; ok {
			b.WriteRune(folded)
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r > 127:
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
