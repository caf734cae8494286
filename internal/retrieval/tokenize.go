package retrieval

import (
	"strings"
	"unicode"
)

// stopwords are common English terms dropped before scoring.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "you": true, "he": true,
	"she": true, "it": true, "we": true, "they": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
}

// splitCamel inserts spaces at camelCase boundaries: between a lowercase
// letter and a following uppercase letter, and between a run of uppercase
// letters and a following capitalized word ("HTTPServer" -> "HTTP Server").
func splitCamel(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) {
				b.WriteRune(' ')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Tokenize lower-cases text, splits camelCase boundaries, splits on
// non-alphanumeric runs, and drops stopwords and tokens of length <= 2.
func Tokenize(text string) []string {
	text = strings.ToLower(splitCamel(text))
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 2 || stopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// termFrequencies counts occurrences per distinct token.
func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}
