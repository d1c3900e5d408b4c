// Package textsim turns free-form idea text into comparable term sets and
// scores how close two ideas are. Everything here is pure and safe for
// concurrent use.
package textsim

import (
	"strings"
	"unicode"
)

const minTermLength = 3

// Normalize lower-cases text, keeps maximal runs of letters and joins them
// with single spaces. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return strings.Join(words, " ")
}

// ExtractKeyTerms returns the distinct key terms of text: normalized words
// that are not stop words, longer than two characters, folded through the
// synonym table.
func ExtractKeyTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, term := range keyTermList(text) {
		terms[term] = struct{}{}
	}
	return terms
}

// keyTermList is ExtractKeyTerms without deduplication, in text order.
// Cosine similarity needs the repetitions.
func keyTermList(text string) []string {
	words := strings.Fields(Normalize(text))
	out := make([]string, 0, len(words))
	for _, word := range words {
		if len([]rune(word)) < minTermLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if folded, ok := DefaultSynonyms[word]; ok {
			word = folded
		}
		out = append(out, word)
	}
	return out
}
