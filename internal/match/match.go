// Package match builds relevance predicates from a search phrase.
//
// A text matches a phrase when some run of consecutive words in the text
// lines up with the words of the phrase, each pair allowed a small edit
// distance that grows with the word length. Accents and case are ignored.
package match

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Predicate reports whether text is relevant to the phrase it was built from.
type Predicate func(text string) bool

// Build returns the predicate for phrase. A phrase without any words yields
// a predicate that matches nothing.
func Build(phrase string) Predicate {
	want := Words(phrase)
	if len(want) == 0 {
		return func(string) bool { return false }
	}

	return func(text string) bool {
		if text == "" {
			return false
		}
		got := Words(text)
		for i := 0; i+len(want) <= len(got); i++ {
			if windowMatches(got[i:i+len(want)], want) {
				return true
			}
		}
		return false
	}
}

// Any reports whether p accepts at least one of texts.
func (p Predicate) Any(texts ...string) bool {
	for _, text := range texts {
		if p(text) {
			return true
		}
	}
	return false
}

// Normalize folds case, strips combining marks and collapses whitespace.
// Two phrases with the same normalized form build equivalent predicates.
func Normalize(s string) string {
	return strings.Join(Words(s), " ")
}

// Words splits s into normalized words on anything that is not a letter or
// a digit.
func Words(s string) []string {
	folded, _, err := transform.String(foldChain(), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// transform.Chain keeps state, so each call gets a fresh one.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func windowMatches(got, want []string) bool {
	for i := range want {
		if !similar(got[i], want[i]) {
			return false
		}
	}
	return true
}

func similar(got, want string) bool {
	if got == want {
		return true
	}
	tol := tolerance(want)
	if tol == 0 {
		return false
	}
	diff := len([]rune(got)) - len([]rune(want))
	if diff < 0 {
		diff = -diff
	}
	if diff > tol {
		return false
	}
	return levenshtein.ComputeDistance(got, want) <= tol
}

func tolerance(word string) int {
	switch n := len([]rune(word)); {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}
