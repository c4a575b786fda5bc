// Package keywords summarizes what the knowledge base talks about by word
// frequency.
package keywords

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dtnitsch/school-assistant/models"
)

const minWordLen = 3

// stopwords are ignored when counting. The list covers English function
// words plus markers the page extractor inserts.
var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "all": {}, "also": {}, "and": {}, "any": {},
	"are": {}, "been": {}, "before": {}, "being": {}, "both": {}, "but": {}, "can": {},
	"could": {}, "did": {}, "does": {}, "doing": {}, "during": {}, "each": {}, "for": {},
	"from": {}, "had": {}, "has": {}, "have": {}, "her": {}, "here": {}, "him": {}, "his": {},
	"how": {}, "into": {}, "its": {}, "just": {}, "more": {}, "most": {}, "not": {}, "now": {},
	"off": {}, "once": {}, "only": {}, "other": {}, "our": {}, "out": {}, "over": {}, "own": {},
	"same": {}, "she": {}, "should": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "through": {}, "too": {}, "under": {}, "until": {}, "very": {},
	"was": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"who": {}, "whom": {}, "why": {}, "will": {}, "with": {}, "would": {}, "you": {},
	"your": {}, "yours": {}, "may": {}, "shall": {}, "per": {}, "etc": {}, "via": {},

	// extractor markers and web chrome
	"heading": {}, "click": {}, "here's": {}, "read": {}, "home": {}, "page": {},
	"website": {}, "menu": {}, "login": {}, "copyright": {}, "rights": {}, "reserved": {},
}

// IsStopword reports whether word is ignored when counting.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// Frequency counts the significant words in text.
func Frequency(text string) map[string]int {
	counts := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if utf8.RuneCountInString(word) < minWordLen || IsStopword(word) || isNumeric(word) {
			continue
		}
		counts[word]++
	}
	return counts
}

// Reduce aggregates per-document counts into one map.
func Reduce(intermediate []map[string]int) map[string]int {
	total := make(map[string]int)
	for _, counts := range intermediate {
		for word, n := range counts {
			total[word] += n
		}
	}
	return total
}

// Keyword is a word and how often it occurs.
type Keyword struct {
	Word  string
	Count int
}

// Top returns the n most frequent words, most frequent first. Ties are
// ordered alphabetically.
func Top(counts map[string]int, n int) []Keyword {
	out := make([]Keyword, 0, len(counts))
	for w, c := range counts {
		out = append(out, Keyword{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FromDocuments counts titles and content across docs.
func FromDocuments(docs []models.Document, n int) []Keyword {
	intermediate := make([]map[string]int, len(docs))
	for i, d := range docs {
		intermediate[i] = Frequency(d.Title + " " + d.Content)
	}
	return Top(Reduce(intermediate), n)
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
