// Package ranker scores documents against a question by lexical overlap.
//
// The weights are fixed: answer selection downstream was tuned against them.
package ranker

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/school-assistant/models"
)

const (
	WeightPhrase   = 15 // whole query found in content or title
	WeightContent  = 3  // per token found in content
	WeightTitle    = 5  // per token found in title
	WeightCategory = 2  // once, if any token is found in the category

	minTokenLen = 3
)

// Result is a document with its score.
type Result struct {
	Document models.Document
	Score    int
}

// Tokens lower-cases the query, splits on whitespace and drops tokens of two
// characters or fewer.
func Tokens(query string) []string {
	var tokens []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) >= minTokenLen {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// Score returns the relevance score of doc for query.
func Score(query string, doc models.Document) int {
	return score(strings.ToLower(query), Tokens(query), doc)
}

func score(queryLower string, tokens []string, doc models.Document) int {
	content := strings.ToLower(doc.Content)
	title := strings.ToLower(doc.Title)
	category := strings.ToLower(doc.CategoryOrDefault())

	s := 0
	if strings.Contains(content, queryLower) || strings.Contains(title, queryLower) {
		s += WeightPhrase
	}
	for _, tok := range tokens {
		if strings.Contains(content, tok) {
			s += WeightContent
		}
		if strings.Contains(title, tok) {
			s += WeightTitle
		}
	}
	for _, tok := range tokens {
		if strings.Contains(category, tok) {
			s += WeightCategory
			break
		}
	}
	return s
}

// Rank scores every document, drops those scoring zero and returns at most
// topK results ordered by descending score. Equal scores keep input order.
func Rank(query string, docs []models.Document, topK int) []Result {
	if topK <= 0 {
		return nil
	}
	queryLower := strings.ToLower(query)
	tokens := Tokens(query)

	var results []Result
	for _, doc := range docs {
		if s := score(queryLower, tokens, doc); s > 0 {
			results = append(results, Result{Document: doc, Score: s})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Documents strips the scores from results.
func Documents(results []Result) []models.Document {
	out := make([]models.Document, len(results))
	for i, r := range results {
		out[i] = r.Document
	}
	return out
}
