// Package keywords ranks the salient terms of a resume by relative term
// frequency within that single document.
//
// This is deliberately not TF-IDF: there is no multi-document corpus, so the
// inverse-document-frequency component would be a constant. The ranking is the
// document's own term counts normalized by the total number of kept tokens.
package keywords

import (
	"sort"
	"strings"
	"unicode"
)

const minTermLength = 2

// Skill is a normalized lowercase term with its relative-frequency weight.
type Skill struct {
	Term   string
	Weight float64
}

// Extract returns at most topN skills ranked by descending weight. Ties keep
// the order in which the terms first appeared in the text. Empty input,
// punctuation-only input and all-stopword input yield an empty slice.
func Extract(text string, topN int) []Skill {
	if topN <= 0 {
		return nil
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	total := float64(len(tokens))
	skills := make([]Skill, 0, len(order))
	for _, term := range order {
		skills = append(skills, Skill{
			Term:   term,
			Weight: float64(counts[term]) / total,
		})
	}

	sort.SliceStable(skills, func(i, j int) bool {
		return skills[i].Weight > skills[j].Weight
	})

	if len(skills) > topN {
		skills = skills[:topN]
	}

	return skills
}

// Terms returns just the terms of the ranked skills, in ranking order.
func Terms(skills []Skill) []string {
	terms := make([]string, 0, len(skills))
	for _, s := range skills {
		terms = append(terms, s.Term)
	}
	return terms
}

// tokenize lowercases the text, replaces every non-alphabetic rune with a
// space and returns the remaining alphabetic runs, minus stopwords and terms
// shorter than minTermLength.
func tokenize(text string) []string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(builder.String()) {
		if len([]rune(tok)) < minTermLength {
			continue
		}
		if stopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}

	return tokens
}
