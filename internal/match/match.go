// Package match holds the candidate postings flowing through the filter
// pipeline and the persisted match results they become.
package match

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/resumatch/resumatch/internal/ai"
)

// SnippetLength is the number of leading characters of a description kept in
// the persisted result.
const SnippetLength = 300

// Candidate is a discovered job posting before and during filtering. URL is
// already canonical. Description may be empty when the fetch failed.
type Candidate struct {
	URL          string
	Description  string
	Score        float64
	DiscoveredAt time.Time
	AI           *ai.FitAssessment
}

type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) URLs() []string {
	urls := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		urls = append(urls, item.URL)
	}
	return urls
}

// DropByURL removes the candidates whose URL appears in the given set and
// returns the URLs actually removed.
func (c *Candidates) DropByURL(urls map[string]struct{}) []string {
	kept := make([]*Candidate, 0, len(c.Items))
	var removed []string

	for _, item := range c.Items {
		if _, ok := urls[item.URL]; ok {
			removed = append(removed, item.URL)
			continue
		}
		kept = append(kept, item)
	}

	c.Items = kept
	return removed
}

// DumpToTmpFile writes the current candidate list as indented JSON to a
// temporary file and returns its name.
func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Result is a persisted association between a resume and a job posting.
type Result struct {
	URL         string    `json:"url"`
	Score       float64   `json:"score"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToResults converts the surviving candidates into results stamped with the
// given time, truncating descriptions to a snippet.
func (c *Candidates) ToResults(now time.Time) []Result {
	results := make([]Result, 0, len(c.Items))
	for _, item := range c.Items {
		results = append(results, Result{
			URL:         item.URL,
			Score:       item.Score,
			Description: Snippet(item.Description),
			Timestamp:   now,
		})
	}
	return results
}

// Snippet returns the first SnippetLength characters of the description with
// newlines collapsed to spaces.
func Snippet(description string) string {
	flat := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(description)
	runes := []rune(flat)
	if len(runes) > SnippetLength {
		runes = runes[:SnippetLength]
	}
	return string(runes)
}
