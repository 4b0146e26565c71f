package match

import (
	"strings"
	"testing"
	"time"
)

func TestSnippetCollapsesNewlines(t *testing.T) {
	got := Snippet("line one\nline two\r\nline three")
	if strings.ContainsAny(got, "\r\n") {
		t.Fatalf("snippet still contains newlines: %q", got)
	}
	if got != "line one line two line three" {
		t.Fatalf("unexpected snippet: %q", got)
	}
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("x", SnippetLength+50)
	got := Snippet(long)
	if len([]rune(got)) != SnippetLength {
		t.Fatalf("expected %d runes, got %d", SnippetLength, len([]rune(got)))
	}
}

func TestURLs(t *testing.T) {
	c := &Candidates{Items: []*Candidate{
		{URL: "https://jobs.example.com/view/1"},
		{URL: "https://jobs.example.com/view/2"},
	}}

	urls := c.URLs()
	if len(urls) != 2 || urls[0] != "https://jobs.example.com/view/1" || urls[1] != "https://jobs.example.com/view/2" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestDropByURL(t *testing.T) {
	c := &Candidates{Items: []*Candidate{
		{URL: "https://jobs.example.com/view/1"},
		{URL: "https://jobs.example.com/view/2"},
		{URL: "https://jobs.example.com/view/3"},
	}}

	removed := c.DropByURL(map[string]struct{}{
		"https://jobs.example.com/view/2": {},
	})

	if len(removed) != 1 || removed[0] != "https://jobs.example.com/view/2" {
		t.Fatalf("unexpected removed list: %v", removed)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 candidates left, got %d", c.Len())
	}
}

func TestToResults(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &Candidates{Items: []*Candidate{
		{URL: "https://jobs.example.com/view/1", Description: "go\ndev", Score: 0.82},
	}}

	results := c.ToResults(now)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.URL != "https://jobs.example.com/view/1" || r.Score != 0.82 {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.Description != "go dev" {
		t.Fatalf("expected snippet %q, got %q", "go dev", r.Description)
	}
	if !r.Timestamp.Equal(now) {
		t.Fatalf("unexpected timestamp: %v", r.Timestamp)
	}
}
