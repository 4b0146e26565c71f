// Package jobsource discovers job postings and retrieves their description
// text. Two implementations exist: a paginated JSON job API and a headless
// browser driving a job board's web UI.
//
// A Source is an explicit session handle: callers Open it, use it and Close
// it. Session or authentication failures surface as errors from Open or
// Search and are terminal for the whole run; a single Fetch failure is not.
package jobsource

import (
	"context"
	"net/url"
	"strings"
)

// Source yields job posting URLs for a query and the description text of a
// single posting. Returned URLs are canonical.
type Source interface {
	Search(ctx context.Context, query, location string, maxPages int) ([]string, error)
	Fetch(ctx context.Context, postingURL string) (string, error)
	Close() error
}

// CanonicalURL strips query parameters and fragments (job boards attach
// tracking parameters that would break deduplication), lowercases the scheme
// and host and drops a trailing slash. Unparseable input is returned trimmed
// as-is.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}
