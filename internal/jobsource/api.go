package jobsource

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	searchPath      = "/postings"
	contentType     = "application/json"
	contentEncoding = "gzip, deflate, br"
)

// APISource talks to a JSON job API exposing paginated search results and
// per-posting descriptions.
type APISource struct {
	baseURL    string
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

// apiPosting is a single posting item as returned by the API.
type apiPosting struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type pageResponse struct {
	Items []map[string]any `json:"items"`
	Found int              `json:"found"`
	Pages int              `json:"pages"`
	Page  int              `json:"page"`
}

// NewAPI returns a Source backed by the job API at baseURL. The token is sent
// as a bearer credential on every request.
func NewAPI(baseURL, token string, logger *zap.Logger) *APISource {
	return &APISource{
		baseURL: baseURL,
		token:   token,
		logger:  logger,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		UserAgent: "resumatch",
	}
}

// Search walks the paginated results for the query. It stops at maxPages,
// when the API reports no further pages, or when a page contributes no new
// URLs, whichever comes first.
func (s *APISource) Search(ctx context.Context, query, location string, maxPages int) ([]string, error) {
	seen := make(map[string]struct{})
	var urls []string

	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		q := url.Values{}
		q.Set("q", query)
		q.Set("location", location)
		q.Set("page", strconv.Itoa(page))

		var resp pageResponse
		if err := s.getJSON(ctx, s.baseURL+searchPath, q, &resp); err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}

		var postings []apiPosting
		cfg := &mapstructure.DecoderConfig{
			Result:  &postings,
			TagName: "json",
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(resp.Items); err != nil {
			return nil, fmt.Errorf("decode search items: %w", err)
		}

		added := 0
		for _, p := range postings {
			canonical := CanonicalURL(p.URL)
			if canonical == "" {
				continue
			}
			if _, ok := seen[canonical]; ok {
				continue
			}
			seen[canonical] = struct{}{}
			urls = append(urls, canonical)
			added++
		}

		s.logger.Debug("search page processed",
			zap.Int("page", page),
			zap.Int("items", len(postings)),
			zap.Int("new_urls", added),
		)

		if added == 0 {
			break
		}
		if resp.Pages > 0 && resp.Page >= resp.Pages-1 {
			break
		}
	}

	return urls, nil
}

// Fetch retrieves the description text of a single posting.
func (s *APISource) Fetch(ctx context.Context, postingURL string) (string, error) {
	q := url.Values{}
	q.Set("url", postingURL)

	var posting apiPosting
	if err := s.getJSON(ctx, s.baseURL+searchPath+"/describe", q, &posting); err != nil {
		return "", fmt.Errorf("fetch description: %w", err)
	}

	return posting.Description, nil
}

// Close is a no-op: the API session holds no server-side state.
func (s *APISource) Close() error { return nil }

func (s *APISource) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.token))
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Content-Type", contentType)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	s.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return json.Unmarshal(data, target)
}
