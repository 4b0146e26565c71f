// Package store persists matched jobs per resume identity. Each resume owns
// an append-only CSV ledger of every match ever recorded and a JSON snapshot
// of the latest run's newly added matches. The CSV is the source of truth for
// cross-run deduplication.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/resumatch/resumatch/internal/jobsource"
	"github.com/resumatch/resumatch/internal/match"
)

var header = []string{"url", "score", "description", "timestamp"}

// Ledger stores match results under a data directory.
type Ledger struct {
	dir string
}

func New(dir string) *Ledger {
	return &Ledger{dir: dir}
}

func (l *Ledger) csvPath(resume string) string {
	return filepath.Join(l.dir, fmt.Sprintf("matched_jobs_%s.csv", resume))
}

func (l *Ledger) jsonPath(resume string) string {
	return filepath.Join(l.dir, fmt.Sprintf("matched_jobs_%s.json", resume))
}

func (l *Ledger) lockPath(resume string) string {
	return l.csvPath(resume) + ".lock"
}

// ExistingURLs returns the canonical URLs already recorded for the resume.
// A missing ledger file yields an empty set.
func (l *Ledger) ExistingURLs(resume string) (map[string]struct{}, error) {
	file, err := os.Open(l.csvPath(resume))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer file.Close()

	return readURLs(file)
}

func readURLs(r io.Reader) (map[string]struct{}, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	urls := make(map[string]struct{})
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger: %w", err)
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == header[0] {
				continue
			}
		}
		if len(record) > 0 {
			urls[jobsource.CanonicalURL(record[0])] = struct{}{}
		}
	}

	return urls, nil
}

// Merge appends the genuinely new results to the resume's CSV ledger and
// rewrites the JSON snapshot with exactly those newly added results. It
// returns the newly added results. The whole operation holds an exclusive
// file lock so that concurrent runs for the same resume cannot interleave;
// runs for different resumes use different files and never contend.
func (l *Ledger) Merge(resume string, results []match.Result) ([]match.Result, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	lock := flock.New(l.lockPath(resume))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking ledger: %w", err)
	}
	defer lock.Unlock()

	existing, err := l.ExistingURLs(resume)
	if err != nil {
		return nil, err
	}

	fresh := make([]match.Result, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		url := jobsource.CanonicalURL(r.URL)
		if _, ok := existing[url]; ok {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		r.URL = url
		fresh = append(fresh, r)
	}

	if err := l.appendCSV(resume, fresh); err != nil {
		return nil, err
	}
	if err := l.writeSnapshot(resume, fresh); err != nil {
		return nil, err
	}

	return fresh, nil
}

func (l *Ledger) appendCSV(resume string, results []match.Result) error {
	path := l.csvPath(resume)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger for append: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}

	writer := csv.NewWriter(file)
	if stat.Size() == 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("writing ledger header: %w", err)
		}
	}

	for _, r := range results {
		record := []string{
			r.URL,
			strconv.FormatFloat(r.Score, 'f', 2, 64),
			r.Description,
			r.Timestamp.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing ledger row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing ledger: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing ledger: %w", err)
	}

	return nil
}

// writeSnapshot replaces the JSON file with the latest batch. It writes to a
// temporary file first so a failed run never leaves a half-written snapshot.
func (l *Ledger) writeSnapshot(resume string, results []match.Result) error {
	path := l.jsonPath(resume)

	tmp, err := os.CreateTemp(l.dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []match.Result{}
	}
	if err := enc.Encode(results); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}
