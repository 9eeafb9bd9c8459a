// Package spareparts holds the model/issue → URL lookup table used by the
// support flow, plus the fuzzy resolution logic that maps free-text model and
// issue descriptions onto it.
package spareparts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DB maps model name → issue key → ordered, de-duplicated URL list.
// Both levels preserve insertion order: resolution tie-breaks depend on it,
// so iteration must be reproducible across loads of the same source.
type DB struct {
	models *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, []string]]
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{models: orderedmap.New[string, *orderedmap.OrderedMap[string, []string]]()}
}

// Add appends a URL for (model, issue), creating entries as needed and
// dropping duplicate URLs for the same pair.
func (db *DB) Add(model, issue, url string) {
	issues, ok := db.models.Get(model)
	if !ok {
		issues = orderedmap.New[string, []string]()
		db.models.Set(model, issues)
	}
	urls, _ := issues.Get(issue)
	for _, u := range urls {
		if u == url {
			return
		}
	}
	issues.Set(issue, append(urls, url))
}

// Models returns all model keys in insertion order.
func (db *DB) Models() []string {
	keys := make([]string, 0, db.models.Len())
	for pair := db.models.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Issues returns the issue keys for a model in insertion order.
func (db *DB) Issues(model string) []string {
	issues, ok := db.models.Get(model)
	if !ok {
		return nil
	}
	keys := make([]string, 0, issues.Len())
	for pair := issues.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Links returns the URLs for (model, issue), in insertion order.
func (db *DB) Links(model, issue string) []string {
	issues, ok := db.models.Get(model)
	if !ok {
		return nil
	}
	urls, _ := issues.Get(issue)
	return urls
}

// HasModel reports whether model is an exact (case-sensitive) key.
func (db *DB) HasModel(model string) bool {
	_, ok := db.models.Get(model)
	return ok
}

// ModelFold returns the stored key equal to name under case folding.
func (db *DB) ModelFold(name string) (string, bool) {
	for pair := db.models.Oldest(); pair != nil; pair = pair.Next() {
		if strings.EqualFold(pair.Key, name) {
			return pair.Key, true
		}
	}
	return "", false
}

// PrefixMatches returns all model keys starting with base (case-insensitive),
// in insertion order.
func (db *DB) PrefixMatches(base string) []string {
	b := strings.ToLower(base)
	var out []string
	for pair := db.models.Oldest(); pair != nil; pair = pair.Next() {
		if strings.HasPrefix(strings.ToLower(pair.Key), b) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// Len returns the number of models.
func (db *DB) Len() int { return db.models.Len() }

// LoadCSV reads a model,issue,url table. Header column names are matched
// case-insensitively; if any of the three columns is missing the result is an
// empty database, not an error. Rows with missing fields are skipped.
func LoadCSV(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spare parts source: %w", err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) (*DB, error) {
	db := NewDB()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows; they get skipped below

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading spare parts header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	modelIdx, okM := col["model"]
	issueIdx, okI := col["issue"]
	urlIdx, okU := col["url"]
	if !okM || !okI || !okU {
		slog.Warn("spare parts source missing required columns, using empty database",
			"header", header)
		return db, nil
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed row: skip, keep going.
			slog.Debug("skipping malformed spare parts row", "error", err)
			continue
		}
		if len(row) <= modelIdx || len(row) <= issueIdx || len(row) <= urlIdx {
			continue
		}
		model := strings.TrimSpace(row[modelIdx])
		issue := strings.TrimSpace(row[issueIdx])
		url := strings.TrimSpace(row[urlIdx])
		if model == "" || issue == "" || url == "" {
			continue
		}
		db.Add(model, issue, url)
	}

	return db, nil
}
