package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mklnz/descpipe/internal/utils"
	"github.com/mklnz/descpipe/pkg/catalog"
)

const (
	rawSubdir         = "raw"
	snapshotPrefix    = "products_"
	snapshotTimestamp = "2006-01-02_15-04"
)

// ParseError means a snapshot file exists but is not valid JSON. Callers
// treat it as fatal rather than falling back to an older snapshot.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing snapshot %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Store persists catalog snapshots as timestamped flat files under
// <Dir>/raw. Snapshots are append-only; nothing here ever deletes one.
type Store struct {
	Dir string

	// now is swappable in tests.
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// Save writes the snapshot twice: a field-preserving JSON file and a
// human-readable text file, both named with a minute-resolution timestamp.
// An empty snapshot is a logged no-op.
func (s *Store) Save(snapshot catalog.Snapshot) (jsonPath, txtPath string, err error) {
	if len(snapshot) == 0 {
		utils.Log.Info("No data to save.")
		return "", "", nil
	}

	dir := filepath.Join(s.Dir, rawSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	stamp := s.now().Format(snapshotTimestamp)
	jsonPath = filepath.Join(dir, snapshotPrefix+stamp+".json")
	txtPath = filepath.Join(dir, snapshotPrefix+stamp+".txt")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", err
	}

	var b strings.Builder
	for i, p := range snapshot {
		fmt.Fprintf(&b, "Product %d:\n", i+1)
		fmt.Fprintf(&b, "ID: %d\n", p.ID)
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Category: %s\n", p.DisplayCategory())
		fmt.Fprintf(&b, "Price: $%s\n", p.DisplayPrice())
		fmt.Fprintf(&b, "Rating: %s\n", p.DisplayRating())
		fmt.Fprintf(&b, "Brand: %s\n", p.DisplayBrand())
		fmt.Fprintf(&b, "Description: %s\n", p.DisplayDescription())
		fmt.Fprintf(&b, "Stock: %s\n", p.DisplayStock())
		b.WriteString(strings.Repeat("-", 60) + "\n")
	}
	if err := os.WriteFile(txtPath, []byte(b.String()), 0o644); err != nil {
		return "", "", err
	}

	utils.Log.Info(len(snapshot), " products saved to ", jsonPath)
	return jsonPath, txtPath, nil
}

// LoadLatest parses the most recent JSON snapshot. "Most recent" compares
// the timestamp embedded in the filename. An empty store yields an empty
// snapshot and no error; a corrupt file yields a *ParseError.
func (s *Store) LoadLatest() (catalog.Snapshot, error) {
	pattern := filepath.Join(s.Dir, rawSubdir, snapshotPrefix+"*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		utils.Log.Info("No product files found in ", filepath.Join(s.Dir, rawSubdir))
		return nil, nil
	}

	// The minute-resolution stamp sorts lexicographically; same-minute
	// saves overwrite the same path, so base names are unique here.
	sort.Slice(matches, func(i, j int) bool {
		return filepath.Base(matches[i]) < filepath.Base(matches[j])
	})
	latest := matches[len(matches)-1]
	utils.Log.Info("Loading products from: ", latest)

	data, err := os.ReadFile(latest)
	if err != nil {
		return nil, err
	}

	var snapshot catalog.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, &ParseError{Path: latest, Err: err}
	}

	utils.Log.Info("Loaded ", len(snapshot), " products")
	return snapshot, nil
}
