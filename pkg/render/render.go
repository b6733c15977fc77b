// Package render serializes a batch of generation results into the three
// output artifacts: a JSON file with full fidelity, a numbered plain-text
// report, and a category-grouped HTML page.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mklnz/descpipe/internal/utils"
	"github.com/mklnz/descpipe/pkg/describe"
)

const (
	resultsSubdir   = "descriptions"
	resultPrefix    = "pipeline_results_"
	resultTimestamp = "2006-01-02_15-04"
)

// RenderError means one of the three artifact writes failed. The batch is
// considered unpersisted: no partial artifact set is left visible.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Paths locates the three artifacts of one rendered batch. They share one
// filename stem and differ only in extension.
type Paths struct {
	JSON string
	Text string
	HTML string
}

// Renderer writes result batches under <Dir>/descriptions.
type Renderer struct {
	Dir string

	now func() time.Time
}

func New(dir string) *Renderer {
	return &Renderer{Dir: dir, now: time.Now}
}

// Render writes all three encodings of the batch. The three files become
// visible all-or-nothing: each is written to a temp file first and the
// renames only happen once every write has succeeded.
func (r *Renderer) Render(batch describe.Batch, mode, categoryFilter string) (Paths, error) {
	dir := filepath.Join(r.Dir, resultsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, &RenderError{Path: dir, Err: err}
	}

	stem := resultPrefix + mode
	if categoryFilter != "" {
		stem += "_" + categoryFilter
	}
	stem += "_" + r.now().Format(resultTimestamp)

	paths := Paths{
		JSON: filepath.Join(dir, stem+".json"),
		Text: filepath.Join(dir, stem+".txt"),
		HTML: filepath.Join(dir, stem+".html"),
	}

	jsonBody, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return Paths{}, &RenderError{Path: paths.JSON, Err: err}
	}

	htmlBody, err := renderHTML(batch)
	if err != nil {
		return Paths{}, &RenderError{Path: paths.HTML, Err: err}
	}

	files := []struct {
		path string
		body []byte
	}{
		{paths.JSON, jsonBody},
		{paths.Text, []byte(renderText(batch))},
		{paths.HTML, htmlBody},
	}

	var temps []string
	cleanup := func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}

	for _, f := range files {
		tmp := f.path + ".tmp"
		if err := os.WriteFile(tmp, f.body, 0o644); err != nil {
			cleanup()
			return Paths{}, &RenderError{Path: f.path, Err: err}
		}
		temps = append(temps, tmp)
	}

	var renamed []string
	for i, f := range files {
		if err := os.Rename(temps[i], f.path); err != nil {
			// Undo the renames that already happened so readers never see
			// a partial artifact set.
			for _, p := range renamed {
				os.Remove(p)
			}
			cleanup()
			return Paths{}, &RenderError{Path: f.path, Err: err}
		}
		renamed = append(renamed, f.path)
	}

	utils.Log.Info("Results saved to ", paths.JSON, ", ", paths.Text, ", and ", paths.HTML)
	return paths, nil
}

func renderText(batch describe.Batch) string {
	var b strings.Builder
	for i, result := range batch {
		p := result.Product
		fmt.Fprintf(&b, "PRODUCT %d:\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Category: %s\n", p.DisplayCategory())
		fmt.Fprintf(&b, "Price: $%s\n", p.DisplayPrice())
		fmt.Fprintf(&b, "Rating: %s★\n", p.DisplayRating())
		fmt.Fprintf(&b, "Original Description: %s\n", p.DisplayDescription())
		fmt.Fprintf(&b, "Generated Description: %s\n", result.Output)
		b.WriteString(strings.Repeat("=", 60) + "\n")
	}
	return b.String()
}
