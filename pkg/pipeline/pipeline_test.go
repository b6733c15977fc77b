package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/mklnz/descpipe/pkg/catalog"
	"github.com/mklnz/descpipe/pkg/describe"
	"github.com/mklnz/descpipe/pkg/llm"
	"github.com/mklnz/descpipe/pkg/store"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

type stubSource struct {
	products catalog.Snapshot
	err      error
	gotOpts  catalog.FetchOptions
	calls    int
}

func (s *stubSource) Fetch(_ context.Context, opts catalog.FetchOptions) (catalog.Snapshot, error) {
	s.calls++
	s.gotOpts = opts
	return s.products, s.err
}

func threeProducts() catalog.Snapshot {
	return catalog.Snapshot{
		{ID: 1, Title: "Phone A", Category: strPtr("smartphones"), Price: f64Ptr(500)},
		{ID: 2, Title: "Phone B", Category: strPtr("smartphones"), Price: f64Ptr(700)},
		{ID: 3, Title: "Laptop C", Category: strPtr("laptops"), Price: f64Ptr(1200)},
	}
}

func resultFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "descriptions", "*"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestRunEndToEndSummarize(t *testing.T) {
	dir := t.TempDir()
	source := &stubSource{products: threeProducts()}

	p := New(Config{Mode: describe.ModeSummarize, DataDir: dir}, source, llm.Simulated{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Status != StatusDone {
		t.Fatalf("expected done, got %s (%s)", report.Status, report.AbortReason)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
	for i, want := range []string{"Phone A", "Phone B", "Laptop C"} {
		if report.Results[i].Product.Title != want {
			t.Errorf("result %d: expected %s, got %s", i, want, report.Results[i].Product.Title)
		}
		if report.Results[i].Mode != "summarize" {
			t.Errorf("result %d mode: %s", i, report.Results[i].Mode)
		}
		if report.Results[i].Output == "" {
			t.Errorf("result %d has empty output", i)
		}
	}

	// Styled artifact: two groups, smartphones first with two cards.
	f, err := os.Open(report.Paths.HTML)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	headers := doc.Find("h2")
	if headers.Length() != 2 {
		t.Fatalf("expected 2 groups, got %d", headers.Length())
	}
	if got := headers.Eq(0).Text(); got != "Smartphones" {
		t.Errorf("first group: %q", got)
	}
	if got := doc.Find(".product-card").Length(); got != 3 {
		t.Errorf("expected 3 cards, got %d", got)
	}

	// Ingest also produced a raw snapshot pair.
	raw, err := filepath.Glob(filepath.Join(dir, "raw", "products_*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 2 {
		t.Errorf("expected one json+txt snapshot pair, got %v", raw)
	}
}

func TestRunWithCategoryFilter(t *testing.T) {
	dir := t.TempDir()
	source := &stubSource{products: threeProducts()}

	p := New(Config{Mode: describe.ModeSummarize, Category: "smartphones", DataDir: dir}, source, llm.Simulated{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Ingest snapshots the whole catalog; the filter only applies after
	// load, so a later skip-ingest run still sees every category.
	if source.gotOpts.Category != "" {
		t.Errorf("ingest must fetch unfiltered: %+v", source.gotOpts)
	}
	snapshot, err := store.New(dir).LoadLatest()
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot) != 3 {
		t.Errorf("snapshot should keep all products, got %d", len(snapshot))
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 filtered results, got %d", len(report.Results))
	}
	for _, r := range report.Results {
		if *r.Product.Category != "smartphones" {
			t.Errorf("unexpected category: %+v", r.Product)
		}
	}

	f, err := os.Open(report.Paths.HTML)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Find("h2").Length(); got != 1 {
		t.Errorf("expected 1 group after filtering, got %d", got)
	}

	if !strings.Contains(filepath.Base(report.Paths.JSON), "_smartphones_") {
		t.Errorf("filename should carry the filter: %s", report.Paths.JSON)
	}
}

func TestRunFilterMatchesCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	source := &stubSource{products: threeProducts()}

	p := New(Config{Mode: describe.ModeDescribe, Category: "LAPTOPS", DataDir: dir}, source, llm.Simulated{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 1 || report.Results[0].Product.Title != "Laptop C" {
		t.Fatalf("unexpected results: %+v", report.Results)
	}
}

func TestRunAbortsOnEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	source := &stubSource{products: nil}

	p := New(Config{Mode: describe.ModeDescribe, DataDir: dir}, source, llm.Simulated{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusAborted {
		t.Fatalf("expected aborted, got %s", report.Status)
	}
	if !strings.Contains(report.AbortReason, "no products found") {
		t.Errorf("abort reason: %q", report.AbortReason)
	}
	if files := resultFiles(t, dir); len(files) != 0 {
		t.Errorf("aborted run must not write artifacts: %v", files)
	}
}

func TestRunAbortsOnEmptyFilterResult(t *testing.T) {
	dir := t.TempDir()
	source := &stubSource{products: threeProducts()}

	p := New(Config{Mode: describe.ModeDescribe, Category: "tablets", DataDir: dir}, source, llm.Simulated{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusAborted {
		t.Fatalf("expected aborted, got %s", report.Status)
	}
	if !strings.Contains(report.AbortReason, "tablets") {
		t.Errorf("abort reason should name the filter: %q", report.AbortReason)
	}
	if files := resultFiles(t, dir); len(files) != 0 {
		t.Errorf("aborted run must not write artifacts: %v", files)
	}
}

func TestRunSkipIngestUsesLatestSnapshot(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := store.New(dir).Save(threeProducts()); err != nil {
		t.Fatal(err)
	}

	source := &stubSource{err: errors.New("should not be called")}
	p := New(Config{SkipIngest: true, Mode: describe.ModeDescribe, DataDir: dir}, source, llm.Simulated{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if source.calls != 0 {
		t.Errorf("skip-ingest must not hit the source, got %d calls", source.calls)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results from the snapshot, got %d", len(report.Results))
	}
}

func TestRunSourceFailureFallsBackToPriorSnapshot(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := store.New(dir).Save(threeProducts()); err != nil {
		t.Fatal(err)
	}

	source := &stubSource{err: errors.New("network down")}
	p := New(Config{Mode: describe.ModeDescribe, DataDir: dir}, source, llm.Simulated{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusDone {
		t.Fatalf("fetch failure with a prior snapshot should still complete, got %s", report.Status)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected the prior snapshot's products, got %d", len(report.Results))
	}
}

func TestRunCorruptSnapshotIsFatal(t *testing.T) {
	dir := t.TempDir()
	rawDir := filepath.Join(dir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(rawDir, "products_2024-05-01_10-00.json")
	if err := os.WriteFile(bad, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(Config{SkipIngest: true, Mode: describe.ModeDescribe, DataDir: dir}, &stubSource{}, llm.Simulated{})
	_, err := p.Run(context.Background())
	var parseErr *store.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *store.ParseError, got %v", err)
	}
}
