// Package pipeline sequences the whole batch run: ingest the catalog, load
// the latest snapshot, filter it, generate a description per product, and
// persist the results in three formats.
package pipeline

import (
	"context"
	"fmt"

	"github.com/mklnz/descpipe/internal/utils"
	"github.com/mklnz/descpipe/pkg/catalog"
	"github.com/mklnz/descpipe/pkg/describe"
	"github.com/mklnz/descpipe/pkg/llm"
	"github.com/mklnz/descpipe/pkg/render"
	"github.com/mklnz/descpipe/pkg/store"
)

const DefaultLimit = 10

// Config carries everything one run needs. The command layer fills it from
// flags; nothing in here reads flags or the environment.
type Config struct {
	SkipIngest bool
	Mode       describe.Mode
	Category   string
	Limit      int
	DataDir    string
}

type Status string

const (
	// StatusDone means all artifacts were written.
	StatusDone Status = "done"
	// StatusAborted means the run stopped early on an empty catalog or an
	// empty filter result. Not an error: no artifacts are written.
	StatusAborted Status = "aborted"
)

// Report summarizes a finished run.
type Report struct {
	Status      Status
	AbortReason string
	Results     describe.Batch
	Paths       render.Paths
}

// Pipeline wires the collaborators for one run. Source and Backend are
// injected so tests can substitute stubs.
type Pipeline struct {
	cfg      Config
	source   catalog.Source
	backend  llm.Backend
	store    *store.Store
	renderer *render.Renderer
}

func New(cfg Config, source catalog.Source, backend llm.Backend) *Pipeline {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		backend:  backend,
		store:    store.New(cfg.DataDir),
		renderer: render.New(cfg.DataDir),
	}
}

// Run executes the steps strictly in order. It returns a non-nil error only
// for fatal conditions (corrupt snapshot, failed artifact writes); source
// and backend trouble degrade instead.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	utils.Log.Info("Starting pipeline with mode: ", p.cfg.Mode)
	if p.cfg.Category != "" {
		utils.Log.Info("Filtering for category: ", p.cfg.Category)
	}

	// Ingest. A fetch failure is logged and the run continues on
	// whatever snapshot already exists.
	if p.cfg.SkipIngest {
		utils.Log.Info("Step 1: Skipping data ingestion (using existing data)")
	} else {
		utils.Log.Info("Step 1: Ingesting new product data...")
		// Always snapshot the full catalog; the category filter applies
		// after load, so later skip-ingest runs see everything.
		fetched, err := p.source.Fetch(ctx, catalog.FetchOptions{Limit: p.cfg.Limit})
		if err != nil {
			utils.Log.Warn("Ingestion failed (", err, "). Continuing with existing data.")
		}
		if _, _, err := p.store.Save(fetched); err != nil {
			return nil, fmt.Errorf("saving snapshot: %w", err)
		}
	}

	// Load.
	utils.Log.Info("Step 2: Loading products...")
	products, err := p.store.LoadLatest()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		reason := "no products found; run without --skip-ingest first"
		utils.Log.Error(reason)
		return &Report{Status: StatusAborted, AbortReason: reason}, nil
	}

	// Filter.
	if p.cfg.Category != "" {
		products = catalog.FilterByCategory(products, p.cfg.Category)
		utils.Log.Info("Filtered to ", len(products), " products in category '", p.cfg.Category, "'")
		if len(products) == 0 {
			reason := fmt.Sprintf("no products found in category '%s'", p.cfg.Category)
			utils.Log.Error(reason)
			return &Report{Status: StatusAborted, AbortReason: reason}, nil
		}
	}

	// Transform, one backend call per product, in snapshot order.
	utils.Log.Info("Step 3: Generating descriptions...")
	generator := describe.Generator{Backend: p.backend}
	batch := make(describe.Batch, 0, len(products))
	for _, product := range products {
		result, err := generator.Describe(ctx, product, p.cfg.Mode)
		if err != nil {
			return nil, fmt.Errorf("describing %q: %w", product.Title, err)
		}
		batch = append(batch, result)
	}
	utils.Log.Info("Processed ", len(batch), " products")

	// Persist.
	utils.Log.Info("Step 4: Saving output...")
	paths, err := p.renderer.Render(batch, p.cfg.Mode.String(), p.cfg.Category)
	if err != nil {
		return nil, err
	}

	utils.Log.Info("Pipeline complete!")
	printSample(batch)

	return &Report{Status: StatusDone, Results: batch, Paths: paths}, nil
}

// printSample shows up to the first three results for operator visibility.
func printSample(batch describe.Batch) {
	fmt.Println("\nSample results:")
	for i, result := range batch {
		if i == 3 {
			break
		}
		p := result.Product
		fmt.Printf("\nProduct %d: %s\n", i+1, p.Title)
		fmt.Printf("Category: %s\n", p.DisplayCategory())
		fmt.Printf("Price: $%s\n", p.DisplayPrice())
		fmt.Printf("Generated: %s\n", utils.Truncate(result.Output, 100))
	}
}
