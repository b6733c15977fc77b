// Package describe turns product records into prompts and collects the
// generated text for each one.
package describe

import (
	"context"
	"fmt"

	"github.com/mklnz/descpipe/pkg/catalog"
	"github.com/mklnz/descpipe/pkg/llm"
)

type modeKind int

const (
	kindDescribe modeKind = iota
	kindSummarize
	kindCustom
)

// Mode is a closed set of prompt styles: the two built-in ones plus a
// free-form instruction verb carried verbatim.
type Mode struct {
	kind modeKind
	verb string
}

var (
	ModeDescribe  = Mode{kind: kindDescribe}
	ModeSummarize = Mode{kind: kindSummarize}
)

// Custom builds a mode that composes "<verb> this product: <title>".
func Custom(verb string) Mode {
	return Mode{kind: kindCustom, verb: verb}
}

// ParseMode maps the user-facing mode string. Anything that is not
// "describe" or "summarize" becomes a custom instruction verb.
func ParseMode(s string) Mode {
	switch s {
	case "describe":
		return ModeDescribe
	case "summarize":
		return ModeSummarize
	default:
		return Custom(s)
	}
}

func (m Mode) String() string {
	switch m.kind {
	case kindDescribe:
		return "describe"
	case kindSummarize:
		return "summarize"
	default:
		return m.verb
	}
}

// Prompt builds the generation prompt for one product. Missing fields get
// the catalog placeholder; this never fails.
func (m Mode) Prompt(p catalog.Product) string {
	switch m.kind {
	case kindDescribe:
		return fmt.Sprintf(
			"Write a short product description for a %s named %s priced at $%s with a %s★ rating.\n\n"+
				"Make the description friendly, engaging, and highlight key features that would appeal to customers. "+
				"Keep it concise but compelling (2-3 sentences).",
			p.DisplayCategory(), p.DisplayTitle(), p.DisplayPrice(), p.DisplayRating())
	case kindSummarize:
		return fmt.Sprintf("Write a one-sentence summary for the product '%s'", p.DisplayTitle())
	default:
		return fmt.Sprintf("%s this product: %s", m.verb, p.DisplayTitle())
	}
}

// Result pairs one product with the text generated for it.
type Result struct {
	Product catalog.Product `json:"product"`
	Output  string          `json:"output"`
	Mode    string          `json:"mode"`
}

// Batch is the ordered output of one pipeline run: one mode, one optional
// category filter, input order preserved.
type Batch []Result

// Generator delegates built prompts to a backend.
type Generator struct {
	Backend llm.Backend
}

// Describe generates text for a single product. The backend contract means
// this only fails on a non-degradable backend error, which simulated and
// fallback-wrapped backends never produce.
func (g Generator) Describe(ctx context.Context, p catalog.Product, mode Mode) (Result, error) {
	out, err := g.Backend.Generate(ctx, mode.Prompt(p))
	if err != nil {
		return Result{}, err
	}
	return Result{Product: p, Output: out, Mode: mode.String()}, nil
}
