package render

import (
	"bytes"
	"strings"
	"unicode"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" // Using . import for convenience with html tags

	"github.com/mklnz/descpipe/pkg/describe"
)

// UncategorizedLabel is the group used for products with no category.
const UncategorizedLabel = "Uncategorized"

const pageCSS = `
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; }
        .product-card { background: white; margin: 20px 0; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .product-title { color: #333; font-size: 1.5em; margin-bottom: 10px; }
        .product-meta { color: #666; margin-bottom: 15px; }
        .price { color: #e74c3c; font-weight: bold; }
        .rating { color: #f39c12; }
        .description { margin: 15px 0; }
        .original { background-color: #f8f9fa; padding: 10px; border-left: 4px solid #dee2e6; }
        .generated { background-color: #e8f5e9; padding: 10px; border-left: 4px solid #28a745; }
        .category { background-color: #007bff; color: white; padding: 4px 8px; border-radius: 4px; font-size: 0.9em; }
        h1 { text-align: center; color: #333; }
`

type categoryGroup struct {
	name    string
	results describe.Batch
}

// groupByCategory splits the batch into category groups. Group order follows
// first occurrence in the batch; order within a group is batch order.
// Category comparison is case-sensitive; absent categories collapse into
// the Uncategorized group.
func groupByCategory(batch describe.Batch) []categoryGroup {
	var groups []categoryGroup
	index := make(map[string]int)
	for _, result := range batch {
		name := UncategorizedLabel
		if c := result.Product.Category; c != nil && *c != "" {
			name = *c
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, categoryGroup{name: name})
		}
		groups[i].results = append(groups[i].results, result)
	}
	return groups
}

func renderHTML(batch describe.Batch) ([]byte, error) {
	groups := groupByCategory(batch)

	var content []g.Node
	content = append(content, H1(g.Text("AI-Generated Product Descriptions")))
	for _, group := range groups {
		content = append(content,
			H2(
				g.Attr("style", "color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px;"),
				g.Text(titleCase(group.name)),
			))
		for _, result := range group.results {
			content = append(content, productCard(result))
		}
	}

	page := g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text("Product Descriptions")), // Using TitleEl to avoid conflict
				StyleEl(g.Raw(pageCSS)),
			),
			Body(
				Div(Class("container"), g.Group(content)),
			),
		),
	})

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func productCard(result describe.Result) g.Node {
	p := result.Product
	return Div(Class("product-card"),
		H3(Class("product-title"), g.Text(p.Title)),
		Div(Class("product-meta"),
			Span(Class("category"), g.Text(p.DisplayCategory())),
			Span(Class("price"), g.Text("$"+p.DisplayPrice())),
			Span(Class("rating"), g.Text(p.DisplayRating()+"★")),
		),
		Div(Class("description"),
			H4(g.Text("Original Description:")),
			Div(Class("original"), g.Text(p.DisplayDescription())),
			H4(g.Text("AI-Generated Description:")),
			Div(Class("generated"), g.Text(result.Output)),
		),
	)
}

// titleCase capitalizes the first letter of every word for group headers.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
