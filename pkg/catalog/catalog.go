package catalog

import (
	"fmt"
	"strings"
)

// NotAvailable is the placeholder shown for fields the source did not provide.
const NotAvailable = "N/A"

// Product is a single catalog record. ID and Title are always present;
// everything else is optional and nil when the source omitted it.
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	Description *string  `json:"description,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

// Snapshot is an ordered capture of the catalog at one point in time.
type Snapshot []Product

// DisplayTitle never returns an empty string.
func (p Product) DisplayTitle() string {
	if p.Title == "" {
		return "Unknown Product"
	}
	return p.Title
}

func (p Product) DisplayCategory() string {
	if p.Category == nil || *p.Category == "" {
		return NotAvailable
	}
	return *p.Category
}

func (p Product) DisplayBrand() string {
	if p.Brand == nil || *p.Brand == "" {
		return NotAvailable
	}
	return *p.Brand
}

func (p Product) DisplayDescription() string {
	if p.Description == nil || *p.Description == "" {
		return NotAvailable
	}
	return *p.Description
}

func (p Product) DisplayPrice() string {
	if p.Price == nil {
		return NotAvailable
	}
	return trimFloat(*p.Price)
}

func (p Product) DisplayRating() string {
	if p.Rating == nil {
		return NotAvailable
	}
	return trimFloat(*p.Rating)
}

func (p Product) DisplayStock() string {
	if p.Stock == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%d", *p.Stock)
}

// trimFloat renders 500 as "500" and 4.69 as "4.69".
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FilterByCategory keeps the products whose category matches filter,
// case-insensitively and exactly. Order is preserved. An empty filter keeps
// everything.
func FilterByCategory(products Snapshot, filter string) Snapshot {
	if filter == "" {
		return products
	}
	var out Snapshot
	for _, p := range products {
		if p.Category != nil && strings.EqualFold(*p.Category, filter) {
			out = append(out, p)
		}
	}
	return out
}
