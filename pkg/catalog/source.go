package catalog

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/mklnz/descpipe/internal/utils"
)

const DefaultBaseURL = "https://dummyjson.com"

// FetchOptions controls a catalog fetch. When Category is set, Limit is
// ignored and the whole category is returned.
type FetchOptions struct {
	Limit    int
	Category string
}

// Source returns a batch of product records from somewhere remote.
type Source interface {
	Fetch(ctx context.Context, opts FetchOptions) (Snapshot, error)
}

// DummyJSONSource fetches products from the DummyJSON REST API.
type DummyJSONSource struct {
	BaseURL string
	Client  *retryablehttp.Client
}

func NewDummyJSONSource() *DummyJSONSource {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3
	return &DummyJSONSource{BaseURL: DefaultBaseURL, Client: client}
}

func (s *DummyJSONSource) Fetch(ctx context.Context, opts FetchOptions) (Snapshot, error) {
	endpoint := fmt.Sprintf("%s/products?limit=%d", s.BaseURL, opts.Limit)
	if opts.Category != "" {
		endpoint = s.BaseURL + "/products/category/" + url.PathEscape(opts.Category)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetching products: unexpected HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	products := parseProducts(string(body))
	utils.Log.Info("Successfully fetched ", len(products), " products")
	return products, nil
}

func parseProducts(body string) Snapshot {
	var out Snapshot
	for _, raw := range gjson.Get(body, "products").Array() {
		p := Product{
			ID:    int(gjson.Get(raw.Raw, "id").Int()),
			Title: gjson.Get(raw.Raw, "title").Str,
		}
		if v := gjson.Get(raw.Raw, "category"); v.Exists() {
			s := v.Str
			p.Category = &s
		}
		if v := gjson.Get(raw.Raw, "price"); v.Exists() {
			f := v.Float()
			p.Price = &f
		}
		if v := gjson.Get(raw.Raw, "rating"); v.Exists() {
			f := v.Float()
			p.Rating = &f
		}
		if v := gjson.Get(raw.Raw, "brand"); v.Exists() {
			s := v.Str
			p.Brand = &s
		}
		if v := gjson.Get(raw.Raw, "description"); v.Exists() {
			s := v.Str
			p.Description = &s
		}
		if v := gjson.Get(raw.Raw, "stock"); v.Exists() {
			n := int(v.Int())
			p.Stock = &n
		}
		out = append(out, p)
	}
	return out
}
