package domain

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultProductName is shown for records without a name
	DefaultProductName = "No name available"

	// ImageIDWidth is the minimum width of the zero-padded id used in CDN image paths
	ImageIDWidth = 5
)

// ProductRecord is one raw entry of data.products as returned by the search API.
// Nothing about its shape is trusted until it is decoded into a Product.
type ProductRecord = json.RawMessage

// Product is a decoded product record with defaults applied
type Product struct {
	Name       string `json:"name"`
	SalePriceU int64  `json:"salePriceU"` // hundredths of a ruble
	ID         string `json:"id"`
}

// Price returns the sale price in whole currency units, rounded down
func (p Product) Price() int64 {
	price := p.SalePriceU / 100
	if p.SalePriceU%100 < 0 {
		price--
	}
	return price
}

// ImageID returns the id left-padded with zeros to ImageIDWidth characters.
// A leading sign stays in front of the padding; longer ids are returned unchanged.
func (p Product) ImageID() string {
	n := utf8.RuneCountInString(p.ID)
	if n >= ImageIDWidth {
		return p.ID
	}

	pad := strings.Repeat("0", ImageIDWidth-n)
	if p.ID != "" && (p.ID[0] == '-' || p.ID[0] == '+') {
		return p.ID[:1] + pad + p.ID[1:]
	}
	return pad + p.ID
}

// SearchResult holds the records returned for one query, in relevance order
type SearchResult struct {
	Query   string          `json:"query"`
	Records []ProductRecord `json:"records"`
	Fetched bool            `json:"fetched"` // false when the request or decoding failed
}

// Len returns the number of raw records
func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// DecodeFailure describes a record that was skipped during decoding
type DecodeFailure struct {
	Index int
	Err   error
}

// RenderedPage is a complete, self-contained HTML document
type RenderedPage struct {
	HTML     []byte
	Cards    int
	Failures []DecodeFailure
}
