package domain

import "context"

// SearchClient defines the interface for querying the marketplace search API
type SearchClient interface {
	SearchProducts(ctx context.Context, query string, limit int) (*SearchResult, error)
}

// PageRenderer turns search records into an HTML page
type PageRenderer interface {
	Render(records []ProductRecord, query string) (*RenderedPage, error)
}

// PageWriter persists a rendered page
type PageWriter interface {
	WritePage(page *RenderedPage) error
	Path() string
}
