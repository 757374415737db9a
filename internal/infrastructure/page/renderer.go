package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/wbscout/wbscout/internal/domain"
	"github.com/wbscout/wbscout/internal/infrastructure/wildberries"
)

// NoProductsPlaceholder is rendered in place of the card grid when no record decoded
const NoProductsPlaceholder = "No products found"

//go:embed templates/*.tmpl
var templateFS embed.FS

var resultsTemplate = template.Must(template.ParseFS(templateFS, "templates/results.html.tmpl"))

// RendererConfig holds the external URLs baked into the page
type RendererConfig struct {
	StylesheetURL  string
	ImageBaseURL   string
	ProductBaseURL string
}

// DefaultRendererConfig returns the CDN locations used by the marketplace site
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		StylesheetURL:  "https://cdn.jsdelivr.net/npm/bootstrap@5.1.3/dist/css/bootstrap.min.css",
		ImageBaseURL:   "https://images.wbstatic.net/c246x328/new/",
		ProductBaseURL: "https://www.wildberries.ru/catalog/",
	}
}

// Renderer builds the results page from raw search records
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new page renderer
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{config: config}
}

type pageData struct {
	RendererConfig
	Query    string
	Products []domain.Product
}

// Render decodes each record independently and renders one card per decoded
// product, in input order. Records that fail to decode are skipped and
// reported in RenderedPage.Failures.
func (r *Renderer) Render(records []domain.ProductRecord, query string) (*domain.RenderedPage, error) {
	products, failures := wildberries.DecodeProducts(records)

	var buf bytes.Buffer
	err := resultsTemplate.Execute(&buf, pageData{
		RendererConfig: r.config,
		Query:          query,
		Products:       products,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return &domain.RenderedPage{
		HTML:     buf.Bytes(),
		Cards:    len(products),
		Failures: failures,
	}, nil
}
