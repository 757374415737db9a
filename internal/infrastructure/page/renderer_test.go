package page

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbscout/wbscout/internal/domain"
)

func records(raw ...string) []domain.ProductRecord {
	out := make([]domain.ProductRecord, len(raw))
	for i, r := range raw {
		out[i] = domain.ProductRecord(r)
	}
	return out
}

func parse(t *testing.T, page *domain.RenderedPage) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	require.NoError(t, err)
	return doc
}

func TestRender_Empty(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	page, err := renderer.Render(nil, "shoes")

	require.NoError(t, err)
	assert.Equal(t, 0, page.Cards)
	assert.Contains(t, string(page.HTML), NoProductsPlaceholder)

	doc := parse(t, page)
	assert.Equal(t, 0, doc.Find(".product-card").Length())
	assert.Equal(t, "Search Results for: shoes", strings.TrimSpace(doc.Find("h1").Text()))
}

func TestRender_Shell(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	page, err := renderer.Render(records(`{"id":1,"name":"a"}`), "shoes")
	require.NoError(t, err)

	html := string(page.HTML)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `<meta charset="UTF-8">`)
	assert.Contains(t, html, `<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	assert.Contains(t, html, "<title>Wildberries Search Results</title>")
	assert.Contains(t, html, `href="https://cdn.jsdelivr.net/npm/bootstrap@5.1.3/dist/css/bootstrap.min.css"`)
	assert.Contains(t, html, "card.style.transform = 'scale(1.02)'")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(html), "</html>"))
	assert.NotContains(t, html, NoProductsPlaceholder)

	doc := parse(t, page)
	assert.Equal(t, 1, doc.Find("div.row.row-cols-1.row-cols-md-3.g-4").Length())
}

func TestRender_Card(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	page, err := renderer.Render(records(`{"id":42,"name":"Кроссовки","salePriceU":150000}`), "обувь")
	require.NoError(t, err)
	require.Equal(t, 1, page.Cards)

	doc := parse(t, page)
	card := doc.Find(".product-card").First()

	src, _ := card.Find("img").Attr("src")
	assert.Equal(t, "https://images.wbstatic.net/c246x328/new/00042.jpg", src)
	alt, _ := card.Find("img").Attr("alt")
	assert.Equal(t, "Кроссовки", alt)
	assert.Equal(t, "Кроссовки", card.Find(".card-title").Text())
	assert.Equal(t, "Price: 1500 ₽", card.Find(".card-text").Text())
	href, _ := card.Find("a").Attr("href")
	assert.Equal(t, "https://www.wildberries.ru/catalog/42/detail.aspx", href)
}

func TestRender_Defaults(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	page, err := renderer.Render(records(`{}`), "q")
	require.NoError(t, err)

	doc := parse(t, page)
	card := doc.Find(".product-card").First()
	assert.Equal(t, domain.DefaultProductName, card.Find(".card-title").Text())
	assert.Equal(t, "Price: 0 ₽", card.Find(".card-text").Text())
	src, _ := card.Find("img").Attr("src")
	assert.Equal(t, "https://images.wbstatic.net/c246x328/new/00000.jpg", src)
}

func TestRender_SkipsMalformedRecordsInOrder(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	input := records(
		`{"id":1,"name":"first"}`,
		`[]`,
		`{"id":2,"name":"second","salePriceU":"abc"}`,
		`{"id":3,"name":"third"}`,
		`null`,
		`{"id":4,"name":"fourth"}`,
	)

	page, err := renderer.Render(input, "q")
	require.NoError(t, err)

	assert.Equal(t, 4, page.Cards)
	require.Len(t, page.Failures, 2)
	assert.Equal(t, 1, page.Failures[0].Index)
	assert.Equal(t, 4, page.Failures[1].Index)

	var titles []string
	parse(t, page).Find(".card-title").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, titles)
}

func TestRender_UnreadablePriceShowsZero(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	page, err := renderer.Render(records(`{"id":2,"name":"second","salePriceU":"abc"}`), "q")
	require.NoError(t, err)

	require.Equal(t, 1, page.Cards)
	assert.Empty(t, page.Failures)
	assert.Contains(t, parse(t, page).Find(".product-card").Text(), "Price: 0 ₽")
}

func TestRender_AllMalformed(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	page, err := renderer.Render(records(`1`, `"x"`), "q")
	require.NoError(t, err)

	assert.Equal(t, 0, page.Cards)
	assert.Len(t, page.Failures, 2)
	assert.Contains(t, string(page.HTML), NoProductsPlaceholder)
}

func TestRender_CardCountMatchesDecodedRecords(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	for n := 0; n <= 60; n += 15 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			var input []domain.ProductRecord
			for i := 0; i < n; i++ {
				input = append(input, domain.ProductRecord(fmt.Sprintf(`{"id":%d,"name":"p%d","salePriceU":%d}`, i, i, i*100)))
			}

			page, err := renderer.Render(input, "q")
			require.NoError(t, err)

			doc := parse(t, page)
			assert.Equal(t, n, doc.Find(".product-card").Length())
			doc.Find(".card-title").Each(func(i int, s *goquery.Selection) {
				assert.Equal(t, fmt.Sprintf("p%d", i), s.Text())
			})
		})
	}
}

func TestRender_EscapesRemoteText(t *testing.T) {
	renderer := NewRenderer(DefaultRendererConfig())

	page, err := renderer.Render(
		records(`{"id":"1\"><script>alert(1)</script>","name":"<b>bold</b> & <script>x()</script>"}`),
		`<img src=x onerror=alert(1)>`,
	)
	require.NoError(t, err)

	html := string(page.HTML)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.NotContains(t, html, "<img src=x onerror")

	doc := parse(t, page)
	assert.Equal(t, "<b>bold</b> & <script>x()</script>", doc.Find(".card-title").Text())
	assert.Equal(t, "Search Results for: <img src=x onerror=alert(1)>", strings.TrimSpace(doc.Find("h1").Text()))
	assert.Equal(t, 1, doc.Find("script").Length())
}

func TestRender_CustomURLs(t *testing.T) {
	renderer := NewRenderer(RendererConfig{
		StylesheetURL:  "https://cdn.example.com/style.css",
		ImageBaseURL:   "https://img.example.com/",
		ProductBaseURL: "https://shop.example.com/p/",
	})

	page, err := renderer.Render(records(`{"id":123456}`), "q")
	require.NoError(t, err)

	doc := parse(t, page)
	src, _ := doc.Find(".product-card img").Attr("src")
	assert.Equal(t, "https://img.example.com/123456.jpg", src)
	href, _ := doc.Find(".product-card a").Attr("href")
	assert.Equal(t, "https://shop.example.com/p/123456/detail.aspx", href)
	link, _ := doc.Find("link").Attr("href")
	assert.Equal(t, "https://cdn.example.com/style.css", link)
}
