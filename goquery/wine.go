package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/winefetch"
)

var _ winefetch.Extractor = (*Extractor)(nil)

// Layout anchors of a rendered per-wine page.
const (
	headerPath = `#root > div:nth-of-type(1) > div > div:nth-of-type(1) > div > header`
	mainPath   = `#root > div:nth-of-type(1) > div > div:nth-of-type(2) > div > div`

	// factsPath is the wine summary list. Some pages wrap the list in an
	// extra div, which factsAltPath covers.
	factsPath    = mainPath + ` > div:nth-of-type(1) > div > ol > li > article > div > div > div`
	factsAltPath = mainPath + ` > div:nth-of-type(1) > div > div > ol > li > article > div > div > div`

	reviewPath = mainPath + ` > div:nth-of-type(2) > article > div:nth-of-type(2) > div > div > div`
)

// SelectorConfig lists CSS selectors for one Wine column, tried in order.
// The first selector that matches an element with non-empty text wins.
// DefaultSelectors carry a primary path and at most one fallback.
type SelectorConfig struct {
	Column    string
	Selectors []string
}

// DefaultSelectors locate each column on the review site's wine pages.
var DefaultSelectors = []SelectorConfig{
	{Column: "Full_Wine_Name", Selectors: []string{headerPath + ` > h1`}},
	{Column: "Producer", Selectors: []string{
		factsPath + ` > div:nth-of-type(1) > div:nth-of-type(2) > span > a`,
		factsAltPath + ` > div:nth-of-type(1) > div:nth-of-type(2)`,
	}},
	{Column: "Wine Region", Selectors: []string{
		factsPath + ` > div:nth-of-type(2) > div:nth-of-type(2)`,
		factsAltPath + ` > div:nth-of-type(2)`,
	}},
	{Column: "Variety", Selectors: []string{factsPath + ` > div:nth-of-type(3) > div > a`}},
	{Column: "Color", Selectors: []string{
		factsPath + ` > div:nth-of-type(4) > div:nth-of-type(2)`,
		factsAltPath + ` > div:nth-of-type(4) > div:nth-of-type(2)`,
	}},
	{Column: "Score", Selectors: []string{reviewPath + ` > div:nth-of-type(1) > div > div:nth-of-type(2)`}},
	{Column: "Drink Window", Selectors: []string{reviewPath + ` > div:nth-of-type(2) > div > div:nth-of-type(3) > dl > dd`}},
	{Column: "Reviewed By", Selectors: []string{
		reviewPath + ` > div:nth-of-type(2) > div > div:nth-of-type(1) > dl > dd > a`,
		`dd > a`,
	}},
	{Column: "Release Price", Selectors: []string{reviewPath + ` > div:nth-of-type(2) > div > div:nth-of-type(2) > dl > dl > div`}},
	{Column: "Drink Date", Selectors: []string{reviewPath + ` > div:nth-of-type(2) > div > div:nth-of-type(3) > dl > dd`}},
	{Column: "Tasting Note", Selectors: []string{reviewPath + ` > div:nth-of-type(2) > p:nth-of-type(1)`}},
	{Column: "Producer Note", Selectors: []string{reviewPath + ` > div:nth-of-type(2) > p:nth-of-type(2)`}},
	{Column: "Maturity", Selectors: []string{factsAltPath + ` > div:nth-of-type(5)`}},
	{Column: "Certified", Selectors: []string{factsAltPath + ` > div:nth-of-type(6)`}},
	{Column: "Published Date", Selectors: []string{reviewPath + ` > p`}},
}

// Extractor reads wine fields out of rendered page HTML.
type Extractor struct {
	// Selectors defaults to DefaultSelectors when nil.
	Selectors []SelectorConfig
}

// NewExtractor creates an Extractor using DefaultSelectors.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract implements winefetch.Extractor. The returned Wine holds raw
// element text; normalization is left to the caller. A page without a
// wine title has not finished rendering, so it yields ETRANSIENT.
func (e *Extractor) Extract(html, url string) (*winefetch.Wine, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, winefetch.Errorf(winefetch.EINVALID, "failed to parse HTML: %v", err)
	}

	selectors := e.Selectors
	if selectors == nil {
		selectors = DefaultSelectors
	}

	wine := &winefetch.Wine{URL: url}
	for _, cfg := range selectors {
		field := column(wine, cfg.Column)
		if field == nil {
			return nil, winefetch.Errorf(winefetch.EINVALID, "unknown column %q", cfg.Column)
		}
		*field = firstText(doc, cfg.Selectors)
	}

	if strings.TrimSpace(wine.FullName) == "" {
		return nil, winefetch.Errorf(winefetch.ETRANSIENT, "wine title not found on %s", url)
	}
	return wine, nil
}

// firstText returns the text of the first element matched by any selector.
// Matches with blank text are skipped.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var text string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = s.Text()
			return strings.TrimSpace(text) == ""
		})
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

// column maps a WineHeaders title to the Wine field it fills.
func column(w *winefetch.Wine, name string) *string {
	switch name {
	case "Full_Wine_Name":
		return &w.FullName
	case "Wine_Name":
		return &w.Name
	case "Vintage":
		return &w.Vintage
	case "Producer":
		return &w.Producer
	case "Wine Region":
		return &w.Region
	case "Variety":
		return &w.Variety
	case "Color":
		return &w.Color
	case "Score":
		return &w.Score
	case "Drink Window":
		return &w.DrinkWindow
	case "Reviewed By":
		return &w.ReviewedBy
	case "Release Price":
		return &w.ReleasePrice
	case "Drink Date":
		return &w.DrinkDate
	case "Tasting Note":
		return &w.TastingNote
	case "Producer Note":
		return &w.ProducerNote
	case "Maturity":
		return &w.Maturity
	case "Certified":
		return &w.Certified
	case "Published Date":
		return &w.PublishedDate
	}
	return nil
}
