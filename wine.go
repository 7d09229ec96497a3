package winefetch

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// Placeholder values of FullName for rows that carry no scraped data.
const (
	FullNameError   = "ERROR"
	FullNameStopped = "STOPPED"
)

// Wine represents one review scraped from a per-wine page.
type Wine struct {
	FullName      string `json:"fullName"`
	Name          string `json:"name"`
	Vintage       string `json:"vintage"`
	Producer      string `json:"producer"`
	Region        string `json:"region"`
	Variety       string `json:"variety"`
	Color         string `json:"color"`
	Score         string `json:"score"`
	DrinkWindow   string `json:"drinkWindow"`
	ReviewedBy    string `json:"reviewedBy"`
	ReleasePrice  string `json:"releasePrice"`
	DrinkDate     string `json:"drinkDate"`
	TastingNote   string `json:"tastingNote"`
	ProducerNote  string `json:"producerNote"`
	Maturity      string `json:"maturity"`
	Certified     string `json:"certified"`
	PublishedDate string `json:"publishedDate"`
	URL           string `json:"url"`

	// Error is the failure detail for ERROR and STOPPED rows.
	// It is not part of the record's identity.
	Error string `json:"error,omitempty"`
}

// WineHeaders are the spreadsheet column titles, in the order returned by Values.
var WineHeaders = []string{
	"Full_Wine_Name",
	"Wine_Name",
	"Vintage",
	"Producer",
	"Wine Region",
	"Variety",
	"Color",
	"Score",
	"Drink Window",
	"Reviewed By",
	"Release Price",
	"Drink Date",
	"Tasting Note",
	"Producer Note",
	"Maturity",
	"Certified",
	"Published Date",
	"URL",
}

// Values returns the exported fields in WineHeaders order.
func (w *Wine) Values() []string {
	return []string{
		w.FullName,
		w.Name,
		w.Vintage,
		w.Producer,
		w.Region,
		w.Variety,
		w.Color,
		w.Score,
		w.DrinkWindow,
		w.ReviewedBy,
		w.ReleasePrice,
		w.DrinkDate,
		w.TastingNote,
		w.ProducerNote,
		w.Maturity,
		w.Certified,
		w.PublishedDate,
		w.URL,
	}
}

// DedupeKey identifies a record by every field except Error.
func (w *Wine) DedupeKey() string {
	return strings.Join(w.Values(), "\x1f")
}

// Failed reports whether the row is a placeholder for a failed or stopped item.
func (w *Wine) Failed() bool {
	return w.FullName == FullNameError || w.FullName == FullNameStopped || w.Error != ""
}

// FailedWine builds the placeholder row recorded for an item that produced no data.
func FailedWine(rawURL string, err error) *Wine {
	name := FullNameError
	if ErrorCode(err) == ECANCELED {
		name = FullNameStopped
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &Wine{FullName: name, URL: rawURL, Error: detail}
}

var (
	vintagePattern = regexp.MustCompile(`(19|20)\d{2}`)

	// A region part starts at an uppercase letter and may continue over
	// spaces or hyphens into further capitalized words ("Southern Rhône").
	regionPartPattern = regexp.MustCompile(`\p{Lu}[^\p{Lu}\s-]*(?:[\s-]\p{Lu}[^\p{Lu}\s-]*)*`)
)

// Normalize trims every field and derives Vintage, Name, Region, Maturity
// and Certified from the raw text extracted from the page.
func (w *Wine) Normalize() {
	for _, f := range []*string{
		&w.FullName, &w.Name, &w.Vintage, &w.Producer, &w.Region, &w.Variety,
		&w.Color, &w.Score, &w.DrinkWindow, &w.ReviewedBy, &w.ReleasePrice,
		&w.DrinkDate, &w.TastingNote, &w.ProducerNote, &w.Maturity,
		&w.Certified, &w.PublishedDate, &w.URL,
	} {
		*f = strings.TrimSpace(*f)
	}

	if w.Vintage == "" {
		w.Vintage = vintagePattern.FindString(w.FullName)
	}
	if w.Name == "" {
		w.Name = wineName(w.FullName, w.Producer, w.Vintage)
	}
	w.Region = splitRegion(w.Region)

	if w.Maturity != "" && !strings.HasPrefix(w.Maturity, "Maturity:") {
		w.Maturity = "0"
	}
	if w.Certified != "" && !strings.Contains(w.Certified, "Certified") {
		w.Certified = "0"
	}
}

// wineName strips a leading producer and a trailing vintage from the full name.
func wineName(fullName, producer, vintage string) string {
	name := fullName
	if producer != "" {
		re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(producer) + `\s*`)
		name = re.ReplaceAllString(name, "")
	}
	if vintage != "" && strings.HasSuffix(name, vintage) {
		name = strings.TrimSuffix(name, vintage)
	}
	return strings.TrimSpace(name)
}

// splitRegion separates run-together region names ("FranceRhône") with commas.
func splitRegion(region string) string {
	if region == "" {
		return ""
	}
	parts := regionPartPattern.FindAllString(region, -1)
	if len(parts) == 0 {
		return region
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// ValidateWineURL returns EINVALID unless rawURL is an absolute http(s) URL.
func ValidateWineURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "invalid URL %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "invalid URL %q: missing host", rawURL)
	}
	return nil
}

// WineScraper produces a normalized Wine from a per-wine page URL.
type WineScraper interface {
	ScrapeWine(ctx context.Context, url string) (*Wine, error)
}

// Extractor parses rendered page HTML into a raw, unnormalized Wine.
type Extractor interface {
	// Extract returns ETRANSIENT when the page does not look rendered yet.
	Extract(html, url string) (*Wine, error)
}

// Exporter writes wine rows to a file at path.
type Exporter interface {
	Export(path string, wines []*Wine) error
}
