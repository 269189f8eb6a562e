// Package extractor turns page documents into raw creative records.
package extractor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
	"github.com/user/transparency-scraper/internal/monitoring"
)

var htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

// Extractor converts fetched page documents into raw creatives. It never
// fails: malformed markup or undecodable script blobs degrade to fewer (or
// zero) records.
type Extractor struct {
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates an extractor. metrics may be nil.
func New(logger *zap.Logger, metrics *monitoring.Metrics) *Extractor {
	return &Extractor{logger: logger, metrics: metrics}
}

func (e *Extractor) countExtracted(source string, n int) {
	if e.metrics == nil || n == 0 {
		return
	}
	e.metrics.CreativesExtracted.WithLabelValues(source).Add(float64(n))
}

// Creatives returns the raw creative records discovered in doc, in discovery
// order.
func (e *Extractor) Creatives(doc domain.PageDocument) []domain.RawCreative {
	switch doc.Mode {
	case domain.ModeStructured:
		if doc.Payload == nil {
			return nil
		}
		e.logger.Debug("extractor: structured items", zap.Int("count", len(doc.Payload.Items)))
		e.countExtracted("structured", len(doc.Payload.Items))
		return doc.Payload.Items
	case domain.ModeRawMarkup:
		return e.fromMarkup(doc.Markup)
	default:
		e.logger.Warn("unsupported page document mode", zap.String("mode", string(doc.Mode)))
		return nil
	}
}

func (e *Extractor) fromMarkup(markup string) []domain.RawCreative {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.logger.Debug("markup parse failed", zap.Error(err))
		return nil
	}

	items := e.embeddedCreatives(doc)
	if len(items) > 0 {
		e.logger.Debug("extractor: JSON-backed items", zap.Int("count", len(items)))
		e.countExtracted("embedded", len(items))
		return items
	}

	// No structured data anywhere in the page. Scrape what little the markup
	// itself offers and emit a single placeholder record.
	variants := scrapeVariants(doc)
	e.logger.Debug("extractor: fallback variants", zap.Int("count", len(variants)))
	if len(variants) == 0 {
		return nil
	}
	e.countExtracted("fallback", 1)
	return []domain.RawCreative{{
		ID:             "CR_FALLBACK_1",
		CreativeID:     "CR_FALLBACK_1",
		AdvertiserID:   "AR_FALLBACK",
		AdvertiserName: "Unknown Advertiser",
		Format:         "TEXT",
		FirstShownAt:   "0",
		LastShownAt:    "0",
		Impressions:    "0",
		ShownCountries: []string{},
		CountryStats:   []domain.RawCountryStat{},
		Variants:       variants,
	}}
}

// embeddedCreatives scans script blocks for JSON blobs (common in SPA pages)
// and collects every decoded object carrying a creativeId key.
func (e *Extractor) embeddedCreatives(doc *goquery.Document) []domain.RawCreative {
	var items []domain.RawCreative
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(htmlCommentRe.ReplaceAllString(s.Text(), ""))
		if content == "" {
			return
		}
		if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
			return
		}
		var blob any
		if err := json.Unmarshal([]byte(content), &blob); err != nil {
			// Non-JSON scripts are common and not an error.
			e.logger.Debug("skipping undecodable script blob", zap.Error(err))
			return
		}
		switch v := blob.(type) {
		case map[string]any:
			if raw, ok := asCreative(v); ok {
				items = append(items, raw)
			}
		case []any:
			for _, inner := range v {
				obj, ok := inner.(map[string]any)
				if !ok {
					continue
				}
				if raw, ok := asCreative(obj); ok {
					items = append(items, raw)
				}
			}
		}
	})
	return items
}

// asCreative re-decodes a generic JSON object into a RawCreative, but only
// when it carries a creativeId key.
func asCreative(obj map[string]any) (domain.RawCreative, bool) {
	if _, ok := obj["creativeId"]; !ok {
		return domain.RawCreative{}, false
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return domain.RawCreative{}, false
	}
	var raw domain.RawCreative
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.RawCreative{}, false
	}
	return raw, true
}

// scrapeVariants pulls the document title and image sources as a single
// variant when no structured data is present.
func scrapeVariants(doc *goquery.Document) []*domain.Variant {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	var images []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, exists := s.Attr("src"); exists && src != "" {
			images = append(images, src)
		}
	})

	if title == "" && len(images) == 0 {
		return nil
	}
	if images == nil {
		images = []string{}
	}
	return []*domain.Variant{{
		TextContent:    title,
		Images:         images,
		ImageStoreKeys: []string{},
	}}
}
