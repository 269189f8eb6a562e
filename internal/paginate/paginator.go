// Package paginate drives page iteration until an item budget is met or the
// source runs out of pages.
package paginate

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
)

// Raw-markup pages carry no reliable "more pages" signal, so iteration over
// them is capped outright.
const maxMarkupPages = 50

// PageSource supplies page documents. Implementations must not fail: any
// transport problem is resolved to a synthetic structured document.
type PageSource interface {
	FetchPage(ctx context.Context, url string, page int) domain.PageDocument
}

// Paginator streams page documents one at a time. Structured payloads
// self-report their item count and hasNext flag; for raw-markup pages the
// caller reports extracted item counts through CountItems.
type Paginator struct {
	source    PageSource
	originURL string
	maxItems  int
	logger    *zap.Logger

	page    int
	fetched int
	done    bool
}

func New(source PageSource, originURL string, maxItems int, logger *zap.Logger) *Paginator {
	return &Paginator{
		source:    source,
		originURL: originURL,
		maxItems:  maxItems,
		logger:    logger,
	}
}

// Next fetches and returns the next page document. The second return value is
// false once iteration has ended; no further documents are yielded after a
// stop condition fires.
func (p *Paginator) Next(ctx context.Context) (domain.PageDocument, bool) {
	if p.done {
		return domain.PageDocument{}, false
	}

	p.page++
	doc := p.source.FetchPage(ctx, p.originURL, p.page)

	if doc.Mode == domain.ModeStructured && doc.Payload != nil {
		p.fetched += len(doc.Payload.Items)
		p.logger.Debug("paginator: structured page",
			zap.Int("page", p.page),
			zap.Int("items", len(doc.Payload.Items)),
			zap.Int("fetched", p.fetched),
			zap.Bool("has_next", doc.Payload.HasNext))
		if p.fetched >= p.maxItems || !doc.Payload.HasNext {
			p.done = true
		}
	} else {
		if p.fetched >= p.maxItems || p.page >= maxMarkupPages {
			p.done = true
		}
	}
	return doc, true
}

// CountItems records items obtained from a raw-markup page, which cannot
// self-report its own count.
func (p *Paginator) CountItems(n int) {
	p.fetched += n
	if p.fetched >= p.maxItems {
		p.done = true
	}
}
