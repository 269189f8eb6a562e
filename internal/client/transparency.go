// Package client fetches transparency-center pages. A client never fails:
// transport problems degrade to a synthetic structured payload so the
// pipeline downstream always has something to process.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

// Settings configures the page source transport.
type Settings struct {
	UserAgent string
	Cookies   map[string]string
	ProxyURL  string
	Mock      bool
	Timeout   time.Duration
}

// TransparencyClient fetches pages from the ad-transparency source, or
// generates deterministic synthetic batches in mock mode.
type TransparencyClient struct {
	http   *resty.Client
	mock   bool
	logger *zap.Logger
}

func New(settings Settings, logger *zap.Logger) *TransparencyClient {
	if settings.UserAgent == "" {
		settings.UserAgent = defaultUserAgent
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}

	hc := resty.New().
		SetTimeout(settings.Timeout).
		SetHeader("User-Agent", settings.UserAgent)
	if settings.ProxyURL != "" {
		hc.SetProxy(settings.ProxyURL)
	}
	for name, value := range settings.Cookies {
		hc.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	return &TransparencyClient{
		http:   hc,
		mock:   settings.Mock,
		logger: logger,
	}
}

// FetchPage returns the page document for the given page number. In mock
// mode, or when the real fetch fails or comes back empty, the document is a
// synthetic structured payload seeded by (url, page).
func (c *TransparencyClient) FetchPage(ctx context.Context, url string, page int) domain.PageDocument {
	if c.mock {
		c.logger.Debug("mock fetch", zap.String("url", url), zap.Int("page", page))
		return domain.PageDocument{
			Mode:    domain.ModeStructured,
			Payload: syntheticPayload(url, page),
		}
	}

	markup := c.get(ctx, url)
	if markup == "" {
		return domain.PageDocument{
			Mode:    domain.ModeStructured,
			Payload: syntheticPayload(url, page),
		}
	}
	return domain.PageDocument{Mode: domain.ModeRawMarkup, Markup: markup}
}

func (c *TransparencyClient) get(ctx context.Context, url string) string {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		c.logger.Warn("page fetch failed, falling back to synthetic payload",
			zap.String("url", url), zap.Error(err))
		return ""
	}
	if resp.IsError() {
		c.logger.Warn("page fetch returned error status, falling back to synthetic payload",
			zap.String("url", url), zap.Int("status", resp.StatusCode()))
		return ""
	}
	return resp.String()
}
