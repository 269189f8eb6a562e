package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
)

const mediaDownloadTimeout = 20 * time.Second

// MediaStore downloads creative media into a directory under deterministic
// content-addressed keys. Each URL is attempted once; downloads are
// idempotent across runs because an existing file short-circuits the fetch.
type MediaStore struct {
	dir    string
	http   *resty.Client
	logger *zap.Logger
}

func NewMediaStore(dir string, logger *zap.Logger) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}
	return &MediaStore{
		dir:    dir,
		http:   resty.New().SetTimeout(mediaDownloadTimeout),
		logger: logger,
	}, nil
}

// KeyForURL derives the storage key: first 12 hex chars of the URL's SHA-1
// digest, an underscore, then the URL path's base name.
func (m *MediaStore) KeyForURL(rawURL string) string {
	name := "media"
	if parsed, err := url.Parse(rawURL); err == nil {
		if base := path.Base(parsed.Path); base != "" && base != "." && base != "/" {
			name = base
		}
	}
	name = strings.SplitN(name, "?", 2)[0]
	sum := sha1.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:12] + "_" + name
}

// CaptureMedia downloads the record's preview URL and every variant image,
// mutating the record's store-key fields in place. It returns the keys that
// were successfully stored and the number of attempts that failed.
func (m *MediaStore) CaptureMedia(ctx context.Context, rec *domain.Record) ([]string, int) {
	var keys []string
	failed := 0

	if rec.PreviewURL != "" {
		key := m.KeyForURL(rec.PreviewURL)
		if m.download(ctx, rec.PreviewURL, key) {
			rec.PreviewStoreKey = key
			keys = append(keys, key)
		} else {
			failed++
		}
	}

	for _, v := range rec.Variants {
		if v == nil {
			continue
		}
		for _, img := range v.Images {
			key := m.KeyForURL(img)
			if m.download(ctx, img, key) {
				v.ImageStoreKeys = append(v.ImageStoreKeys, key)
				keys = append(keys, key)
			} else {
				failed++
			}
		}
	}
	return keys, failed
}

func (m *MediaStore) download(ctx context.Context, rawURL, key string) bool {
	target := filepath.Join(m.dir, key)
	if _, err := os.Stat(target); err == nil {
		return true
	}

	resp, err := m.http.R().SetContext(ctx).Get(rawURL)
	if err != nil || resp.IsError() {
		m.logger.Debug("media download failed", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	if err := os.WriteFile(target, resp.Body(), 0o644); err != nil {
		m.logger.Debug("media write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
