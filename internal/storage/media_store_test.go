package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
)

func TestKeyForURL(t *testing.T) {
	m, err := NewMediaStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	key := m.KeyForURL("https://cdn.example.com/assets/banner.png?v=2")
	require.Regexp(t, `^[0-9a-f]{12}_banner\.png$`, key)

	// Same URL, same key.
	require.Equal(t, key, m.KeyForURL("https://cdn.example.com/assets/banner.png?v=2"))

	// URL without a usable path base falls back to a generic name.
	require.True(t, strings.HasSuffix(m.KeyForURL("https://cdn.example.com/"), "_media"))
}

func TestCaptureMedia(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("imagebytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	m, err := NewMediaStore(dir, zap.NewNop())
	require.NoError(t, err)

	rec := sampleRecord("CR1")
	rec.PreviewURL = srv.URL + "/preview.png"
	rec.Variants = []*domain.Variant{
		{Images: []string{srv.URL + "/a.png", srv.URL + "/b.png"}, ImageStoreKeys: []string{}},
	}

	keys, failed := m.CaptureMedia(context.Background(), &rec)
	require.Len(t, keys, 3)
	require.Zero(t, failed)
	require.Equal(t, m.KeyForURL(rec.PreviewURL), rec.PreviewStoreKey)
	require.Len(t, rec.Variants[0].ImageStoreKeys, 2)

	for _, key := range keys {
		data, err := os.ReadFile(filepath.Join(dir, key))
		require.NoError(t, err)
		require.Equal(t, "imagebytes", string(data))
	}

	// Second capture is idempotent: existing files skip the download.
	before := hits
	rec2 := sampleRecord("CR1")
	rec2.PreviewURL = rec.PreviewURL
	rec2.Variants = []*domain.Variant{
		{Images: []string{srv.URL + "/a.png", srv.URL + "/b.png"}, ImageStoreKeys: []string{}},
	}
	keys2, failed2 := m.CaptureMedia(context.Background(), &rec2)
	require.Len(t, keys2, 3)
	require.Zero(t, failed2)
	require.Equal(t, before, hits)
}

func TestCaptureMediaSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "bad.png") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	m, err := NewMediaStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	rec := sampleRecord("CR1")
	rec.PreviewURL = ""
	rec.Variants = []*domain.Variant{
		{Images: []string{srv.URL + "/bad.png", srv.URL + "/good.png"}, ImageStoreKeys: []string{}},
	}

	keys, failed := m.CaptureMedia(context.Background(), &rec)
	require.Len(t, keys, 1)
	require.Equal(t, 1, failed)
	require.Empty(t, rec.PreviewStoreKey)
	require.Len(t, rec.Variants[0].ImageStoreKeys, 1)
}
