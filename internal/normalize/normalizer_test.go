package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
)

const originURL = "https://transparency.example.com/search?q=acme"

func TestWorkedExample(t *testing.T) {
	n := New(originURL, zap.NewNop())

	var raw domain.RawCreative
	require.NoError(t, json.Unmarshal([]byte(`{"creativeId": "X1", "impressions": 42}`), &raw))

	rec := n.NormalizeRecord(raw)
	require.Equal(t, "X1", rec.ID)
	require.Equal(t, "X1", rec.CreativeID)
	require.Equal(t, "AR_UNKNOWN", rec.AdvertiserID)
	require.Equal(t, "Unknown", rec.AdvertiserName)
	require.Equal(t, "TEXT", rec.Format)
	require.Equal(t, "42", rec.Impressions)
	require.Equal(t, originURL, rec.URL)
	require.Equal(t, originURL, rec.OriginURL)
	require.Equal(t, "0", rec.FirstShownAt)
	require.Equal(t, "0", rec.LastShownAt)
	require.Empty(t, rec.ShownCountries)
	require.Empty(t, rec.CountryStats)
	require.Empty(t, rec.Variants)
	require.Empty(t, rec.MediaStoreKeys)
}

func TestEmptyRecordIsTotal(t *testing.T) {
	n := New(originURL, zap.NewNop())

	rec := n.NormalizeRecord(domain.RawCreative{})
	require.NotEmpty(t, rec.ID)
	require.Regexp(t, `^CR_[0-9a-f]{12}$`, rec.ID)
	require.Equal(t, rec.ID, rec.CreativeID)
	require.Equal(t, "AR_UNKNOWN", rec.AdvertiserID)
	require.Equal(t, "TEXT", rec.Format)
	require.Equal(t, "0", rec.Impressions)
	require.NotNil(t, rec.ShownCountries)
	require.NotNil(t, rec.CountryStats)
	require.NotNil(t, rec.PlatformStats)
	require.NotNil(t, rec.AudienceSelections)
	require.NotNil(t, rec.Variants)
	require.NotNil(t, rec.MediaStoreKeys)
}

func TestGuessedIDIsDeterministic(t *testing.T) {
	n := New(originURL, zap.NewNop())

	var a, b domain.RawCreative
	require.NoError(t, json.Unmarshal(
		[]byte(`{"advertiserName": "Acme GmbH", "impressions": 10, "format": "TEXT"}`), &a))
	require.NoError(t, json.Unmarshal(
		[]byte(`{"format": "TEXT", "advertiserName": "Acme GmbH", "impressions": 10}`), &b))

	recA := n.NormalizeRecord(a)
	recB := n.NormalizeRecord(b)
	require.Equal(t, recA.ID, recB.ID)

	var c domain.RawCreative
	require.NoError(t, json.Unmarshal(
		[]byte(`{"advertiserName": "Other Corp", "impressions": 10, "format": "TEXT"}`), &c))
	require.NotEqual(t, recA.ID, n.NormalizeRecord(c).ID)
}

func TestFormatAndPreviewGuessedFromVariants(t *testing.T) {
	n := New(originURL, zap.NewNop())

	rec := n.NormalizeRecord(domain.RawCreative{
		Variants: []*domain.Variant{
			{TextContent: "no images here"},
			{TextContent: "ad copy", Images: []string{"https://cdn.example.com/first.png", "https://cdn.example.com/second.png"}},
		},
	})
	require.Equal(t, "IMAGE", rec.Format)
	require.Equal(t, "https://cdn.example.com/first.png", rec.PreviewURL)
}

func TestTimestampConversion(t *testing.T) {
	n := New(originURL, zap.NewNop())

	rec := n.NormalizeRecord(domain.RawCreative{
		CreativeID:   "CR1",
		FirstShownAt: "2023-11-14T22:13:20.000Z",
		LastShownAt:  "1700000050",
	})
	require.Equal(t, "1700000000", rec.FirstShownAt)
	require.Equal(t, "1700000050", rec.LastShownAt)
}

func TestCountryStatsNormalization(t *testing.T) {
	n := New(originURL, zap.NewNop())

	raw := domain.RawCreative{
		CreativeID: "CR1",
		CountryStats: []domain.RawCountryStat{
			{
				Code:         "DE",
				Name:         "Germany",
				FirstShownAt: "1700000000",
				LastShownAt:  "2023-11-14T22:13:20Z",
				Impressions:  &domain.RawImpressions{LowerBound: "1000", UpperBound: "5000"},
				PlatformStats: []domain.RawPlatformStat{
					{Name: "YouTube", Code: "YOUTUBE", Impressions: &domain.RawImpressions{LowerBound: "100"}},
					{Name: "Google Search", Code: "SEARCH"},
				},
			},
			{Code: "DE", Name: "Germany"},
			{Code: "US", Name: "United States"},
		},
	}

	rec := n.NormalizeRecord(raw)
	require.Len(t, rec.CountryStats, 3)

	de := rec.CountryStats[0]
	require.Equal(t, "2023-11-14T22:13:20.000Z", de.FirstShownAt)
	require.Equal(t, "2023-11-14T22:13:20.000Z", de.LastShownAt)
	require.Equal(t, domain.Impressions{LowerBound: "1000", UpperBound: "5000"}, de.Impressions)
	require.Equal(t, domain.Impressions{LowerBound: "100", UpperBound: "0"}, de.PlatformStats[0].Impressions)
	require.Equal(t, domain.Impressions{LowerBound: "0", UpperBound: "0"}, de.PlatformStats[1].Impressions)

	// Missing country timestamps default to the epoch.
	require.Equal(t, "1970-01-01T00:00:00.000Z", rec.CountryStats[1].FirstShownAt)

	// Deduplicated by name.
	require.Equal(t, []string{"Germany", "United States"}, rec.ShownCountries)

	// One flattened entry per (country, platform) pair.
	require.Len(t, rec.PlatformStats, 2)
	require.Equal(t, "Germany", rec.PlatformStats[0].Country)
	require.Equal(t, "DE", rec.PlatformStats[0].CountryCode)
	require.Equal(t, "YOUTUBE", rec.PlatformStats[0].Code)
}

func TestShownCountriesFallsBackToRawList(t *testing.T) {
	n := New(originURL, zap.NewNop())

	rec := n.NormalizeRecord(domain.RawCreative{
		CreativeID:     "CR1",
		ShownCountries: []string{"France", "Spain"},
	})
	require.Equal(t, []string{"France", "Spain"}, rec.ShownCountries)
}
