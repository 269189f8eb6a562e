// Package normalize maps raw creatives onto the canonical record schema.
// Every field resolves through a defensive fallback chain so that arbitrary,
// partially-missing input still yields a complete record.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
	"github.com/user/transparency-scraper/internal/timefmt"
)

const (
	unknownAdvertiserID   = "AR_UNKNOWN"
	unknownAdvertiserName = "Unknown"
)

// Normalizer converts raw creatives into canonical records, stamping each
// with the origin URL of the scrape.
type Normalizer struct {
	originURL string
	logger    *zap.Logger
}

func New(originURL string, logger *zap.Logger) *Normalizer {
	return &Normalizer{originURL: originURL, logger: logger}
}

// NormalizeRecord is total: it never fails, regardless of which fields are
// missing from raw. All numeric and time fields come out as strings.
func (n *Normalizer) NormalizeRecord(raw domain.RawCreative) domain.Record {
	creativeID := raw.CreativeID
	if creativeID == "" {
		creativeID = raw.ID
	}
	if creativeID == "" {
		creativeID = guessID(raw)
	}

	format := raw.Format
	if format == "" {
		format = guessFormat(raw)
	}

	url := raw.URL
	if url == "" {
		url = n.originURL
	}

	preview := raw.PreviewURL
	if preview == "" {
		preview = firstImage(raw)
	}

	countryStats := normalizeCountryStats(raw.CountryStats)

	shownCountries := distinctCountryNames(countryStats)
	if len(shownCountries) == 0 && len(raw.ShownCountries) > 0 {
		shownCountries = raw.ShownCountries
	}
	if shownCountries == nil {
		shownCountries = []string{}
	}

	variants := raw.Variants
	if variants == nil {
		variants = []*domain.Variant{}
	}
	audience := raw.AudienceSelections
	if audience == nil {
		audience = []domain.AudienceSelection{}
	}

	rec := domain.Record{
		ID:                 creativeID,
		AdvertiserID:       stringOr(raw.AdvertiserID, unknownAdvertiserID),
		CreativeID:         creativeID,
		AdvertiserName:     stringOr(raw.AdvertiserName, unknownAdvertiserName),
		Format:             format,
		URL:                url,
		PreviewURL:         preview,
		PreviewStoreKey:    "",
		FirstShownAt:       timefmt.ToEpochString(raw.FirstShownAt.String()),
		LastShownAt:        timefmt.ToEpochString(raw.LastShownAt.String()),
		Impressions:        raw.Impressions.Or("0"),
		ShownCountries:     shownCountries,
		CountryStats:       countryStats,
		PlatformStats:      flattenPlatforms(countryStats),
		AudienceSelections: audience,
		Variants:           variants,
		OriginURL:          n.originURL,
		MediaStoreKeys:     []string{},
	}
	n.logger.Debug("normalized record", zap.String("id", rec.ID))
	return rec
}

func normalizeCountryStats(stats []domain.RawCountryStat) []domain.CountryStat {
	norm := make([]domain.CountryStat, 0, len(stats))
	for _, s := range stats {
		platforms := make([]domain.PlatformStat, 0, len(s.PlatformStats))
		for _, p := range s.PlatformStats {
			platforms = append(platforms, domain.PlatformStat{
				Name:        p.Name,
				Code:        p.Code,
				Impressions: normalizeImpressions(p.Impressions),
			})
		}
		norm = append(norm, domain.CountryStat{
			Code:          s.Code,
			Name:          s.Name,
			FirstShownAt:  timefmt.ToISOUTC(s.FirstShownAt.String()),
			LastShownAt:   timefmt.ToISOUTC(s.LastShownAt.String()),
			Impressions:   normalizeImpressions(s.Impressions),
			PlatformStats: platforms,
		})
	}
	return norm
}

func normalizeImpressions(r *domain.RawImpressions) domain.Impressions {
	if r == nil {
		return domain.Impressions{LowerBound: "0", UpperBound: "0"}
	}
	return domain.Impressions{
		LowerBound: r.LowerBound.Or("0"),
		UpperBound: r.UpperBound.Or("0"),
	}
}

// flattenPlatforms builds one entry per (country, platform) pair from the
// nested country stats.
func flattenPlatforms(stats []domain.CountryStat) []domain.FlatPlatformStat {
	out := []domain.FlatPlatformStat{}
	for _, s := range stats {
		for _, p := range s.PlatformStats {
			out = append(out, domain.FlatPlatformStat{
				Country:     s.Name,
				CountryCode: s.Code,
				Name:        p.Name,
				Code:        p.Code,
				Impressions: p.Impressions,
			})
		}
	}
	return out
}

func distinctCountryNames(stats []domain.CountryStat) []string {
	seen := make(map[string]bool, len(stats))
	var names []string
	for _, s := range stats {
		if s.Name == "" || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		names = append(names, s.Name)
	}
	return names
}

// guessID derives a stable content-addressed identifier for records that
// carry none. The raw record is round-tripped through a generic JSON map so
// the digested form has sorted keys, making the hash independent of field
// order in the source data.
func guessID(raw domain.RawCreative) string {
	data, err := json.Marshal(raw)
	if err != nil {
		return "CR_000000000000"
	}
	var canonical map[string]any
	if err := json.Unmarshal(data, &canonical); err != nil {
		return "CR_000000000000"
	}
	data, err = json.Marshal(canonical)
	if err != nil {
		return "CR_000000000000"
	}
	sum := sha1.Sum(data)
	return "CR_" + hex.EncodeToString(sum[:])[:12]
}

func guessFormat(raw domain.RawCreative) string {
	for _, v := range raw.Variants {
		if v != nil && len(v.Images) > 0 {
			return "IMAGE"
		}
	}
	return "TEXT"
}

func firstImage(raw domain.RawCreative) string {
	for _, v := range raw.Variants {
		if v != nil && len(v.Images) > 0 {
			return v.Images[0]
		}
	}
	return ""
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
