package domain

// PageMode tags how a page document's payload is encoded.
type PageMode string

const (
	// ModeStructured means the payload is an already-decoded creative batch.
	ModeStructured PageMode = "structured"
	// ModeRawMarkup means the payload is raw page markup that still needs scraping.
	ModeRawMarkup PageMode = "raw_markup"
)

// PageDocument is one fetched page, tagged by encoding mode. Exactly one of
// Payload (structured) or Markup (raw_markup) is populated.
type PageDocument struct {
	Mode    PageMode
	Payload *StructuredPayload
	Markup  string
}

// StructuredPayload is a creative batch that self-reports pagination state.
type StructuredPayload struct {
	Items   []RawCreative `json:"items"`
	Page    int           `json:"page"`
	HasNext bool          `json:"hasNext"`
}

// RawCreative is a creative record as found in the wild. No field is
// guaranteed present; fallback-derived records carry almost nothing.
type RawCreative struct {
	ID                 string              `json:"id,omitempty"`
	CreativeID         string              `json:"creativeId,omitempty"`
	AdvertiserID       string              `json:"advertiserId,omitempty"`
	AdvertiserName     string              `json:"advertiserName,omitempty"`
	Format             string              `json:"format,omitempty"`
	URL                string              `json:"url,omitempty"`
	PreviewURL         string              `json:"previewUrl,omitempty"`
	FirstShownAt       FlexString          `json:"firstShownAt,omitempty"`
	LastShownAt        FlexString          `json:"lastShownAt,omitempty"`
	Impressions        FlexString          `json:"impressions,omitempty"`
	ShownCountries     []string            `json:"shownCountries,omitempty"`
	CountryStats       []RawCountryStat    `json:"countryStats,omitempty"`
	AudienceSelections []AudienceSelection `json:"audienceSelections,omitempty"`
	Variants           []*Variant          `json:"variants,omitempty"`
	OriginURL          string              `json:"originUrl,omitempty"`
}

// RawCountryStat is per-country exposure data as found on the page.
type RawCountryStat struct {
	Code          string            `json:"code,omitempty"`
	Name          string            `json:"name,omitempty"`
	FirstShownAt  FlexString        `json:"firstShownAt,omitempty"`
	LastShownAt   FlexString        `json:"lastShownAt,omitempty"`
	Impressions   *RawImpressions   `json:"impressions,omitempty"`
	PlatformStats []RawPlatformStat `json:"platformStats,omitempty"`
}

// RawPlatformStat is per-platform exposure data nested inside a country stat.
type RawPlatformStat struct {
	Name        string          `json:"name,omitempty"`
	Code        string          `json:"code,omitempty"`
	Impressions *RawImpressions `json:"impressions,omitempty"`
}

// RawImpressions is an impression range whose bounds may arrive as numbers
// or strings.
type RawImpressions struct {
	LowerBound FlexString `json:"lowerBound,omitempty"`
	UpperBound FlexString `json:"upperBound,omitempty"`
}

// AudienceSelection describes one targeting dimension of a creative.
type AudienceSelection struct {
	Name                string `json:"name"`
	HasIncludedCriteria bool   `json:"hasIncludedCriteria"`
	HasExcludedCriteria bool   `json:"hasExcludedCriteria"`
}

// Variant is one rendering of a creative. MediaStore appends ImageStoreKeys
// in place after downloading.
type Variant struct {
	TextContent    string   `json:"textContent"`
	Images         []string `json:"images"`
	ImageStoreKeys []string `json:"imageStoreKeys"`
}

// Record is the canonical normalized creative. Every field is always present
// and every numeric/time field is a string.
type Record struct {
	ID                 string              `json:"id"`
	AdvertiserID       string              `json:"advertiserId"`
	CreativeID         string              `json:"creativeId"`
	AdvertiserName     string              `json:"advertiserName"`
	Format             string              `json:"format"`
	URL                string              `json:"url"`
	PreviewURL         string              `json:"previewUrl"`
	PreviewStoreKey    string              `json:"previewStoreKey"`
	FirstShownAt       string              `json:"firstShownAt"`
	LastShownAt        string              `json:"lastShownAt"`
	Impressions        string              `json:"impressions"`
	ShownCountries     []string            `json:"shownCountries"`
	CountryStats       []CountryStat       `json:"countryStats"`
	PlatformStats      []FlatPlatformStat  `json:"platformStats"`
	AudienceSelections []AudienceSelection `json:"audienceSelections"`
	Variants           []*Variant          `json:"variants"`
	OriginURL          string              `json:"originUrl"`
	MediaStoreKeys     []string            `json:"mediaStoreKeys"`
}

// CountryStat is the normalized per-country exposure entry. Timestamps are
// ISO-8601 UTC; impression bounds are strings.
type CountryStat struct {
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	FirstShownAt  string         `json:"firstShownAt"`
	LastShownAt   string         `json:"lastShownAt"`
	Impressions   Impressions    `json:"impressions"`
	PlatformStats []PlatformStat `json:"platformStats"`
}

// PlatformStat is the normalized per-platform entry nested in a CountryStat.
type PlatformStat struct {
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Impressions Impressions `json:"impressions"`
}

// FlatPlatformStat is a (country, platform) pair in the record's top-level
// flattened platform list.
type FlatPlatformStat struct {
	Country     string      `json:"country"`
	CountryCode string      `json:"countryCode"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Impressions Impressions `json:"impressions"`
}

// Impressions is a normalized impression range with stringified bounds.
type Impressions struct {
	LowerBound string `json:"lowerBound"`
	UpperBound string `json:"upperBound"`
}
