package client

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/user/transparency-scraper/internal/domain"
)

// The generator anchors timestamps to a fixed epoch instead of the wall
// clock so that a given (url, page) pair always yields byte-identical
// batches.
const (
	syntheticItemsPerPage = 20
	syntheticPageCount    = 5
	syntheticBaseEpoch    = 1700000000
	syntheticHost         = "adstransparency.google.com"
)

var (
	syntheticCountries = []string{"DE", "US", "GB", "FR", "ES", "IT", "NL", "SE"}

	syntheticCountryNames = map[string]string{
		"DE": "Germany",
		"US": "United States",
		"GB": "United Kingdom",
		"FR": "France",
		"ES": "Spain",
		"IT": "Italy",
		"NL": "Netherlands",
		"SE": "Sweden",
	}

	syntheticAdvertisers = []string{"Acme GmbH", "My Jewellery B.V", "Globex Corp", "Initech", "Umbrella SA"}
	syntheticFormats     = []string{"IMAGE", "TEXT", "VIDEO"}
	syntheticAdTexts     = []string{
		"Great offer on shoes",
		"Handykette mit Leopardenmuster",
		"Premium coffee subscription",
	}
	syntheticLowerBounds = []int{1000, 5000, 10000, 50000, 100000, 300000, 500000}
	syntheticBoundSpans  = []int{500, 1000, 5000, 10000, 100000}

	syntheticPreviewURL = "https://encrypted-tbn2.gstatic.com/shopping?q=tbn:ANd9GcQ"
)

// syntheticPayload builds a reproducible batch of creatives. The PRNG is a
// local instance seeded from (url, page); no global rand state is touched.
func syntheticPayload(url string, page int) *domain.StructuredPayload {
	rng := rand.New(rand.NewSource(pageSeed(url, page)))

	items := make([]domain.RawCreative, 0, syntheticItemsPerPage)
	for i := 0; i < syntheticItemsPerPage; i++ {
		creativeID := fmt.Sprintf("CR%02d%02d%d%d",
			page, i, 10+rng.Intn(90), 100000+rng.Intn(900000))

		lower := syntheticLowerBounds[rng.Intn(len(syntheticLowerBounds))]
		upper := lower + syntheticBoundSpans[rng.Intn(len(syntheticBoundSpans))]

		first := syntheticBaseEpoch - rng.Int63n(60*60*24*365)
		last := first + rng.Int63n(60*60*24*200)

		country := syntheticCountries[rng.Intn(len(syntheticCountries))]
		countryName := syntheticCountryNames[country]

		items = append(items, domain.RawCreative{
			ID:             creativeID,
			CreativeID:     creativeID,
			AdvertiserID:   fmt.Sprintf("AR%019d", 1000000000000000000+rng.Int63n(9000000000000000000-1000000000000000000)),
			AdvertiserName: syntheticAdvertisers[rng.Intn(len(syntheticAdvertisers))],
			Format:         syntheticFormats[rng.Intn(len(syntheticFormats))],
			URL: fmt.Sprintf("https://%s/advertiser/AR123/creative/%s?region=%s",
				syntheticHost, creativeID, country),
			PreviewURL:     syntheticPreviewURL,
			FirstShownAt:   domain.FlexString(fmt.Sprintf("%d", first)),
			LastShownAt:    domain.FlexString(fmt.Sprintf("%d", last)),
			Impressions:    domain.FlexString(fmt.Sprintf("%d", upper)),
			ShownCountries: []string{countryName},
			CountryStats: []domain.RawCountryStat{
				{
					Code:         country,
					Name:         countryName,
					FirstShownAt: domain.FlexString(fmt.Sprintf("%d", first)),
					LastShownAt:  domain.FlexString(fmt.Sprintf("%d", last)),
					Impressions: &domain.RawImpressions{
						LowerBound: domain.FlexString(fmt.Sprintf("%d", lower)),
						UpperBound: domain.FlexString(fmt.Sprintf("%d", upper)),
					},
					PlatformStats: []domain.RawPlatformStat{
						{Name: "YouTube", Code: "YOUTUBE", Impressions: &domain.RawImpressions{LowerBound: "1000", UpperBound: "2000"}},
						{Name: "Google Shopping", Code: "SHOPPING", Impressions: &domain.RawImpressions{LowerBound: "500", UpperBound: "1200"}},
						{Name: "Google Search", Code: "SEARCH", Impressions: &domain.RawImpressions{LowerBound: "2000", UpperBound: "5000"}},
					},
				},
			},
			AudienceSelections: []domain.AudienceSelection{
				{Name: "Demographic info", HasIncludedCriteria: true, HasExcludedCriteria: false},
				{Name: "Geographic locations", HasIncludedCriteria: true, HasExcludedCriteria: true},
				{Name: "Contextual signals", HasIncludedCriteria: true, HasExcludedCriteria: true},
			},
			Variants: []*domain.Variant{
				{
					TextContent:    syntheticAdTexts[rng.Intn(len(syntheticAdTexts))],
					Images:         []string{syntheticPreviewURL},
					ImageStoreKeys: []string{},
				},
			},
			OriginURL: url,
		})
	}

	return &domain.StructuredPayload{
		Items:   items,
		Page:    page,
		HasNext: page < syntheticPageCount,
	}
}

func pageSeed(url string, page int) int64 {
	h := fnv.New64a()
	h.Write([]byte(url))
	fmt.Fprintf(h, "|%d", page)
	return int64(h.Sum64())
}
