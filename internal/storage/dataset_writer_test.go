package storage

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/transparency-scraper/internal/domain"
)

func sampleRecord(id string) domain.Record {
	return domain.Record{
		ID:             id,
		AdvertiserID:   "AR1",
		CreativeID:     id,
		AdvertiserName: "Acme GmbH",
		Format:         "IMAGE",
		URL:            "https://example.com/ad",
		FirstShownAt:   "1700000000",
		LastShownAt:    "1700000100",
		Impressions:    "5000",
		ShownCountries: []string{"Germany"},
		CountryStats: []domain.CountryStat{
			{
				Code:         "DE",
				Name:         "Germany",
				FirstShownAt: "2023-11-14T22:13:20.000Z",
				LastShownAt:  "2023-11-14T22:15:00.000Z",
				Impressions:  domain.Impressions{LowerBound: "1000", UpperBound: "5000"},
				PlatformStats: []domain.PlatformStat{
					{Name: "YouTube", Code: "YOUTUBE", Impressions: domain.Impressions{LowerBound: "100", UpperBound: "200"}},
				},
			},
		},
		PlatformStats:      []domain.FlatPlatformStat{},
		AudienceSelections: []domain.AudienceSelection{},
		Variants:           []*domain.Variant{{TextContent: "ad copy", Images: []string{}, ImageStoreKeys: []string{}}},
		OriginURL:          "https://example.com",
		MediaStoreKeys:     []string{},
	}
}

func TestDatasetWriter(t *testing.T) {
	dir := t.TempDir()
	jsonlPath := filepath.Join(dir, "out.jsonl")
	csvPath := filepath.Join(dir, "out.csv")

	w, err := NewDatasetWriter(jsonlPath, csvPath)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleRecord("CR1")))
	require.NoError(t, w.Write(sampleRecord("CR2")))
	require.NoError(t, w.Close())

	jsonl, err := os.ReadFile(jsonlPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(jsonl)), "\n")
	require.Len(t, lines, 2)

	var rec domain.Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "CR1", rec.ID)
	require.Equal(t, "Germany", rec.CountryStats[0].Name)

	csvFile, err := os.Open(csvPath)
	require.NoError(t, err)
	defer csvFile.Close()

	rows, err := csv.NewReader(csvFile).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, recordColumns, rows[0])

	// Every data row serializes under the header's column set.
	require.Len(t, rows[1], len(recordColumns))
	require.Len(t, rows[2], len(recordColumns))
	require.Equal(t, "CR1", rows[1][0])
	require.Equal(t, "CR2", rows[2][0])

	// Nested fields land as JSON strings inside their cell.
	colIdx := map[string]int{}
	for i, col := range rows[0] {
		colIdx[col] = i
	}
	var stats []domain.CountryStat
	require.NoError(t, json.Unmarshal([]byte(rows[1][colIdx["countryStats"]]), &stats))
	require.Equal(t, "DE", stats[0].Code)
	require.Equal(t, "5000", rows[1][colIdx["impressions"]])
}
