// Package storage persists normalized records and downloaded media.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/user/transparency-scraper/internal/domain"
)

// recordColumns is the CSV column set, fixed by the first written record.
// The order mirrors the record's JSON field order.
var recordColumns = []string{
	"id", "advertiserId", "creativeId", "advertiserName", "format",
	"url", "previewUrl", "previewStoreKey", "firstShownAt", "lastShownAt",
	"impressions", "shownCountries", "countryStats", "platformStats",
	"audienceSelections", "variants", "originUrl", "mediaStoreKeys",
}

// DatasetWriter appends each record to a JSONL file and a flattened CSV
// (nested fields serialized as JSON strings in their cells).
type DatasetWriter struct {
	JSONLPath string
	CSVPath   string

	jsonlFile   *os.File
	csvFile     *os.File
	csvWriter   *csv.Writer
	wroteHeader bool
}

func NewDatasetWriter(jsonlPath, csvPath string) (*DatasetWriter, error) {
	jsonlFile, err := os.Create(jsonlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSONL output: %w", err)
	}
	csvFile, err := os.Create(csvPath)
	if err != nil {
		jsonlFile.Close()
		return nil, fmt.Errorf("failed to create CSV output: %w", err)
	}
	return &DatasetWriter{
		JSONLPath: jsonlPath,
		CSVPath:   csvPath,
		jsonlFile: jsonlFile,
		csvFile:   csvFile,
		csvWriter: csv.NewWriter(csvFile),
	}, nil
}

// Write appends one JSONL line and one CSV row for the record. The CSV
// header is emitted on the first call; every subsequent record serializes
// under the same column set.
func (w *DatasetWriter) Write(rec domain.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize record %s: %w", rec.ID, err)
	}
	if _, err := w.jsonlFile.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append JSONL line: %w", err)
	}

	if !w.wroteHeader {
		if err := w.csvWriter.Write(recordColumns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		w.wroteHeader = true
	}

	row, err := flattenRecord(line)
	if err != nil {
		return err
	}
	if err := w.csvWriter.Write(row); err != nil {
		return fmt.Errorf("failed to append CSV row: %w", err)
	}
	return nil
}

// Close flushes and closes both sinks.
func (w *DatasetWriter) Close() error {
	w.csvWriter.Flush()
	jsonlErr := w.jsonlFile.Close()
	if err := w.csvWriter.Error(); err != nil {
		w.csvFile.Close()
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	if err := w.csvFile.Close(); err != nil {
		return err
	}
	return jsonlErr
}

// flattenRecord builds the CSV row from the record's serialized form:
// scalar fields keep their plain value, nested fields stay JSON-encoded.
func flattenRecord(line []byte) ([]string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten record: %w", err)
	}

	row := make([]string, 0, len(recordColumns))
	for _, col := range recordColumns {
		raw, ok := fields[col]
		if !ok {
			row = append(row, "")
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			row = append(row, s)
			continue
		}
		row = append(row, string(raw))
	}
	return row, nil
}
