// Package monitoring exposes Prometheus metrics and the health endpoint for
// long scrape runs.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scraper.
type Metrics struct {
	PagesFetched       *prometheus.CounterVec
	CreativesExtracted *prometheus.CounterVec
	RecordsWritten     prometheus.Counter
	MediaDownloads     *prometheus.CounterVec
	PageFetchDuration  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "The total number of page documents fetched, by encoding mode.",
		}, []string{"mode"}),
		CreativesExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_creatives_extracted_total",
			Help: "The total number of raw creatives extracted, by discovery source.",
		}, []string{"source"}), // 'structured', 'embedded', 'fallback'
		RecordsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "scraper_records_written_total",
			Help: "The total number of normalized records written to the dataset.",
		}),
		MediaDownloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_media_downloads_total",
			Help: "The total number of media capture attempts, by outcome.",
		}, []string{"status"}), // 'stored', 'failed'
		PageFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_page_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
	}
}
