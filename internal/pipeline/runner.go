// Package pipeline wires the scrape stages together: paginate, extract,
// normalize, capture media, persist.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/domain"
	"github.com/user/transparency-scraper/internal/extractor"
	"github.com/user/transparency-scraper/internal/monitoring"
	"github.com/user/transparency-scraper/internal/normalize"
	"github.com/user/transparency-scraper/internal/paginate"
)

const seenExpiry = 48 * time.Hour

// MediaCapturer downloads a record's media and mutates its store keys. It
// returns the stored keys and the number of failed download attempts.
type MediaCapturer interface {
	CaptureMedia(ctx context.Context, rec *domain.Record) ([]string, int)
}

// RecordWriter appends a record to the run's dataset output.
type RecordWriter interface {
	Write(rec domain.Record) error
}

// RecordSink is an optional secondary store for normalized records.
type RecordSink interface {
	Save(ctx context.Context, rec domain.Record) error
}

// SeenTracker is an optional cross-run deduplication store.
type SeenTracker interface {
	IsSeen(ctx context.Context, creativeID string) (bool, error)
	MarkSeen(ctx context.Context, creativeID string, expiry time.Duration) error
}

// Runner executes one scrape run. Pages are processed strictly one at a
// time; memory stays bounded to a single page's worth of records.
type Runner struct {
	paginator  *paginate.Paginator
	extractor  *extractor.Extractor
	normalizer *normalize.Normalizer
	writer     RecordWriter
	media      MediaCapturer // nil disables media capture
	sink       RecordSink    // nil disables the secondary store
	seen       SeenTracker   // nil disables deduplication
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	maxItems   int
}

type Options struct {
	Paginator  *paginate.Paginator
	Extractor  *extractor.Extractor
	Normalizer *normalize.Normalizer
	Writer     RecordWriter
	Media      MediaCapturer
	Sink       RecordSink
	Seen       SeenTracker
	Metrics    *monitoring.Metrics
	Logger     *zap.Logger
	MaxItems   int
}

func NewRunner(opts Options) *Runner {
	return &Runner{
		paginator:  opts.Paginator,
		extractor:  opts.Extractor,
		normalizer: opts.Normalizer,
		writer:     opts.Writer,
		media:      opts.Media,
		sink:       opts.Sink,
		seen:       opts.Seen,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		maxItems:   opts.MaxItems,
	}
}

// Run drives the pipeline until the item budget is met or the paginator is
// exhausted. It returns the number of records written.
func (r *Runner) Run(ctx context.Context) (int, error) {
	total := 0
	page := 0

	for {
		start := time.Now()
		doc, ok := r.paginator.Next(ctx)
		if !ok {
			break
		}
		page++
		if r.metrics != nil {
			r.metrics.PagesFetched.WithLabelValues(string(doc.Mode)).Inc()
			r.metrics.PageFetchDuration.Observe(time.Since(start).Seconds())
		}

		raws := r.extractor.Creatives(doc)
		r.logger.Debug("page processed", zap.Int("page", page), zap.Int("raw_creatives", len(raws)))
		if doc.Mode == domain.ModeRawMarkup {
			r.paginator.CountItems(len(raws))
		}

		for _, raw := range raws {
			rec := r.normalizer.NormalizeRecord(raw)

			if r.isDuplicate(ctx, rec.CreativeID) {
				r.logger.Debug("skipping already-seen creative", zap.String("id", rec.CreativeID))
				continue
			}

			if r.media != nil {
				keys, failed := r.media.CaptureMedia(ctx, &rec)
				if len(keys) > 0 {
					rec.MediaStoreKeys = keys
				}
				if r.metrics != nil {
					r.metrics.MediaDownloads.WithLabelValues("stored").Add(float64(len(keys)))
					r.metrics.MediaDownloads.WithLabelValues("failed").Add(float64(failed))
				}
			}

			if err := r.writer.Write(rec); err != nil {
				return total, err
			}
			if r.sink != nil {
				if err := r.sink.Save(ctx, rec); err != nil {
					// The dataset files remain the source of truth; a sink
					// failure does not abort the run.
					r.logger.Warn("record sink save failed", zap.String("id", rec.CreativeID), zap.Error(err))
				}
			}
			r.markSeen(ctx, rec.CreativeID)
			if r.metrics != nil {
				r.metrics.RecordsWritten.Inc()
			}

			total++
			if total >= r.maxItems {
				return total, nil
			}
		}
	}
	return total, nil
}

func (r *Runner) isDuplicate(ctx context.Context, creativeID string) bool {
	if r.seen == nil {
		return false
	}
	seen, err := r.seen.IsSeen(ctx, creativeID)
	if err != nil {
		r.logger.Warn("seen-store lookup failed", zap.String("id", creativeID), zap.Error(err))
		return false
	}
	return seen
}

func (r *Runner) markSeen(ctx context.Context, creativeID string) {
	if r.seen == nil {
		return
	}
	if err := r.seen.MarkSeen(ctx, creativeID, seenExpiry); err != nil {
		r.logger.Warn("seen-store mark failed", zap.String("id", creativeID), zap.Error(err))
	}
}
