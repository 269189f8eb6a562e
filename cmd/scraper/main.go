package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/transparency-scraper/internal/client"
	"github.com/user/transparency-scraper/internal/config"
	"github.com/user/transparency-scraper/internal/extractor"
	"github.com/user/transparency-scraper/internal/monitoring"
	"github.com/user/transparency-scraper/internal/normalize"
	"github.com/user/transparency-scraper/internal/paginate"
	"github.com/user/transparency-scraper/internal/pipeline"
	"github.com/user/transparency-scraper/internal/storage"
	"github.com/user/transparency-scraper/internal/timefmt"
)

var (
	flagInput       string
	flagSettings    string
	flagOutJSONL    string
	flagOutCSV      string
	flagMediaDir    string
	flagRealHTTP    bool
	flagLogLevel    string
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "Scrape an ad-transparency source into normalized JSONL/CSV datasets",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          run,
}

func init() {
	stamp := outputStamp()
	rootCmd.Flags().StringVar(&flagInput, "input", "data/sample_input.json",
		"Path to input JSON containing originUrl / maxItems / downloadMedia flags")
	rootCmd.Flags().StringVar(&flagSettings, "settings", "config/settings.json",
		"Path to settings JSON (cookiesFile, proxy, userAgent, mock)")
	rootCmd.Flags().StringVar(&flagOutJSONL, "out-jsonl", fmt.Sprintf("ads_%s.jsonl", stamp),
		"Output JSON Lines file path")
	rootCmd.Flags().StringVar(&flagOutCSV, "out-csv", fmt.Sprintf("ads_%s.csv", stamp),
		"Output CSV file path")
	rootCmd.Flags().StringVar(&flagMediaDir, "media-dir", "media",
		"Directory to store downloaded media if enabled")
	rootCmd.Flags().BoolVar(&flagRealHTTP, "real-http", false,
		"Force real HTTP mode even if settings.mock=true")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info",
		"Logging verbosity (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "",
		"Optional listen address for the health/metrics endpoint, e.g. :9090")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := buildLogger(flagLogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	input, err := config.LoadInput(flagInput)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(flagSettings)
	if err != nil {
		return err
	}

	var cookies map[string]string
	if settings.CookiesFile != "" {
		cookies, err = config.LoadCookies(settings.CookiesFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("cookiesFile not found, continuing without cookies",
					zap.String("path", settings.CookiesFile))
			} else {
				return err
			}
		}
	}

	mock := settings.Mock && !flagRealHTTP
	logger.Info("starting scrape",
		zap.String("origin_url", input.OriginURL),
		zap.Int("max_items", input.MaxItems),
		zap.Bool("download_media", input.DownloadMedia),
		zap.Bool("mock", mock))

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	if flagMetricsAddr != "" {
		monitoring.Serve(flagMetricsAddr, logger)
	}

	source := client.New(client.Settings{
		UserAgent: settings.UserAgent,
		Cookies:   cookies,
		ProxyURL:  settings.Proxy,
		Mock:      mock,
		Timeout:   time.Duration(settings.TimeoutSec) * time.Second,
	}, logger)

	writer, err := storage.NewDatasetWriter(flagOutJSONL, flagOutCSV)
	if err != nil {
		return err
	}

	var media pipeline.MediaCapturer
	if input.DownloadMedia {
		store, err := storage.NewMediaStore(flagMediaDir, logger)
		if err != nil {
			return err
		}
		media = store
	}

	ctx := context.Background()

	var sink pipeline.RecordSink
	if settings.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, settings.PostgresURL)
		if err != nil {
			return fmt.Errorf("unable to connect to postgres: %w", err)
		}
		defer pool.Close()
		recordStore := storage.NewRecordStore(pool)
		if err := recordStore.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = recordStore
		logger.Info("postgres sink enabled")
	}

	var seen pipeline.SeenTracker
	if settings.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("unable to connect to redis: %w", err)
		}
		seen = storage.NewSeenStore(rdb)
		logger.Info("redis seen-store enabled")
	}

	runner := pipeline.NewRunner(pipeline.Options{
		Paginator:  paginate.New(source, input.OriginURL, input.MaxItems, logger),
		Extractor:  extractor.New(logger, metrics),
		Normalizer: normalize.New(input.OriginURL, logger),
		Writer:     writer,
		Media:      media,
		Sink:       sink,
		Seen:       seen,
		Metrics:    metrics,
		Logger:     logger,
		MaxItems:   input.MaxItems,
	})

	total, runErr := runner.Run(ctx)
	if err := writer.Close(); err != nil {
		logger.Warn("failed to close dataset writer", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("finished",
		zap.Int("records", total),
		zap.String("jsonl", writer.JSONLPath),
		zap.String("csv", writer.CSVPath))
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	parsed, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = parsed
	return cfg.Build()
}

// outputStamp renders the current UTC time in a filename-safe form.
func outputStamp() string {
	stamp := timefmt.UTCNowISO()
	stamp = strings.ReplaceAll(stamp, ":", "")
	return strings.ReplaceAll(stamp, "-", "")
}
