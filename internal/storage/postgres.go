package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/transparency-scraper/internal/domain"
)

// RecordStore persists normalized records in PostgreSQL, keyed by creative
// id with upsert semantics. It is an optional sink next to the JSONL/CSV
// dataset writer.
type RecordStore struct {
	db *pgxpool.Pool
}

func NewRecordStore(db *pgxpool.Pool) *RecordStore {
	return &RecordStore{db: db}
}

// EnsureSchema creates the creatives table when it does not exist yet.
func (r *RecordStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS creatives (
			creative_id        TEXT PRIMARY KEY,
			advertiser_id      TEXT NOT NULL,
			advertiser_name    TEXT NOT NULL,
			format             TEXT NOT NULL,
			url                TEXT NOT NULL,
			preview_url        TEXT NOT NULL DEFAULT '',
			preview_store_key  TEXT NOT NULL DEFAULT '',
			first_shown_at     TEXT NOT NULL,
			last_shown_at      TEXT NOT NULL,
			impressions        TEXT NOT NULL,
			shown_countries    JSONB NOT NULL,
			country_stats      JSONB NOT NULL,
			platform_stats     JSONB NOT NULL,
			audience_selections JSONB NOT NULL,
			variants           JSONB NOT NULL,
			origin_url         TEXT NOT NULL,
			media_store_keys   JSONB NOT NULL,
			scraped_at         TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure creatives schema: %w", err)
	}
	return nil
}

// Save stores or updates a normalized record.
func (r *RecordStore) Save(ctx context.Context, rec domain.Record) error {
	shownCountries, err := json.Marshal(rec.ShownCountries)
	if err != nil {
		return err
	}
	countryStats, err := json.Marshal(rec.CountryStats)
	if err != nil {
		return err
	}
	platformStats, err := json.Marshal(rec.PlatformStats)
	if err != nil {
		return err
	}
	audience, err := json.Marshal(rec.AudienceSelections)
	if err != nil {
		return err
	}
	variants, err := json.Marshal(rec.Variants)
	if err != nil {
		return err
	}
	mediaKeys, err := json.Marshal(rec.MediaStoreKeys)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO creatives (
			creative_id, advertiser_id, advertiser_name, format, url,
			preview_url, preview_store_key, first_shown_at, last_shown_at,
			impressions, shown_countries, country_stats, platform_stats,
			audience_selections, variants, origin_url, media_store_keys, scraped_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (creative_id) DO UPDATE SET
			advertiser_id = EXCLUDED.advertiser_id,
			advertiser_name = EXCLUDED.advertiser_name,
			format = EXCLUDED.format,
			url = EXCLUDED.url,
			preview_url = EXCLUDED.preview_url,
			preview_store_key = EXCLUDED.preview_store_key,
			first_shown_at = EXCLUDED.first_shown_at,
			last_shown_at = EXCLUDED.last_shown_at,
			impressions = EXCLUDED.impressions,
			shown_countries = EXCLUDED.shown_countries,
			country_stats = EXCLUDED.country_stats,
			platform_stats = EXCLUDED.platform_stats,
			audience_selections = EXCLUDED.audience_selections,
			variants = EXCLUDED.variants,
			origin_url = EXCLUDED.origin_url,
			media_store_keys = EXCLUDED.media_store_keys,
			scraped_at = EXCLUDED.scraped_at;
	`
	_, err = r.db.Exec(ctx, query,
		rec.CreativeID,
		rec.AdvertiserID,
		rec.AdvertiserName,
		rec.Format,
		rec.URL,
		rec.PreviewURL,
		rec.PreviewStoreKey,
		rec.FirstShownAt,
		rec.LastShownAt,
		rec.Impressions,
		shownCountries,
		countryStats,
		platformStats,
		audience,
		variants,
		rec.OriginURL,
		mediaKeys,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.CreativeID, err)
	}
	return nil
}
