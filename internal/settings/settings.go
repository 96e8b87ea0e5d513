// Package settings is the site configuration service: key/value rows in
// Postgres read through a cache with explicit invalidation, instead of
// ambient global state.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/database"
)

// cache key pattern: setting:{key}
const keySetting = "setting:%s"

const (
	KeySiteTitle       = "site_title"
	KeyTheme           = "theme"
	KeyAnnouncementBar = "announcement_bar"
	KeyTaxRate         = "tax_rate"
	KeyCurrency        = "currency"
)

type Service struct {
	DB    *sql.DB
	Cache Cache
	TTL   time.Duration
}

func NewService(db *sql.DB, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{DB: db, Cache: cache, TTL: ttl}
}

// Get reads a setting through the cache. Cache failures fall through to
// the database; a missing row is ErrSettingNotFound.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	cacheKey := fmt.Sprintf(keySetting, key)

	if s.Cache != nil {
		if value, ok, err := s.Cache.Get(ctx, cacheKey); err == nil && ok {
			return value, nil
		}
	}

	var value string
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", database.ErrSettingNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}

	if s.Cache != nil {
		_ = s.Cache.Set(ctx, cacheKey, value, s.TTL)
	}

	return value, nil
}

func (s *Service) GetDefault(ctx context.Context, key, defaultValue string) string {
	value, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	return value
}

// Put upserts a setting and invalidates its cache entry so the next read
// observes the new value.
func (s *Service) Put(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("put setting: %w", err)
	}

	return s.Invalidate(ctx, key)
}

func (s *Service) Invalidate(ctx context.Context, key string) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Del(ctx, fmt.Sprintf(keySetting, key))
}

// TaxRate parses the tax_rate setting; absent or malformed means zero.
func (s *Service) TaxRate(ctx context.Context) decimal.Decimal {
	raw := s.GetDefault(ctx, KeyTaxRate, "0")
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}
