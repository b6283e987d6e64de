// internal/stores/brand.go
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/models"
)

var ErrBrandFetchFailed = errors.New("BRAND_FETCH_FAILED")

const brandCacheTTL = 30 * time.Minute

// BrandStore reads a workspace's brand voice record.
type BrandStore interface {
	GetBrandVoice(ctx context.Context, id string) (*models.BrandVoice, error)
}

// PostgresBrandStore backs BrandStore with the brand_voices table and a
// cache-aside redis layer. Brand records change rarely, so the TTL is long.
type PostgresBrandStore struct {
	db     *sql.DB
	cache  *redis.Client
	logger logger.Logger
}

func NewPostgresBrandStore(db *sql.DB, cache *redis.Client, log logger.Logger) *PostgresBrandStore {
	return &PostgresBrandStore{
		db:     db,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"store": "brand"}),
	}
}

// GetBrandVoice returns the brand voice, or (nil, nil) when none exists:
// absence is a normal state for young workspaces, not an error.
func (s *PostgresBrandStore) GetBrandVoice(ctx context.Context, id string) (*models.BrandVoice, error) {
	if id == "" {
		return nil, nil
	}

	if brand, ok := s.cached(ctx, id); ok {
		return brand, nil
	}

	var brand models.BrandVoice
	var targetAudience sql.NullString
	query := `SELECT id, tone, personality, keywords, avoid_words, target_audience
		FROM brand_voices WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&brand.ID, &brand.Tone,
		pq.Array(&brand.Personality), pq.Array(&brand.Keywords), pq.Array(&brand.AvoidWords), &targetAudience)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBrandFetchFailed, err)
	}
	brand.TargetAudience = targetAudience.String

	s.store(ctx, &brand)
	return &brand, nil
}

func (s *PostgresBrandStore) cached(ctx context.Context, id string) (*models.BrandVoice, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, brandCacheKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var brand models.BrandVoice
	if err := json.Unmarshal([]byte(val), &brand); err != nil {
		return nil, false
	}
	return &brand, true
}

func (s *PostgresBrandStore) store(ctx context.Context, brand *models.BrandVoice) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(brand)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, brandCacheKey(brand.ID), raw, brandCacheTTL).Err(); err != nil {
		s.logger.Debug("brand cache write failed", map[string]interface{}{
			"brandId": brand.ID,
			"error":   err.Error(),
		})
	}
}

func brandCacheKey(id string) string {
	return "brand:" + id
}
