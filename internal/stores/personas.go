// internal/stores/personas.go
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

var ErrPersonaFetchFailed = errors.New("PERSONA_FETCH_FAILED")

const personaCacheTTL = 5 * time.Minute

// PersonaStore reads audience persona records by id.
type PersonaStore interface {
	GetPersonas(ctx context.Context, ids []string) ([]models.Persona, error)
}

// PostgresPersonaStore backs PersonaStore with the personas table and a
// cache-aside redis layer. Cache errors are invisible to callers; the
// database is the source of truth.
type PostgresPersonaStore struct {
	db     *sql.DB
	cache  *redis.Client
	logger logger.Logger
}

func NewPostgresPersonaStore(db *sql.DB, cache *redis.Client, log logger.Logger) *PostgresPersonaStore {
	return &PostgresPersonaStore{
		db:     db,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"store": "personas"}),
	}
}

// GetPersonas returns the personas found for the given ids, in input order.
// Missing ids are dropped silently; callers treat absent personas the same
// as absent entities.
func (s *PostgresPersonaStore) GetPersonas(ctx context.Context, ids []string) ([]models.Persona, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found := make(map[string]models.Persona, len(ids))
	var misses []string

	for _, id := range ids {
		if persona, ok := s.cached(ctx, id); ok {
			found[id] = persona
		} else {
			misses = append(misses, id)
		}
	}

	if len(misses) > 0 {
		query := `SELECT id, name, communication_style, buyer_journey_stage, pain_points, goals, content_preference
			FROM personas WHERE id = ANY($1)`
		rows, err := s.db.QueryContext(ctx, query, pq.Array(misses))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersonaFetchFailed, err)
		}
		defer rows.Close()

		for rows.Next() {
			var p models.Persona
			var contentPreference sql.NullString
			if err := rows.Scan(&p.ID, &p.Name, &p.CommunicationStyle, &p.BuyerJourneyStage,
				pq.Array(&p.PainPoints), pq.Array(&p.Goals), &contentPreference); err != nil {
				return nil, fmt.Errorf("%w: scan: %v", ErrPersonaFetchFailed, err)
			}
			p.ContentPreference = contentPreference.String
			found[p.ID] = p
			s.store(ctx, p)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersonaFetchFailed, err)
		}
	}

	personas := make([]models.Persona, 0, len(found))
	for _, id := range ids {
		if persona, ok := found[id]; ok {
			personas = append(personas, persona)
		}
	}
	return personas, nil
}

func (s *PostgresPersonaStore) cached(ctx context.Context, id string) (models.Persona, bool) {
	if s.cache == nil {
		return models.Persona{}, false
	}
	val, err := s.cache.Get(ctx, personaCacheKey(id)).Result()
	if err != nil {
		return models.Persona{}, false
	}
	var persona models.Persona
	if err := json.Unmarshal([]byte(val), &persona); err != nil {
		return models.Persona{}, false
	}
	return persona, true
}

func (s *PostgresPersonaStore) store(ctx context.Context, persona models.Persona) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(persona)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, personaCacheKey(persona.ID), raw, personaCacheTTL).Err(); err != nil {
		s.logger.Debug("persona cache write failed", map[string]interface{}{
			"personaId": persona.ID,
			"error":     err.Error(),
		})
	}
}

func personaCacheKey(id string) string {
	return "persona:" + id
}
