// internal/stores/facts.go
package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/models"
)

var (
	ErrKnowledgeFetchFailed = errors.New("KNOWLEDGE_FETCH_FAILED")
	ErrKnowledgeTimeout     = errors.New("KNOWLEDGE_TIMEOUT")
)

const (
	defaultMinConfidence = 0.5
	defaultFetchLimit    = 50
	maxFetchLimit        = 200
)

// FetchOptions narrow a knowledge entity query. Zero values take the store
// defaults: minimum confidence 0.5, limit 50 (capped at 200).
type FetchOptions struct {
	Types         []models.EntityType
	MinConfidence float64
	Limit         int
}

// FactStore reads knowledge entities for a workspace. Entities are owned by
// the extraction pipeline; this interface is read-only.
type FactStore interface {
	FetchEntities(ctx context.Context, workspaceID string, opts FetchOptions) ([]models.KnowledgeEntity, error)
}

// ElasticFactStore backs FactStore with the workspace-partitioned knowledge
// entity index.
type ElasticFactStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticFactStore(client *elasticsearch.Client, index string, log logger.Logger) *ElasticFactStore {
	return &ElasticFactStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"store": "facts"}),
	}
}

// FetchEntities returns the workspace's entities filtered by type and
// minimum confidence, ordered by confidence descending. Malformed hits are
// skipped, not fatal.
func (s *ElasticFactStore) FetchEntities(ctx context.Context, workspaceID string, opts FetchOptions) ([]models.KnowledgeEntity, error) {
	if workspaceID == "" {
		return nil, fmt.Errorf("%w: workspace id is required", ErrKnowledgeFetchFailed)
	}

	minConfidence := opts.MinConfidence
	if minConfidence == 0 {
		minConfidence = defaultMinConfidence
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	if limit > maxFetchLimit {
		limit = maxFetchLimit
	}

	body, _ := json.Marshal(buildEntityQuery(workspaceID, opts.Types, minConfidence))

	size := limit
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrKnowledgeTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrKnowledgeFetchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search returned %s", ErrKnowledgeFetchFailed, res.Status())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrKnowledgeFetchFailed, err)
	}

	entities := make([]models.KnowledgeEntity, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var entity models.KnowledgeEntity
		if err := json.Unmarshal(hit.Source, &entity); err != nil {
			s.logger.Warn("skipping malformed knowledge entity", map[string]interface{}{
				"documentId": hit.ID,
				"error":      err.Error(),
			})
			continue
		}
		if entity.ID == "" {
			entity.ID = hit.ID
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

func buildEntityQuery(workspaceID string, types []models.EntityType, minConfidence float64) map[string]interface{} {
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"workspace_id": workspaceID},
		},
		map[string]interface{}{
			"range": map[string]interface{}{
				"confidence": map[string]interface{}{"gte": minConfidence},
			},
		},
	}

	if len(types) > 0 {
		typeStrings := make([]string, len(types))
		for i, t := range types {
			typeStrings[i] = string(t)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"entityType": typeStrings},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filterClauses,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"confidence": map[string]interface{}{"order": "desc"}},
		},
	}
}
