// internal/stores/facts_test.go
package stores

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/models"
)

func newFakeElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	// The v8 client verifies the product header before trusting a response.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func esHit(id string, source map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"_id": id, "_source": source}
}

func esResponse(hits ...map[string]interface{}) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"hits": map[string]interface{}{"hits": hits},
	})
	return body
}

func TestFetchEntities_QueryShape(t *testing.T) {
	var gotBody map[string]interface{}
	var gotPath string

	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write(esResponse(
			esHit("e1", map[string]interface{}{"id": "e1", "entityType": "feature", "name": "Editor", "confidence": 0.9}),
		))
	})

	store := NewElasticFactStore(client, "knowledge-entities", logger.NewNoOpLogger())
	entities, err := store.FetchEntities(context.Background(), "ws-1", FetchOptions{
		Types:         []models.EntityType{models.EntityFeature, models.EntityBenefit},
		MinConfidence: 0.7,
		Limit:         20,
	})

	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Editor", entities[0].Name)

	assert.Equal(t, "/knowledge-entities/_search", gotPath)

	raw, _ := json.Marshal(gotBody)
	body := string(raw)
	assert.Contains(t, body, `"workspace_id":"ws-1"`)
	assert.Contains(t, body, `"gte":0.7`)
	assert.Contains(t, body, `"entityType":["feature","benefit"]`)
	assert.Contains(t, body, `"confidence":{"order":"desc"}`)
}

func TestFetchEntities_Defaults(t *testing.T) {
	var gotBody map[string]interface{}
	var gotSize string

	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotSize = r.URL.Query().Get("size")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write(esResponse())
	})

	store := NewElasticFactStore(client, "knowledge-entities", logger.NewNoOpLogger())
	_, err := store.FetchEntities(context.Background(), "ws-1", FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "50", gotSize)
	raw, _ := json.Marshal(gotBody)
	assert.Contains(t, string(raw), `"gte":0.5`)
	// No type filter when none requested.
	assert.NotContains(t, string(raw), "terms")
}

func TestFetchEntities_LimitCapped(t *testing.T) {
	var gotSize string
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotSize = r.URL.Query().Get("size")
		w.Header().Set("Content-Type", "application/json")
		w.Write(esResponse())
	})

	store := NewElasticFactStore(client, "knowledge-entities", logger.NewNoOpLogger())
	_, err := store.FetchEntities(context.Background(), "ws-1", FetchOptions{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, "200", gotSize)
}

func TestFetchEntities_SkipsMalformedHits(t *testing.T) {
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := json.Marshal(map[string]interface{}{
			"hits": map[string]interface{}{
				"hits": []interface{}{
					esHit("good", map[string]interface{}{"id": "good", "entityType": "feature", "name": "Kept", "confidence": 0.8}),
					map[string]interface{}{"_id": "bad", "_source": map[string]interface{}{"confidence": "not a number"}},
				},
			},
		})
		w.Write(body)
	})

	store := NewElasticFactStore(client, "knowledge-entities", logger.NewNoOpLogger())
	entities, err := store.FetchEntities(context.Background(), "ws-1", FetchOptions{})

	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "good", entities[0].ID)
}

func TestFetchEntities_FillsIDFromDocumentID(t *testing.T) {
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(esResponse(
			esHit("doc-7", map[string]interface{}{"entityType": "statistic", "name": "10x", "confidence": 0.8}),
		))
	})

	store := NewElasticFactStore(client, "knowledge-entities", logger.NewNoOpLogger())
	entities, err := store.FetchEntities(context.Background(), "ws-1", FetchOptions{})

	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "doc-7", entities[0].ID)
}

func TestFetchEntities_SearchError(t *testing.T) {
	client := newFakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	store := NewElasticFactStore(client, "knowledge-entities", logger.NewNoOpLogger())
	_, err := store.FetchEntities(context.Background(), "ws-1", FetchOptions{})
	assert.ErrorIs(t, err, ErrKnowledgeFetchFailed)
}

func TestFetchEntities_MissingWorkspace(t *testing.T) {
	store := NewElasticFactStore(nil, "knowledge-entities", logger.NewNoOpLogger())
	_, err := store.FetchEntities(context.Background(), "", FetchOptions{})
	assert.ErrorIs(t, err, ErrKnowledgeFetchFailed)
}
