// internal/stores/personas_test.go
package stores

import (
	"context"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/models"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func personaColumns() []string {
	return []string{"id", "name", "communication_style", "buyer_journey_stage", "pain_points", "goals", "content_preference"}
}

func TestGetPersonas_FromDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache, _ := newTestRedis(t)
	store := NewPostgresPersonaStore(db, cache, logger.NewNoOpLogger())

	rows := sqlmock.NewRows(personaColumns()).
		AddRow("p1", "CTO", "technical", "consideration", "{\"slow builds\"}", "{\"ship faster\"}", "detailed").
		AddRow("p2", "CEO", "executive", "decision", "{}", "{}", nil)

	mock.ExpectQuery("SELECT id, name, communication_style").
		WithArgs(pq.Array([]string{"p1", "p2"})).
		WillReturnRows(rows)

	personas, err := store.GetPersonas(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)

	require.Len(t, personas, 2)
	assert.Equal(t, "CTO", personas[0].Name)
	assert.Equal(t, models.StyleTechnical, personas[0].CommunicationStyle)
	assert.Equal(t, []string{"slow builds"}, personas[0].PainPoints)
	assert.Equal(t, "detailed", personas[0].ContentPreference)
	assert.Equal(t, "p2", personas[1].ID)
	assert.Empty(t, personas[1].ContentPreference)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPersonas_CacheHitSkipsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache, mr := newTestRedis(t)
	cachedPersona := models.Persona{ID: "p1", Name: "Cached CTO", CommunicationStyle: "technical"}
	raw, _ := json.Marshal(cachedPersona)
	mr.Set("persona:p1", string(raw))

	store := NewPostgresPersonaStore(db, cache, logger.NewNoOpLogger())
	personas, err := store.GetPersonas(context.Background(), []string{"p1"})

	require.NoError(t, err)
	require.Len(t, personas, 1)
	assert.Equal(t, "Cached CTO", personas[0].Name)
	// No database query was expected or made.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPersonas_DatabaseResultIsCached(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache, mr := newTestRedis(t)
	store := NewPostgresPersonaStore(db, cache, logger.NewNoOpLogger())

	mock.ExpectQuery("SELECT id, name, communication_style").
		WillReturnRows(sqlmock.NewRows(personaColumns()).
			AddRow("p1", "CTO", "technical", "decision", "{}", "{}", ""))

	_, err = store.GetPersonas(context.Background(), []string{"p1"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("persona:p1"))
}

func TestGetPersonas_MissingIDsDropped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresPersonaStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("SELECT id, name, communication_style").
		WillReturnRows(sqlmock.NewRows(personaColumns()).
			AddRow("p2", "CEO", "executive", "decision", "{}", "{}", ""))

	personas, err := store.GetPersonas(context.Background(), []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	require.Len(t, personas, 1)
	assert.Equal(t, "p2", personas[0].ID)
}

func TestGetPersonas_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresPersonaStore(db, nil, logger.NewNoOpLogger())
	mock.ExpectQuery("SELECT id, name, communication_style").WillReturnError(assert.AnError)

	_, err = store.GetPersonas(context.Background(), []string{"p1"})
	assert.ErrorIs(t, err, ErrPersonaFetchFailed)
}

func TestGetPersonas_EmptyIDs(t *testing.T) {
	store := NewPostgresPersonaStore(nil, nil, logger.NewNoOpLogger())
	personas, err := store.GetPersonas(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, personas)
}
