// internal/stores/brand_test.go
package stores

import (
	"context"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	redismock "github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/models"
)

func brandColumns() []string {
	return []string{"id", "tone", "personality", "keywords", "avoid_words", "target_audience"}
}

func TestGetBrandVoice_FromDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresBrandStore(db, nil, logger.NewNoOpLogger())

	mock.ExpectQuery("SELECT id, tone, personality").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(brandColumns()).
			AddRow("b1", "confident", "{bold,friendly}", "{fast,simple}", "{cheap}", "agencies"))

	brand, err := store.GetBrandVoice(context.Background(), "b1")
	require.NoError(t, err)

	require.NotNil(t, brand)
	assert.Equal(t, "confident", brand.Tone)
	assert.Equal(t, []string{"bold", "friendly"}, brand.Personality)
	assert.Equal(t, []string{"cheap"}, brand.AvoidWords)
	assert.Equal(t, "agencies", brand.TargetAudience)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBrandVoice_NotFoundIsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresBrandStore(db, nil, logger.NewNoOpLogger())
	mock.ExpectQuery("SELECT id, tone, personality").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(brandColumns()))

	brand, err := store.GetBrandVoice(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, brand)
}

func TestGetBrandVoice_EmptyID(t *testing.T) {
	store := NewPostgresBrandStore(nil, nil, logger.NewNoOpLogger())
	brand, err := store.GetBrandVoice(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, brand)
}

func TestGetBrandVoice_CacheHit(t *testing.T) {
	cache, redisMock := redismock.NewClientMock()

	cached := models.BrandVoice{ID: "b1", Tone: "warm"}
	raw, _ := json.Marshal(cached)
	redisMock.ExpectGet("brand:b1").SetVal(string(raw))

	store := NewPostgresBrandStore(nil, cache, logger.NewNoOpLogger())
	brand, err := store.GetBrandVoice(context.Background(), "b1")

	require.NoError(t, err)
	require.NotNil(t, brand)
	assert.Equal(t, "warm", brand.Tone)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestGetBrandVoice_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresBrandStore(db, nil, logger.NewNoOpLogger())
	mock.ExpectQuery("SELECT id, tone, personality").WillReturnError(assert.AnError)

	_, err = store.GetBrandVoice(context.Background(), "b1")
	assert.ErrorIs(t, err, ErrBrandFetchFailed)
}
