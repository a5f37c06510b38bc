package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"locallibrary/pkg/config"
	"locallibrary/pkg/database"
	"locallibrary/pkg/logger"
	"locallibrary/pkg/models"
	"locallibrary/pkg/store"
	"locallibrary/pkg/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.OpenMemory(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.New(db)
}

func TestSeedCatalog(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	require.NoError(t, seedCatalog(ctx, st, now, logger.Discard()))

	authors, err := st.Authors.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seedAuthors)), authors)

	books, err := st.Books.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seedBooks)), books)

	fantasy, err := st.Genres.FindOne(ctx, store.Filter{"name": "Fantasy"})
	require.NoError(t, err)
	require.NotNil(t, fantasy)
	inFantasy, err := st.Books.Count(ctx, store.Filter{"genre": fantasy.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(4), inFantasy)

	loaned, err := st.Instances.FindMany(ctx, store.Filter{"status": string(models.StatusLoaned)}, "")
	require.NoError(t, err)
	require.Len(t, loaned, 2)
	for _, bi := range loaned {
		assert.True(t, bi.DueBack.After(now))
	}
}

func TestSeedCatalogSkipsPopulatedCatalog(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.Authors.Insert(ctx, &models.Author{FirstName: "Existing", FamilyName: "Author"})
	require.NoError(t, err)

	require.NoError(t, seedCatalog(ctx, st, time.Now(), logger.Discard()))

	authors, err := st.Authors.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), authors)
	genres, err := st.Genres.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, genres)
}

func TestSeededCatalogIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := setupTestStore(t)
	require.NoError(t, seedCatalog(context.Background(), st, time.Now(), logger.Discard()))

	cfg := &config.Config{Catalog: config.CatalogConfig{LookupTimeout: time.Second}}
	svc, m := buildService(cfg, st, logger.Discard())
	router := web.NewRouter(web.Deps{Service: svc, Logger: logger.Discard(), DB: st, Metrics: m})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		View string `json:"view"`
		Data struct {
			Data map[string]int64 `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "index", body.View)
	assert.Equal(t, map[string]int64{
		"book_count":                    7,
		"book_instance_count":           11,
		"book_instance_available_count": 6,
		"author_count":                  5,
		"genre_count":                   3,
	}, body.Data.Data)
}
