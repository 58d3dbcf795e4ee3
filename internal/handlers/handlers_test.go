package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-tags/internal/database"
	"media-tags/internal/metrics"
	"media-tags/internal/startup"
	"media-tags/internal/tags"
)

type fakeStore struct {
	stats metrics.Stats
	err   error
}

func (f fakeStore) Ping(context.Context) error { return f.err }

func (f fakeStore) GraphStats(context.Context) (metrics.Stats, error) {
	return f.stats, f.err
}

func serve(t *testing.T, store Store, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewRouter(New(store)).ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	store := fakeStore{stats: metrics.Stats{TotalTags: 3, TotalAliases: 5, TotalLinks: 7, TotalContent: 2}}

	for _, path := range []string{"/health", "/healthz"} {
		rec := serve(t, store, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, statusHealthy, resp.Status)
		assert.True(t, resp.Ready)
		assert.Equal(t, int64(3), resp.TotalTags)
		assert.Equal(t, int64(7), resp.TotalLinks)
		assert.Equal(t, startup.Version, resp.Version)
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	rec := serve(t, fakeStore{err: errors.New("database is locked")}, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, statusDegraded, resp.Status)
	assert.Equal(t, "database is locked", resp.Error)
}

func TestLivenessCheck(t *testing.T) {
	rec := serve(t, fakeStore{err: errors.New("down")}, http.MethodGet, "/livez")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")

	rec = serve(t, fakeStore{}, http.MethodHead, "/livez")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestReadinessCheck(t *testing.T) {
	rec := serve(t, fakeStore{}, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)

	rec = serve(t, fakeStore{err: errors.New("down")}, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

func TestGetVersion(t *testing.T) {
	rec := serve(t, fakeStore{}, http.MethodGet, "/version")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	var info startup.BuildInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, startup.GetBuildInfo(), info)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.InitializeMetrics()

	rec := serve(t, fakeStore{}, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tags_registrations_total")
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(t, fakeStore{}, http.MethodPost, "/version")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthCheckWithDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	db, err := database.New(ctx, database.Options{Path: filepath.Join(t.TempDir(), "tags.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = tags.Register(ctx, db, "rarity", tags.CategoryCharacter, "")
	require.NoError(t, err)

	rec := serve(t, db, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.TotalTags)
	assert.Equal(t, int64(2), resp.TotalAliases)
}
