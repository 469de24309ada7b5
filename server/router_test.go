package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"world-vlog/domain/dto"
	"world-vlog/domain/model"
	"world-vlog/infrastructure/utils"
	httpHandler "world-vlog/interfaces/http"
	"world-vlog/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVideos struct{}

func (stubVideos) QueryVideos(context.Context, dto.VideoQueryRequest) (*dto.VideoQueryResponse, error) {
	return &dto.VideoQueryResponse{Videos: []model.VideoResult{{ID: "a"}}, Source: model.ProvenanceMemory}, nil
}
func (stubVideos) FlushMemoryCache() int      { return 2 }
func (stubVideos) CacheStats() dto.CacheStats { return dto.CacheStats{Entries: 1} }

type stubRatings struct{}

func (stubRatings) RecordRating(context.Context, string, bool) error { return nil }
func (stubRatings) AttachAndSort(_ context.Context, v []model.VideoResult, _ usecase.ScoreFunc) []model.VideoResult {
	return v
}

type stubPool struct{}

func (stubPool) RandomVideos(context.Context, model.Mode, int) []model.VideoResult { return nil }
func (stubPool) Rebuild(context.Context) (int, error)                              { return 0, nil }
func (stubPool) Size() int                                                         { return 0 }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return InitiateRouter(
		RouterConfig{AllowOrigins: []string{"https://map.example"}, SecretKey: "k"},
		httpHandler.NewVideoHandler(stubVideos{}, stubRatings{}, stubPool{}),
		httpHandler.NewAdminHandler(stubVideos{}, stubPool{}),
		httpHandler.NewHealthHandler(),
		nil,
	)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/youtube?q=Kyoto", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"memory"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	r := newTestRouter()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/cache/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := utils.GenerateToken(map[string]interface{}{"role": "admin"}, "k")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/admin/cache/memory", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"flushed":2}`, w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/random", nil)
	req.Header.Set("Origin", "https://map.example")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://map.example", w.Header().Get("Access-Control-Allow-Origin"))
}
