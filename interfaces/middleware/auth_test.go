package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"world-vlog/domain/dto"
	"world-vlog/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

func newAdminRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AdminAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString("admin_subject")})
	})
	return r
}

func call(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, claims map[string]interface{}, secret string) string {
	t.Helper()
	tok, err := utils.GenerateToken(claims, secret)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAdminAuth_AcceptsAdminToken(t *testing.T) {
	r := newAdminRouter(testSecret)
	w := call(r, token(t, map[string]interface{}{"role": "admin", "sub": "ops"}, testSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"ops"}`, w.Body.String())
}

func TestAdminAuth_Rejections(t *testing.T) {
	expired := map[string]interface{}{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}
	tests := []struct {
		name          string
		authorization string
		code          int
		message       string
	}{
		{"missing header", "", http.StatusUnauthorized, "Unauthorized"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Unauthorized"},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, "That's not even a token"},
		{"wrong secret", token(t, map[string]interface{}{"role": "admin"}, "other"), http.StatusUnauthorized, ""},
		{"expired", token(t, expired, testSecret), http.StatusUnauthorized, "Timing is everything"},
		{"not admin", token(t, map[string]interface{}{"role": "viewer"}, testSecret), http.StatusForbidden, "Forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(newAdminRouter(testSecret), tt.authorization)
			assert.Equal(t, tt.code, w.Code)

			var res dto.Res
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			if tt.message != "" {
				assert.Equal(t, tt.message, res.ResponseMessage)
			}
		})
	}
}

func TestAdminAuth_NoSecretClosesSurface(t *testing.T) {
	w := call(newAdminRouter(""), token(t, map[string]interface{}{"role": "admin"}, testSecret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
