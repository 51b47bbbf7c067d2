package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebook/clinic-api/internal/model"
	"github.com/carebook/clinic-api/pkg/auth"
)

func setupTestRouter(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	m := NewAuthMiddleware(jwtSvc)

	r := gin.New()
	authed := r.Group("", m.Authenticate())
	authed.GET("/whoami", func(c *gin.Context) {
		actor, _ := ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{"role": actor.Role})
	})
	admin := authed.Group("/admin", m.RequireRole(model.RoleAdmin))
	admin.GET("/stats", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, jwtSvc
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := doRequest(r, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateBadToken(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := doRequest(r, "/whoami", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateSetsActor(t *testing.T) {
	r, jwtSvc := setupTestRouter(t)
	token, err := jwtSvc.GenerateToken(uuid.New(), model.RolePatient, "Pat")
	require.NoError(t, err)

	w := doRequest(r, "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.RolePatient)
}

func TestRequireRole(t *testing.T) {
	r, jwtSvc := setupTestRouter(t)

	patientToken, err := jwtSvc.GenerateToken(uuid.New(), model.RolePatient, "Pat")
	require.NoError(t, err)
	w := doRequest(r, "/admin/stats", patientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := jwtSvc.GenerateToken(uuid.New(), model.RoleAdmin, "Admin")
	require.NoError(t, err)
	w = doRequest(r, "/admin/stats", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
