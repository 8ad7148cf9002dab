package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/pkg/auth"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService(auth.Config{Secret: "test-secret"})
	m := NewAuthMiddleware(jwtSvc)

	r := gin.New()
	protected := r.Group("/", m.Authenticate())
	protected.GET("/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString(ContextUserRole)})
	})

	adminOnly := r.Group("/admin", m.Authenticate(), m.RequireRole(model.RoleAdmin))
	adminOnly.GET("/tables", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r, jwtSvc
}

func doRequest(r *gin.Engine, path, header, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_BearerToken(t *testing.T) {
	r, jwtSvc := setupAuthRouter(t)

	token, err := jwtSvc.GenerateAccessToken(uuid.New(), "doc@clinic.example", model.RoleDoctor)
	require.NoError(t, err)

	w := doRequest(r, "/profile", "Bearer "+token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.RoleDoctor)
}

func TestAuthenticate_CookieToken(t *testing.T) {
	r, jwtSvc := setupAuthRouter(t)

	token, err := jwtSvc.GenerateAccessToken(uuid.New(), "doc@clinic.example", model.RoleUser)
	require.NoError(t, err)

	w := doRequest(r, "/profile", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	r, _ := setupAuthRouter(t)

	cases := map[string]string{
		"missing credentials": "",
		"malformed header":    "Token abc",
		"garbage token":       "Bearer not.a.jwt",
	}
	for name, header := range cases {
		w := doRequest(r, "/profile", header, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestRequireRole(t *testing.T) {
	r, jwtSvc := setupAuthRouter(t)

	adminToken, err := jwtSvc.GenerateAccessToken(uuid.New(), "admin@clinic.example", model.RoleAdmin)
	require.NoError(t, err)
	userToken, err := jwtSvc.GenerateAccessToken(uuid.New(), "user@clinic.example", model.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(r, "/admin/tables", "Bearer "+adminToken, "").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/admin/tables", "Bearer "+userToken, "").Code)
}
