package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newServer(logger *logrus.Logger) *echo.Echo {
	e := echo.New()
	if logger != nil {
		e.Use(AuditLog(logger))
	}
	e.Use(VersionHeader("v1", "test"))

	api := e.Group("/api", JWTAuth(testSecret))
	api.GET("/me", func(c echo.Context) error {
		identity, _ := common.GetIdentityFromContext(c.Request().Context())
		return c.JSON(http.StatusOK, identity)
	})
	api.POST("/payments/generate", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireRoles(models.RoleAdmin))
	return e
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	token, err := IssueToken(testSecret, 30, models.RoleTenant, time.Hour)
	require.NoError(t, err)

	rec := do(newServer(nil), http.MethodGet, "/api/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":30,"role":"TENANT"}`, rec.Body.String())
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}

func TestJWTAuth_Rejects(t *testing.T) {
	e := newServer(nil)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/api/me", "").Code)

	wrongKey, err := IssueToken("other-secret", 30, models.RoleTenant, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/api/me", wrongKey).Code)

	expired, err := IssueToken(testSecret, 30, models.RoleTenant, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/api/me", expired).Code)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{UserID: 30}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/api/me", noRole).Code)
}

func TestJWTAuth_SubjectFallback(t *testing.T) {
	claims := &JWTClaims{Role: models.RoleOwner, RegisteredClaims: jwt.RegisteredClaims{Subject: "20"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := do(newServer(nil), http.MethodGet, "/api/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":20,"role":"OWNER"}`, rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	e := newServer(nil)

	adminToken, err := IssueToken(testSecret, 1, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	ownerToken, err := IssueToken(testSecret, 20, models.RoleOwner, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/payments/generate", adminToken).Code)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodPost, "/api/payments/generate", ownerToken).Code)
}

func TestAuditLog_TagsCaller(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := newServer(logger)

	token, err := IssueToken(testSecret, 1, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	rec := do(e, http.MethodPost, "/api/payments/generate", token)
	require.Equal(t, http.StatusOK, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, int64(1), entry.Data["user_id"])
	assert.Equal(t, "/api/payments/generate", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}
