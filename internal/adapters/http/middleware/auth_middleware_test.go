package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-rbac/internal/config"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, called
}

func TestAuthMiddleware_None(t *testing.T) {
	mw, err := AuthMiddleware(config.AuthNone, "", nil)
	require.NoError(t, err)

	_, called := runMiddleware(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestAuthMiddleware_APIKey(t *testing.T) {
	mw, err := AuthMiddleware(config.AuthAPIKey, "s3cret", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAPIKey, "s3cret")
	_, called := runMiddleware(t, mw, req)
	assert.True(t, called)
}

func TestAuthMiddleware_APIKeyRejectsMismatch(t *testing.T) {
	mw, err := AuthMiddleware(config.AuthAPIKey, "s3cret", nil)
	require.NoError(t, err)

	for _, key := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if key != "" {
			req.Header.Set(HeaderAPIKey, key)
		}
		rec, called := runMiddleware(t, mw, req)
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthMiddleware_Cognito(t *testing.T) {
	cognitoCalled := false
	mockCognito := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cognitoCalled = true
			return next(c)
		}
	}

	mw, err := AuthMiddleware(config.AuthCognito, "", mockCognito)
	require.NoError(t, err)

	_, called := runMiddleware(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
	assert.True(t, cognitoCalled)
}

func TestAuthMiddleware_MisconfiguredModes(t *testing.T) {
	mw, err := AuthMiddleware(config.AuthCognito, "", nil)
	assert.Nil(t, mw)
	assert.Error(t, err)

	mw, err = AuthMiddleware(config.AuthAPIKey, "", nil)
	assert.Nil(t, mw)
	assert.Error(t, err)

	mw, err = AuthMiddleware(config.AuthMode("invalid"), "", nil)
	assert.Nil(t, mw)
	assert.Error(t, err)
}
