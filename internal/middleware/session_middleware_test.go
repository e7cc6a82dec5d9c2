package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "test-secret"

func setupSessionMiddlewareTest(t *testing.T) (*gin.Engine, *SessionMiddleware) {
	gin.SetMode(gin.TestMode)
	sessionMiddleware := NewSessionMiddleware(testSessionSecret, time.Hour)

	router := gin.New()
	router.GET("/whoami", sessionMiddleware.Identify(), func(c *gin.Context) {
		sessionID, _ := GetSessionID(c)
		c.JSON(http.StatusOK, gin.H{"session": sessionID})
	})

	return router, sessionMiddleware
}

func TestSessionMiddleware_MintsSessionWithoutToken(t *testing.T) {
	router, _ := setupSessionMiddlewareTest(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(SessionTokenHeader), "new sessions hand the token back")
}

func TestSessionMiddleware_ValidTokenKeepsSession(t *testing.T) {
	router, _ := setupSessionMiddlewareTest(t)

	// First request mints the session
	first := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, first)
	token := w1.Header().Get(SessionTokenHeader)
	require.NotEmpty(t, token)

	// Echoing the token back resolves the same session
	second := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	second.Header.Set(SessionTokenHeader, token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, second)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Empty(t, w2.Header().Get(SessionTokenHeader), "no new token when the old one is valid")
	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestSessionMiddleware_BearerTokenAccepted(t *testing.T) {
	router, _ := setupSessionMiddlewareTest(t)

	first := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, first)
	token := w1.Header().Get(SessionTokenHeader)

	second := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	second.Header.Set("Authorization", "Bearer "+token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, second)

	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestSessionMiddleware_QueryTokenAccepted(t *testing.T) {
	router, _ := setupSessionMiddlewareTest(t)

	first := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, first)
	token := w1.Header().Get(SessionTokenHeader)

	second := httptest.NewRequest(http.MethodGet, "/whoami?token="+token, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, second)

	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestSessionMiddleware_InvalidTokenMintsNewSession(t *testing.T) {
	router, _ := setupSessionMiddlewareTest(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(SessionTokenHeader, "garbage.token.value")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(SessionTokenHeader), "a replacement session is minted")
}

func TestSessionMiddleware_ForeignSecretRejected(t *testing.T) {
	router, _ := setupSessionMiddlewareTest(t)

	foreign := NewSessionMiddleware("some-other-secret", time.Hour)
	token, err := foreign.mintToken("forged-session")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(SessionTokenHeader, token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(SessionTokenHeader))
	assert.NotContains(t, w.Body.String(), "forged-session")
}

func TestSessionMiddleware_ExpiredTokenMintsNewSession(t *testing.T) {
	router, _ := setupSessionMiddlewareTest(t)

	expired := NewSessionMiddleware(testSessionSecret, -time.Minute)
	token, err := expired.mintToken("stale-session")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(SessionTokenHeader, token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(SessionTokenHeader))
	assert.NotContains(t, w.Body.String(), "stale-session")
}

func TestGetSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetSessionID(c)
	assert.False(t, ok)

	c.Set(SessionIDKey, "sess")
	sessionID, ok := GetSessionID(c)
	assert.True(t, ok)
	assert.Equal(t, "sess", sessionID)
}
