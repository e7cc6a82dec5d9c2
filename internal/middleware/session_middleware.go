package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context key for the guest session id
const SessionIDKey = "session_id"

// SessionTokenHeader carries the signed guest token in both directions: the
// client echoes it back, the server sets it whenever a new session is minted.
const SessionTokenHeader = "X-Session-Token"

var errInvalidSessionToken = errors.New("invalid session token")

// SessionMiddleware identifies the guest browsing session that owns a cart.
// There are no accounts: a session is a signed UUID. A missing or invalid
// token is not an error; the middleware mints a fresh session and hands the
// new token back, so a first-time visitor gets a cart on their first request.
type SessionMiddleware struct {
	secret      string
	tokenExpiry time.Duration
}

func NewSessionMiddleware(secret string, tokenExpiry time.Duration) *SessionMiddleware {
	return &SessionMiddleware{
		secret:      secret,
		tokenExpiry: tokenExpiry,
	}
}

// Identify resolves or mints the guest session and puts its id in context.
func (m *SessionMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := extractToken(c)
		if token != "" {
			if sessionID, err := m.validateToken(token); err == nil {
				c.Set(SessionIDKey, sessionID)
				c.Next()
				return
			}
			log.Debug("Session token rejected, minting a new session", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
		}

		sessionID := uuid.NewString()
		signed, err := m.mintToken(sessionID)
		if err != nil {
			// Signing only fails on a broken secret config; surface loudly.
			log.Error("Failed to sign session token", err, nil)
			c.AbortWithStatus(500)
			return
		}

		c.Header(SessionTokenHeader, signed)
		c.Set(SessionIDKey, sessionID)

		log.Debug("New guest session minted", map[string]interface{}{
			"session": sessionID,
		})
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if token := c.GetHeader(SessionTokenHeader); token != "" {
		return token
	}
	// WebSocket upgrades cannot set headers; allow a query parameter.
	return c.Query("token")
}

func (m *SessionMiddleware) mintToken(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

func (m *SessionMiddleware) validateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSessionToken
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidSessionToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errInvalidSessionToken
	}
	return claims.Subject, nil
}

// GetSessionID retrieves the guest session id from gin context.
func GetSessionID(c *gin.Context) (string, bool) {
	value, exists := c.Get(SessionIDKey)
	if !exists {
		return "", false
	}
	sessionID, ok := value.(string)
	return sessionID, ok && sessionID != ""
}
