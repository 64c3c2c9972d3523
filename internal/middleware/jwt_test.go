package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_secret")

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString("user_id"),
			"is_admin": c.GetBool("is_admin"),
		})
	})
	r.GET("/admin", AuthRequired(testSecret), RequireAdmin, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_NoToken(t *testing.T) {
	w := get(protectedRouter(), "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_BadFormat(t *testing.T) {
	w := get(protectedRouter(), "/me", "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id": "abc123",
		"email":   "alice@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w := get(protectedRouter(), "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc123")
}

func TestAuthRequired_Expired(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id": "abc123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	w := get(protectedRouter(), "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_WrongSecret(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id": "abc123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, []byte("autre_secret"))

	w := get(protectedRouter(), "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_Forbidden(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id":  "abc123",
		"is_admin": false,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w := get(protectedRouter(), "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_Allowed(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id":  "abc123",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w := get(protectedRouter(), "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}
