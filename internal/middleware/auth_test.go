package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/middleware"
	"visual-god-backend/internal/models"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func authRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(testSecret))
	router.GET("/test", handler)
	return router
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func doAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	w := doAuth(authRouter(okHandler), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing authorization header", errorOf(t, w).Error)
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	w := doAuth(authRouter(okHandler), "Basic abc")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid authorization header format", errorOf(t, w).Error)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w := doAuth(authRouter(okHandler), "Bearer invalid-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token format", errorOf(t, w).Error)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte("another-secret"), jwt.MapClaims{
		"sub": uuid.NewString(),
	})

	w := doAuth(authRouter(okHandler), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := errorOf(t, w)
	assert.Equal(t, "invalid token", resp.Error)
	assert.Contains(t, resp.Message, "signature is invalid")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	w := doAuth(authRouter(okHandler), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token has expired", errorOf(t, w).Message)
}

func TestAuthMiddleware_WrongAlgorithm(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{
		"sub": uuid.NewString(),
	})

	w := doAuth(authRouter(okHandler), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token algorithm", errorOf(t, w).Error)
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"email": "a@example.com",
	})

	w := doAuth(authRouter(okHandler), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing user id in token", errorOf(t, w).Error)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":   userID.String(),
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	router := authRouter(func(c *gin.Context) {
		id, err := middleware.UserID(c)
		assert.NoError(t, err)
		assert.Equal(t, userID, id)
		assert.Equal(t, "ada@example.com", middleware.UserEmail(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := doAuth(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserID_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := middleware.UserID(c)
	assert.Error(t, err)

	c.Set(middleware.UserIDKey, "not-a-uuid")
	_, err = middleware.UserID(c)
	assert.Error(t, err)
}
