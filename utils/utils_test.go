package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-drive-service/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestExtractToken(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", ExtractToken(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	c.Request.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "cookie-token", ExtractToken(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, ExtractToken(c))
}

func TestParseToken(t *testing.T) {
	cfg := &config.EnvConfig{}
	cfg.JWT.SecretKey = "secret"
	userID := uuid.New()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	token, err := ParseToken(signed, cfg)
	require.NoError(t, err)
	assert.True(t, token.Valid)

	cfg.JWT.SecretKey = "other"
	_, err = ParseToken(signed, cfg)
	assert.Error(t, err)
}

func TestInjectClaimsToContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	userID := uuid.New()

	require.NoError(t, InjectClaimsToContext(c, jwt.MapClaims{"user_id": userID.String()}))
	got, err := GetUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Error(t, InjectClaimsToContext(c2, jwt.MapClaims{"user_id": "not-a-uuid"}))
	assert.Error(t, InjectClaimsToContext(c2, jwt.MapClaims{"user_id": 42}))
	_, err = GetUserIDFromContext(c2)
	assert.ErrorIs(t, err, ErrMissingUserID)

	c2.Set("user_id", "not-a-uuid")
	_, err = GetUserIDFromContext(c2)
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestTokenCacheKey(t *testing.T) {
	key := TokenCacheKey("secret", "token")

	assert.Equal(t, key, TokenCacheKey("secret", "token"))
	assert.NotEqual(t, key, TokenCacheKey("secret", "token2"))
	assert.NotEqual(t, key, TokenCacheKey("other", "token"))
	assert.NotContains(t, key, "token")
	assert.Len(t, key, len("drive:auth:")+64)
}
