package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/utils"
)

type TokenValidator interface {
	CheckAccessToken(ctx context.Context, token string) error
}

// TokenCache remembers tokens the authorization service already accepted.
type TokenCache interface {
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// AuthMiddleware resolves the request owner from a signed JWT. cache may be nil.
func AuthMiddleware(validator TokenValidator, cache TokenCache, logger *infra.LoggerClient, config *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tokenStr := utils.ExtractToken(c)
		if tokenStr == "" {
			tokenStr = c.Query("access_token")
		}

		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			c.Abort()
			return
		}

		parsedToken, err := utils.ParseToken(tokenStr, config)
		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		cacheKey := utils.TokenCacheKey(config.PrivateKey, tokenStr)
		cached := false
		if cache != nil {
			if cached, err = cache.Exists(ctx, cacheKey); err != nil {
				logger.WarningWithContextf(ctx, "[Auth] Token cache lookup failed: %v", err)
				cached = false
			}
		}

		if !cached {
			if err := validator.CheckAccessToken(ctx, tokenStr); err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				c.Abort()
				return
			}
			if cache != nil {
				if err := cache.Set(ctx, cacheKey, true, config.AuthCache.TTL); err != nil {
					logger.WarningWithContextf(ctx, "[Auth] Failed to cache token validation: %v", err)
				}
			}
		}

		if err := utils.InjectClaimsToContext(c, claims); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
			c.Abort()
			return
		}

		c.Next()
	}
}
