package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"proxedu/pkg/logger"
	"proxedu/pkg/metrics"
	"proxedu/pkg/models"
	"proxedu/pkg/security"
)

const (
	claimsKey       = "claims"
	botSecretHeader = "X-Bot-Secret"
)

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		took := time.Since(start)

		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, took)
		h.log.Debug("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.Duration("latency", took),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+botSecretHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, http.StatusUnauthorized, "Token topilmadi")
			return
		}
		claims, err := h.svc.Auth().ParseToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Noto'g'ri token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := claimsFrom(c); claims == nil || claims.Role != models.RoleAdmin {
			abort(c, http.StatusForbidden, "Admin huquqlari kerak")
			return
		}
		c.Next()
	}
}

// botSecret guards the verify callback when a shared secret is configured.
func (h *Handler) botSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := h.cfg.BotAPISecret
		if secret == "" {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(botSecretHeader)), []byte(secret)) != 1 {
			abort(c, http.StatusUnauthorized, "Ruxsat berilmagan")
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *security.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*security.Claims)
	return claims
}
