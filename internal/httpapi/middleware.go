package httpapi

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/campus-union/voicebox/internal/ratelimit"
	"github.com/campus-union/voicebox/internal/security"
)

const claimsContextKey = "adminClaims"

// RequestLogger logs each request with method, path, status, latency and
// client IP.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request completed")
	}
}

// Recovery converts panics into a 500 envelope. The panic detail is logged
// with a stack trace and only surfaced in the response during development.
func Recovery(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"method": c.Request.Method,
					"url":    c.Request.URL.String(),
					"ip":     c.ClientIP(),
					"panic":  r,
				}).Errorf("panic recovered\n%s", debug.Stack())

				message := "Internal server error"
				if detail := toString(r); development && detail != "" {
					message = message + ": " + detail
				}
				respondError(c, http.StatusInternalServerError, message)
			}
		}()
		c.Next()
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case error:
		return t.Error()
	case string:
		return t
	default:
		return ""
	}
}

// AdminAuth enforces a Bearer token issued by the login endpoint and stores
// the parsed claims on the request context.
func AdminAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			respondError(c, http.StatusUnauthorized, "Authorization token required")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, errParse := security.ParseAdminToken(jwtSecret, token)
		if errParse != nil {
			if errors.Is(errParse, security.ErrExpiredToken) {
				respondError(c, http.StatusUnauthorized, "Token expired")
				return
			}
			respondError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// adminClaims pulls the claims stored by AdminAuth. It returns nil when the
// middleware did not run.
func adminClaims(c *gin.Context) *security.AdminClaims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*security.AdminClaims)
	if !ok {
		return nil
	}
	return claims
}

// RateLimit rejects requests over the per-IP quota with a 429 envelope.
func RateLimit(limiter ratelimit.Limiter, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow(c.ClientIP()) {
			respondError(c, http.StatusTooManyRequests, message)
			return
		}
		c.Next()
	}
}
