package server

import (
	"log/slog"
	"strings"

	"github.com/alkime/intervals/internal/config"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// permissionsPolicy denies browser features the timer page never uses. Sound
// is produced on the host, so the page needs no device access at all.
const permissionsPolicy = "camera=(), microphone=(), geolocation=(), usb=(), midi=()"

// setupSecurityMiddleware applies the security headers for the timer page and
// API. The CSP keeps connect-src at 'self' so the page can reach the JSON API
// and the event stream but nothing else.
func setupSecurityMiddleware(router *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	// HSTS only makes sense behind TLS in production
	stsSeconds := int64(0)
	if cfg.IsProduction() {
		stsSeconds = int64(cfg.HSTSMaxAge)
	}

	router.Use(secure.New(secure.Config{
		STSSeconds:            stsSeconds,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "same-origin",
		ContentSecurityPolicy: config.BuildCSP(cfg.CSPMode),
	}))
	router.Use(timerHeaders())

	logger.Debug("Configured security middleware",
		"hsts_enabled", stsSeconds > 0,
		"csp_mode", cfg.CSPMode,
	)
}

// timerHeaders marks API responses as uncacheable, since every response is a
// snapshot of a running clock, and applies the permissions policy.
func timerHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Permissions-Policy", permissionsPolicy)

		if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
