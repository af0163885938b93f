package middleware

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/config"
)

var exposedHeaders = []string{
	"Content-Length",
	"Content-Type",
	"Content-Disposition",
	"Retry-After",
	"X-Request-ID",
	IdempotencyReplayHeader,
}

// CORSMiddleware applies two policies. Routes under publicPrefix back share
// links embedded on arbitrary sites, so any origin may call them but
// credentials are never sent. Everything else only answers the configured
// dashboard origins.
func CORSMiddleware(cfg *config.CORSConfig, publicPrefix string) gin.HandlerFunc {
	owner := cors.New(ownerCORS(cfg))
	public := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Content-Type", "Origin", "Last-Event-ID", "X-Request-ID", IdempotencyKeyHeader},
		ExposeHeaders:   exposedHeaders,
		MaxAge:          12 * time.Hour,
	})

	return func(c *gin.Context) {
		if publicPrefix != "" && strings.HasPrefix(c.Request.URL.Path, publicPrefix) {
			public(c)
			return
		}
		owner(c)
	}
}

func ownerCORS(cfg *config.CORSConfig) cors.Config {
	conf := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(conf.AllowOrigins) == 0 {
		conf.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if len(conf.AllowMethods) == 0 {
		conf.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(conf.AllowHeaders) == 0 {
		conf.AllowHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin", "Last-Event-ID", "X-Request-ID"}
	}
	if !slices.Contains(conf.AllowHeaders, IdempotencyKeyHeader) {
		conf.AllowHeaders = append(conf.AllowHeaders, IdempotencyKeyHeader)
	}
	return conf
}
