// Command tokengen mints an owner token for local development and support.
// Production tokens come from the identity provider in front of the API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sangkips/quotecrm/internal/config"
	"github.com/sangkips/quotecrm/pkg/utils"
)

func main() {
	tenant := flag.String("tenant", "", "tenant id (uuid) the token is scoped to")
	email := flag.String("email", "", "owner email stamped into the token")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to JWT_EXPIRY_HOURS")
	flag.Parse()

	if err := run(*tenant, *email, *ttl); err != nil {
		slog.Error("tokengen failed", "error", err)
		os.Exit(1)
	}
}

func run(tenant, email string, ttl time.Duration) error {
	tenantID, err := utils.ParseUUID(tenant)
	if err != nil {
		return fmt.Errorf("invalid -tenant: %w", err)
	}

	cfg := config.Load()
	if ttl <= 0 {
		ttl = cfg.JWT.ExpiryHours
	}

	token, err := utils.NewJWTManager(cfg.JWT.Secret, cfg.App.Namespace, ttl).GenerateAccessToken(tenantID, email)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
