// Command tokengen mints a signed role token for calling the RPC services.
//
//	JWT_SECRET=... tokengen -member chair -role admin
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mmynk/vikoba/internal/auth"
	"github.com/mmynk/vikoba/internal/config"
	"github.com/mmynk/vikoba/internal/models"
	"github.com/mmynk/vikoba/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	memberID := flag.String("member", "", "member ID placed in the token subject")
	role := flag.String("role", string(models.RoleMember), "actor role: member or admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	parsed := models.ParseRole(*role)
	if string(parsed) != *role {
		slog.Error("Unknown role", "role", *role)
		os.Exit(2)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(*memberID, parsed)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
