// Package main is the entry point for the forge server. It reads
// configuration from the environment (optionally a .env file), builds the
// logger, and starts the server. All logic lives in internal/ packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/forgeworld/forge/internal/auth"
	"github.com/forgeworld/forge/internal/server"
	"github.com/forgeworld/forge/internal/service"
)

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/forge.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// SESSION_SECRET signs session tokens. Generate one with:
	//   openssl rand -hex 32
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		logger.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	admin, err := adminConfig(logger)
	if err != nil {
		os.Exit(1)
	}

	cfg := server.Config{
		Port:           port,
		DBPath:         dbPath,
		SessionSecret:  secret,
		Admin:          admin,
		ReadmeEndpoint: os.Getenv("README_API_URL"),
		ReadmeAPIKey:   os.Getenv("README_API_KEY"),
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// adminConfig builds the fixed administrative account from the environment.
// The plaintext ADMIN_PASSWORD is hashed immediately and never stored or
// logged. When ADMIN_PASSWORD is unset there is no admin login.
func adminConfig(logger *slog.Logger) (service.AdminConfig, error) {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logger.Warn("ADMIN_PASSWORD not set, admin console is disabled")
		return service.AdminConfig{}, nil
	}

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		logger.Error("failed to hash admin password", slog.String("error", err.Error()))
		return service.AdminConfig{}, err
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@forge.local"
	}
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	displayName := os.Getenv("ADMIN_DISPLAY_NAME")
	if displayName == "" {
		displayName = "Administrator"
	}

	return service.AdminConfig{
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	}, nil
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
