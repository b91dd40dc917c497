// Package main provides the entry point for the CasaFind API server
//
// @title CasaFind API
// @version 1.0.0
// @description Real-estate listing backend: property upsert with dedup, photos, notifications, support chat.
// @host localhost:5000
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token (format: "Bearer <token>")
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/casafind/casafind-server/domain/chat"
	"github.com/casafind/casafind-server/domain/health"
	"github.com/casafind/casafind-server/domain/kvstore"
	"github.com/casafind/casafind-server/domain/notifications"
	"github.com/casafind/casafind-server/domain/properties"
	"github.com/casafind/casafind-server/domain/uploads"
	"github.com/casafind/casafind-server/domain/users"
	"github.com/casafind/casafind-server/internal/config"
	"github.com/casafind/casafind-server/internal/database"
	"github.com/casafind/casafind-server/internal/migrate"
	"github.com/casafind/casafind-server/internal/server"
	"github.com/casafind/casafind-server/internal/storage"
	"github.com/casafind/casafind-server/pkg/auth"
	"github.com/casafind/casafind-server/pkg/logger"
)

func main() {
	// Load .env files if present (for local development).
	// Load() won't overwrite existing vars, Overload() will.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,
		storage.Module,

		// Auth module
		auth.Module,

		// Domain modules
		health.Module,
		users.Module,
		properties.Module,
		notifications.Module,
		chat.Module,
		kvstore.Module,
		uploads.Module,
	).Run()
}
