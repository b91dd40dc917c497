// Command migrate applies or rolls back database migrations without starting
// the API server. Usage: migrate [up|down|status]
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/casafind/casafind-server/internal/config"
	"github.com/casafind/casafind-server/internal/database"
	"github.com/casafind/casafind-server/internal/migrate"
	"github.com/casafind/casafind-server/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	action := "up"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	app := fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		logger.Module,
		config.Module,
		database.Module,
		fx.Provide(migrate.NewMigrator),
		fx.Invoke(func(m *migrate.Migrator, s fx.Shutdowner, log *slog.Logger) {
			var err error
			switch action {
			case "up":
				err = m.Up(context.Background())
			case "down":
				err = m.Down(context.Background())
			case "status":
				err = m.Status(context.Background())
			default:
				log.Error("unknown action", slog.String("action", action))
				_ = s.Shutdown(fx.ExitCode(2))
				return
			}
			if err != nil {
				log.Error("migration failed", logger.Error(err))
				_ = s.Shutdown(fx.ExitCode(1))
				return
			}
			_ = s.Shutdown()
		}),
	)
	app.Run()
}
