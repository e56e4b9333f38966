// Package providers contains dependency injection providers for the MiniBook player.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/minibook/internal/config"
	"github.com/listenupapp/minibook/internal/logger"
)

// ProvideLogger provides the structured logger.
// The *config.Config is registered as a value by the container.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting MiniBook",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"book_path", cfg.Library.BookPath,
		"audio_path", cfg.Library.AudioPath,
		"data_path", cfg.Storage.DataPath,
	)

	return log, nil
}
