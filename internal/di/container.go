// Package di provides dependency injection configuration for the MiniBook player.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/minibook/internal/catalog"
	"github.com/listenupapp/minibook/internal/config"
	"github.com/listenupapp/minibook/internal/di/providers"
	"github.com/listenupapp/minibook/internal/logger"
	"github.com/listenupapp/minibook/internal/repository"
	"github.com/listenupapp/minibook/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideRepository)

	// Playback
	do.Provide(injector, providers.ProvideEngine)
	do.Provide(injector, providers.ProvideRuntime)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	return injector
}

// Bootstrap initializes all services and returns the runtime handle.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) (*providers.RuntimeHandle, error) {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return nil, err
	}

	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*catalog.Loader](injector)
	_ = do.MustInvoke[*repository.Repository](injector)
	_ = do.MustInvoke[*providers.EngineHandle](injector)

	rt, err := do.Invoke[*providers.RuntimeHandle](injector)
	if err != nil {
		return nil, err
	}

	if _, err := do.Invoke[*providers.FileWatcherHandle](injector); err != nil {
		return nil, err
	}

	return rt, nil
}
