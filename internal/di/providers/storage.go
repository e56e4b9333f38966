package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/minibook/internal/catalog"
	"github.com/listenupapp/minibook/internal/config"
	"github.com/listenupapp/minibook/internal/logger"
	"github.com/listenupapp/minibook/internal/repository"
	"github.com/listenupapp/minibook/internal/store"
	"github.com/listenupapp/minibook/internal/validation"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the snapshot store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Storage.DataPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Snapshot store initialized", "path", cfg.Storage.DataPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalog provides the book metadata loader.
func ProvideCatalog(i do.Injector) (*catalog.Loader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	v := do.MustInvoke[*validation.Validator](i)

	return catalog.NewLoader(cfg.Library.BookPath, v, log.Logger), nil
}

// ProvideRepository provides the book repository.
func ProvideRepository(i do.Injector) (*repository.Repository, error) {
	log := do.MustInvoke[*logger.Logger](i)
	loader := do.MustInvoke[*catalog.Loader](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return repository.New(loader, storeHandle.Store, log.Logger), nil
}
