package cli

import (
	"fmt"
	"log/slog"

	coreapp "usetidy/internal/core/app"
	"usetidy/internal/core/config"
	"usetidy/internal/core/ports"
)

type organizeFactory interface {
	New(cfg *config.Config) (ports.OrganizeService, *coreapp.App, error)
}

type coreOrganizeFactory struct{}

func (coreOrganizeFactory) New(cfg *config.Config) (ports.OrganizeService, *coreapp.App, error) {
	app, err := coreapp.New(cfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return coreapp.NewOrganizeService(app), app, nil
}

func initializeOrganize(cfg *config.Config, factory organizeFactory) (ports.OrganizeService, *coreapp.App, error) {
	if factory == nil {
		return nil, nil, fmt.Errorf("organize factory is required")
	}
	return factory.New(cfg)
}
