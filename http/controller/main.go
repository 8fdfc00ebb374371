package controller

import (
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/repository"
	"github.com/tnqbao/gau-drive-service/service"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Service    *service.DriveService
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}

	var releaser service.BlobReleaser = service.NewDirectReleaser(infra.Blob)
	if infra.Produce != nil && infra.Produce.BlobService != nil {
		releaser = infra.Produce.BlobService
	}

	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Service: service.NewDriveService(
			repo.EntryRepo,
			infra.Blob,
			releaser,
			infra.Logger,
			service.OptionsFromConfig(config.EnvConfig),
		),
	}
}
