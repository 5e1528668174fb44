package controller

import (
	"github.com/plumstack/ostack-console/config"
	"github.com/plumstack/ostack-console/infra"
	"github.com/plumstack/ostack-console/repository"
	"github.com/plumstack/ostack-console/service"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Service    *service.Service
}

func NewController(cfg *config.Config, inf *infra.Infra, repo *repository.Repository, svc *service.Service) *Controller {
	return &Controller{
		Config:     cfg,
		Infra:      inf,
		Repository: repo,
		Service:    svc,
	}
}
