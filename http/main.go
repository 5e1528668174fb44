package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/plumstack/ostack-console/config"
	"github.com/plumstack/ostack-console/http/controller"
	routes "github.com/plumstack/ostack-console/http/route"
	infraPkg "github.com/plumstack/ostack-console/infra"
	"github.com/plumstack/ostack-console/repository"
	"github.com/plumstack/ostack-console/service"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra.Postgres.DB)
	svc := service.InitService(cfg, repo, infra)

	ctrl := controller.NewController(cfg, infra, repo, svc)

	router := routes.SetupRouter(ctrl)

	log.Println("HTTP Server started on :8080")
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
