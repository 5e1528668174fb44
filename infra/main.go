package infra

import (
	"context"
	"log"

	"github.com/plumstack/ostack-console/client"
	"github.com/plumstack/ostack-console/config"
	"github.com/plumstack/ostack-console/infra/produce"
)

type Infra struct {
	Redis        *RedisClient
	Postgres     *PostgresClient
	Logger       *LoggerClient
	Telemetry    *TelemetryClient
	RabbitMQ     *RabbitMQClient
	Produce      *produce.Produce
	Compute      *client.ComputeClient
	BlockStorage *client.BlockStorageClient
	Network      *client.NetworkClient
	Image        *client.ImageClient
	Identity     *client.IdentityClient
}

func InitInfra(cfg *config.Config) *Infra {
	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	telemetry := InitTelemetryClient(cfg.EnvConfig)

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	compute, err := client.InitComputeClient(cfg.EnvConfig)
	if err != nil {
		log.Fatalf("Failed to initialize Compute client: %v", err)
	}

	blockStorage, err := client.InitBlockStorageClient(cfg.EnvConfig)
	if err != nil {
		log.Fatalf("Failed to initialize BlockStorage client: %v", err)
	}

	network, err := client.InitNetworkClient(cfg.EnvConfig)
	if err != nil {
		log.Fatalf("Failed to initialize Network client: %v", err)
	}

	image := client.InitImageClient(cfg.EnvConfig)
	identity := client.InitIdentityClient(cfg.EnvConfig)

	return &Infra{
		Redis:        redis,
		Postgres:     postgres,
		Logger:       logger,
		Telemetry:    telemetry,
		RabbitMQ:     rabbitMQ,
		Produce:      produceService,
		Compute:      compute,
		BlockStorage: blockStorage,
		Network:      network,
		Image:        image,
		Identity:     identity,
	}
}

func (i *Infra) Shutdown(ctx context.Context) {
	if i.Telemetry != nil {
		i.Telemetry.Shutdown(ctx)
	}
	if i.Logger != nil {
		i.Logger.Shutdown(ctx)
	}
	if i.RabbitMQ != nil {
		i.RabbitMQ.Close()
	}
}
