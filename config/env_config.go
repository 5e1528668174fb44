package config

import (
	"os"
	"strconv"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		Database int
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	JWT struct {
		SecretKey string
	}
	OpenStack struct {
		RootURL           string
		ProjectID         string
		NeutronPort       int
		PublicNetworkID   string
		PrivateNetworkID  string
		SubnetID          string
		DefaultVolumeType string
	}
	Poll struct {
		IntervalSeconds int
		Limit           int
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = os.Getenv("POSTGRES_HOST")
	config.Postgres.Database = os.Getenv("POSTGRES_DB")
	config.Postgres.Username = os.Getenv("POSTGRES_USER")
	config.Postgres.Password = os.Getenv("POSTGRES_PASSWORD")
	config.Postgres.Port = os.Getenv("POSTGRES_PORT")

	// Redis
	config.Redis.Host = os.Getenv("REDIS_HOST")
	config.Redis.Port = os.Getenv("REDIS_PORT")
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			config.Redis.Database = db
		}
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")

	// OpenStack
	config.OpenStack.RootURL = os.Getenv("OPENSTACK_ROOT_URL")
	config.OpenStack.ProjectID = os.Getenv("OPENSTACK_PROJECT_ID")
	config.OpenStack.NeutronPort = 9696
	if val := os.Getenv("OPENSTACK_NEUTRON_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.OpenStack.NeutronPort = port
		}
	}
	config.OpenStack.PublicNetworkID = os.Getenv("OPENSTACK_PUBLIC_NETWORK_ID")
	config.OpenStack.PrivateNetworkID = os.Getenv("OPENSTACK_PRIVATE_NETWORK_ID")
	config.OpenStack.SubnetID = os.Getenv("OPENSTACK_SUBNET_ID")
	config.OpenStack.DefaultVolumeType = os.Getenv("OPENSTACK_DEFAULT_VOLUME_TYPE")
	if config.OpenStack.DefaultVolumeType == "" {
		config.OpenStack.DefaultVolumeType = "lvmdriver-1"
	}

	// Poller bounds: 1s x 100 ticks unless overridden
	config.Poll.IntervalSeconds = 1
	config.Poll.Limit = 100
	if val := os.Getenv("POLL_INTERVAL_SECONDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 1 {
			config.Poll.IntervalSeconds = n
		}
	}
	if val := os.Getenv("POLL_LIMIT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 1 {
			config.Poll.Limit = n
		}
	}

	// Observability
	config.Grafana.OTLPEndpoint = os.Getenv("OTLP_ENDPOINT")
	config.Grafana.ServiceName = os.Getenv("OTLP_SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "ostack-console"
	}

	config.Environment.Mode = os.Getenv("ENVIRONMENT_MODE")

	return &config
}
