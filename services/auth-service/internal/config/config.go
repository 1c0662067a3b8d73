package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/credential-api/shared/logger"
)

const (
	ResetStoreMemory = "memory"
	ResetStoreRedis  = "redis"

	DirectoryStoreMongo  = "mongo"
	DirectoryStoreMemory = "memory"
)

// AuthServiceConfig holds the configuration of the auth service.
type AuthServiceConfig struct {
	Port            int           `env:"PORT"             envDefault:"8080"`
	GRPCPort        int           `env:"GRPC_PORT"        envDefault:"9090"`
	AllowedOrigin   string        `env:"ALLOWED_ORIGIN"   envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Log       logger.Config
	Reset     ResetConfig
	Mail      MailConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Discovery DiscoveryConfig
}

// ResetConfig controls the password reset code lifecycle.
type ResetConfig struct {
	ExpiryMinutes int           `env:"RESET_CODE_EXPIRY_MINUTES" envDefault:"10"`
	Store         string        `env:"RESET_STORE"               envDefault:"memory"`
	SweepInterval time.Duration `env:"RESET_SWEEP_INTERVAL"      envDefault:"1m"`
}

// CodeExpiresIn returns the lifetime of a reset code.
func (c ResetConfig) CodeExpiresIn() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

// MailConfig bounds outbound mail. SMTP credentials are read by the mailer itself.
type MailConfig struct {
	Timeout     time.Duration `env:"MAIL_TIMEOUT"       envDefault:"8s"`
	MaxInFlight int           `env:"MAIL_MAX_IN_FLIGHT" envDefault:"32"`
}

// MongoConfig configures the identity directory and profile store. DirectoryStore
// "memory" keeps both in process, for local development.
type MongoConfig struct {
	DirectoryStore string `env:"DIRECTORY_STORE" envDefault:"mongo"`
	URI            string `env:"MONGO_URI"       envDefault:"mongodb://localhost:27017"`
	Database       string `env:"MONGO_DATABASE"  envDefault:"credentials"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// DiscoveryConfig enables Consul registration when ConsulAddr is set.
type DiscoveryConfig struct {
	ConsulAddr  string `env:"CONSUL_ADDR"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth-service"`
	ServiceHost string `env:"SERVICE_HOST" envDefault:"localhost"`
}

// NewAuthServiceConfig parses the configuration from environment variables.
func NewAuthServiceConfig() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AuthServiceConfig) validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort))
	}
	if c.Reset.ExpiryMinutes <= 0 {
		errs = append(errs, errors.New("RESET_CODE_EXPIRY_MINUTES must be positive"))
	}
	switch c.Reset.Store {
	case ResetStoreMemory:
	case ResetStoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("missing REDIS_ADDR environment variable"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RESET_STORE %q", c.Reset.Store))
	}
	if c.Mail.Timeout <= 0 {
		errs = append(errs, errors.New("MAIL_TIMEOUT must be positive"))
	}
	switch c.Mongo.DirectoryStore {
	case DirectoryStoreMemory:
	case DirectoryStoreMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("missing MONGO_URI environment variable"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DIRECTORY_STORE %q", c.Mongo.DirectoryStore))
	}

	return errors.Join(errs...)
}
