package di

import (
	"context"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"scholarmind/application/ports"
	"scholarmind/application/store"
	"scholarmind/infrastructure/config"
	"scholarmind/infrastructure/identity"
	"scholarmind/infrastructure/persistence/dynamodb"
	"scholarmind/infrastructure/persistence/memory"
	"scholarmind/pkg/auth"
	"scholarmind/pkg/observability"
)

// devJWTSecret keeps local development working without configuration.
// Config validation refuses an empty secret in production.
const devJWTSecret = "development-secret-change-in-production"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideRegistry creates the Prometheus registry
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates and registers the metrics collector
func ProvideMetrics(reg *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(reg)
}

// ProvideKeyValueStore creates the configured key-value adapter
func ProvideKeyValueStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.KeyValueStore, error) {
	if cfg.StorageBackend == config.BackendDynamoDB {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			return nil, err
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamodb.NewKVStore(client, cfg.DynamoDBTable, logger), nil
	}

	return memory.NewStore(), nil
}

// ProvideIdentityProvider creates the local identity provider
func ProvideIdentityProvider(kv ports.KeyValueStore, logger *zap.Logger) ports.IdentityProvider {
	return identity.NewProvider(kv, logger)
}

// ProvideTokenService creates the JWT token service
func ProvideTokenService(cfg *config.Config) (*auth.TokenService, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = devJWTSecret
	}
	ttl := time.Duration(cfg.TokenTTLMin) * time.Minute
	return auth.NewTokenService(secret, cfg.JWTIssuer, ttl)
}

// ProvideSessionStore creates the session state store
func ProvideSessionStore(kv ports.KeyValueStore, provider ports.IdentityProvider, data *store.DataStore, logger *zap.Logger) *store.SessionStore {
	return store.NewSessionStore(kv, provider, data, logger)
}

// ProvideDataStore creates the domain data store
func ProvideDataStore(kv ports.KeyValueStore, metrics *observability.Metrics, logger *zap.Logger) *store.DataStore {
	return store.NewDataStore(kv, metrics, logger)
}
