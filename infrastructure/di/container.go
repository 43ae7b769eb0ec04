package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"scholarmind/application/ports"
	"scholarmind/application/store"
	"scholarmind/infrastructure/config"
	"scholarmind/pkg/auth"
	"scholarmind/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	KV       ports.KeyValueStore
	Identity ports.IdentityProvider
	Sessions *store.SessionStore
	Data     *store.DataStore
	Tokens   *auth.TokenService
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
}
