package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Spec is the environment configuration needed for the registry to start.
//
// DSN selects the persistence backend: empty means the in-memory stores,
// anything else is treated as a postgres connection string. RedisURL is
// optional; when set, resolved API-key identities are cached there.
type Spec struct {
	Addr        string `envconfig:"addr" default:":8080"`
	MetricsAddr string `envconfig:"metrics_addr" default:":9090"`

	AdminAPIKey string `envconfig:"admin_api_key" required:"true"`
	AuthHeader  string `envconfig:"auth_header" default:"X-Api-Key"`
	AuthScheme  string `envconfig:"auth_scheme" default:"ApiKey"`

	DSN      string `envconfig:"dsn"`
	RedisURL string `envconfig:"redis_url"`

	IdentityCacheTTL time.Duration `envconfig:"identity_cache_ttl" default:"30s"`

	LogLevel string `envconfig:"log_level" default:"info"`
	Debug    bool   `envconfig:"debug" default:"false"`
}

// FromEnv builds a Spec from BOTREGISTRY_-prefixed environment variables so
// main stays lean.
func FromEnv() (Spec, error) {
	var spec Spec
	err := envconfig.Process("botregistry", &spec)
	return spec, err
}
