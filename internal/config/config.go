// Package config loads service configuration from built-in defaults, an
// optional YAML file and the environment, in that order of precedence.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/joao-fontenele/orderflow-cyclic/internal/generator"
	"github.com/joao-fontenele/orderflow-cyclic/internal/resolver"
)

//go:embed defaults.yaml
var defaults []byte

const (
	DriverPostgres  = "postgres"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

type Config struct {
	Port             int    `koanf:"port"`
	StoreDriver      string `koanf:"store_driver"`
	PostgresURL      string `koanf:"postgres_url"`
	MongoURI         string `koanf:"mongo_uri"`
	MongoDB          string `koanf:"mongo_db"`
	FirestoreProject string `koanf:"firestore_project"`
	// FixturesFile seeds the memory driver.
	FixturesFile     string `koanf:"fixtures_file"`
	KafkaBrokers     string `koanf:"kafka_brokers"`
	DaysAhead        int    `koanf:"days_ahead"`
	StatusPolicy     string `koanf:"status_policy"`
	IconicFallback   string `koanf:"iconic_fallback"`
	Timezone         string `koanf:"timezone"`
	FlushConcurrency int    `koanf:"flush_concurrency"`
	NotifyWebhookURL string `koanf:"notify_webhook_url"`
	OTLPEndpoint     string `koanf:"otel_exporter_otlp_endpoint"`
}

// Load reads defaults, then the YAML file at path when path is not empty,
// then environment variables named after the upper-cased keys.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	known := k.All()
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(key)
			if _, ok := known[key]; !ok {
				return "", nil
			}
			return key, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("config: postgres_url is required for the %s driver", c.StoreDriver)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config: mongo_uri is required for the %s driver", c.StoreDriver)
		}
	case DriverFirestore:
		if c.FirestoreProject == "" {
			return fmt.Errorf("config: firestore_project is required for the %s driver", c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown store_driver %q", c.StoreDriver)
	}

	if c.DaysAhead < 0 {
		return fmt.Errorf("config: days_ahead must not be negative")
	}
	if c.FlushConcurrency < 1 {
		return fmt.Errorf("config: flush_concurrency must be at least 1")
	}
	if _, err := generator.ParseStatusPolicy(c.StatusPolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := resolver.ParseFallbackPolicy(c.IconicFallback); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the zone deadline hours are expressed in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}

func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// EngineOptions translates the policy settings into engine options.
// Validate must have succeeded.
func (c *Config) EngineOptions() []generator.Option {
	status, _ := generator.ParseStatusPolicy(c.StatusPolicy)
	fallback, _ := resolver.ParseFallbackPolicy(c.IconicFallback)
	loc, _ := c.Location()
	return []generator.Option{
		generator.WithStatusPolicy(status),
		generator.WithFallbackPolicy(fallback),
		generator.WithLocation(loc),
		generator.WithFlushConcurrency(c.FlushConcurrency),
	}
}
