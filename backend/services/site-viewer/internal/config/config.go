package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	libconfig "siteviewer/backend/libs/config"
	"siteviewer/backend/services/site-viewer/internal/service"
	"siteviewer/backend/services/site-viewer/internal/socrata"
)

const (
	defaultPort         = "8050"
	defaultBaseURL      = "https://data.kingcounty.gov"
	defaultMetadata     = "g7er-dgc7"
	defaultTelemetry    = "gzfg-8xtp"
	defaultTimeout      = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
	localZone           = "Local"
)

// Config defines site viewer configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"SITE_VIEWER_HTTP_PORT"`
	} `yaml:"http"`
	Socrata   SocrataConfig   `yaml:"socrata"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// SocrataConfig points at the open data portal.
type SocrataConfig struct {
	BaseURL          string        `yaml:"baseUrl" env:"SOCRATA_BASE_URL"`
	KeyID            string        `yaml:"keyId" env:"SOCRATA_API_KEY_ID" required:"true"`
	KeySecret        string        `yaml:"keySecret" env:"SOCRATA_API_KEY_SECRET" required:"true"`
	MetadataDataset  string        `yaml:"metadataDataset" env:"SOCRATA_METADATA_DATASET"`
	TelemetryDataset string        `yaml:"telemetryDataset" env:"SOCRATA_TELEMETRY_DATASET"`
	Timeout          time.Duration `yaml:"timeout" env:"SOCRATA_TIMEOUT"`
}

type PipelineConfig struct {
	Dedup    string `yaml:"dedup" env:"PIPELINE_DEDUP"`
	Timezone string `yaml:"timezone" env:"PIPELINE_TIMEZONE"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval" env:"SITE_VIEWER_WS_PING_INTERVAL"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"SITE_VIEWER_WS_WRITE_TIMEOUT"`
}

// Load uses shared config loader and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Socrata: SocrataConfig{
			BaseURL:          defaultBaseURL,
			MetadataDataset:  defaultMetadata,
			TelemetryDataset: defaultTelemetry,
			Timeout:          defaultTimeout,
		},
		Pipeline: PipelineConfig{
			Dedup:    string(service.DedupNone),
			Timezone: localZone,
		},
		WebSocket: WebSocketConfig{
			PingInterval: defaultPingInterval,
			WriteTimeout: defaultWriteTimeout,
		},
	}
	cfg.HTTP.Port = defaultPort

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(strings.TrimSpace(c.Socrata.BaseURL))
	if err != nil || u.Host == "" {
		return fmt.Errorf("config: invalid socrata base url %q", c.Socrata.BaseURL)
	}
	if strings.TrimSpace(c.Socrata.MetadataDataset) == "" || strings.TrimSpace(c.Socrata.TelemetryDataset) == "" {
		return fmt.Errorf("config: socrata dataset ids are required")
	}
	if c.Socrata.Timeout <= 0 {
		return fmt.Errorf("config: socrata timeout must be positive")
	}
	if _, ok := service.ParseDedupPolicy(c.Pipeline.Dedup); !ok {
		return fmt.Errorf("config: unknown dedup policy %q", c.Pipeline.Dedup)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// HTTPAddress returns :port style address.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// Location returns the zone used to compute the telemetry window.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Pipeline.Timezone)
	if name == "" || name == localZone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// Dedup returns the configured duplicate policy.
func (c *Config) Dedup() service.DedupPolicy {
	policy, _ := service.ParseDedupPolicy(c.Pipeline.Dedup)
	return policy
}

// SocrataOptions returns client options.
func (c *Config) SocrataOptions() (socrata.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return socrata.Options{}, err
	}
	return socrata.Options{
		BaseURL:          strings.TrimSpace(c.Socrata.BaseURL),
		KeyID:            c.Socrata.KeyID,
		KeySecret:        c.Socrata.KeySecret,
		MetadataDataset:  c.Socrata.MetadataDataset,
		TelemetryDataset: c.Socrata.TelemetryDataset,
		Timeout:          c.Socrata.Timeout,
		Location:         loc,
	}, nil
}

// PingInterval returns websocket ping interval.
func (c *Config) PingInterval() time.Duration {
	if c.WebSocket.PingInterval <= 0 {
		return defaultPingInterval
	}
	return c.WebSocket.PingInterval
}

// WriteTimeout returns websocket write timeout.
func (c *Config) WriteTimeout() time.Duration {
	if c.WebSocket.WriteTimeout <= 0 {
		return defaultWriteTimeout
	}
	return c.WebSocket.WriteTimeout
}
