package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Geocode  GeocodeConfig `mapstructure:"geocode"`
	Storage  StorageConfig `mapstructure:"storage"`
	Image    ImageConfig   `mapstructure:"image"`
}

// GeocodeConfig represents reverse geocoding configuration
type GeocodeConfig struct {
	ReverseURL string        `mapstructure:"reverse_url"`
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StorageConfig represents object storage connection configuration
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ImageConfig represents image compression configuration
type ImageConfig struct {
	MaxSide int `mapstructure:"max_side"`
	Quality int `mapstructure:"quality"`
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel: "info",
		Geocode: GeocodeConfig{
			ReverseURL: "https://nominatim.openstreetmap.org/reverse",
			UserAgent:  "pytune-helpers-images/1.0",
			Timeout:    10 * time.Second,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			UseSSL: true,
		},
		Image: ImageConfig{
			MaxSide: 1024,
			Quality: 80,
		},
	}
}

// Load reads configuration from an optional config file and PYTUNE_*
// environment variables, layered over the defaults from New.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := New()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("geocode.reverse_url", defaults.Geocode.ReverseURL)
	v.SetDefault("geocode.user_agent", defaults.Geocode.UserAgent)
	v.SetDefault("geocode.timeout", defaults.Geocode.Timeout)
	v.SetDefault("storage.endpoint", defaults.Storage.Endpoint)
	v.SetDefault("storage.region", defaults.Storage.Region)
	v.SetDefault("storage.access_key", defaults.Storage.AccessKey)
	v.SetDefault("storage.secret_key", defaults.Storage.SecretKey)
	v.SetDefault("storage.use_ssl", defaults.Storage.UseSSL)
	v.SetDefault("image.max_side", defaults.Image.MaxSide)
	v.SetDefault("image.quality", defaults.Image.Quality)

	v.SetEnvPrefix("PYTUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
