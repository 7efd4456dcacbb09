package config

import "time"

// SentimentConfig selects and configures the sentiment annotation
// provider. The keyword provider runs offline; azure calls the Azure AI
// Language REST API and needs an endpoint plus api key.
type SentimentConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string          `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration   `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string          `mapstructure:"log_level" yaml:"log_level"`
	DatabasePath      string          `mapstructure:"database_path" yaml:"database_path"`
	Sentiment         SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "sentichat.db",
		Sentiment: SentimentConfig{
			Provider: "keyword",
			Timeout:  10 * time.Second,
		},
	}
}
