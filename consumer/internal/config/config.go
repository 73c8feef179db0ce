package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrFatal marks configuration problems that must prevent the loop from
// starting at all.
var ErrFatal = errors.New("fatal configuration error")

type Config struct {
	AWS     AWSConfig     `yaml:"aws"`
	Queue   QueueConfig   `yaml:"queue"`
	Storage StorageConfig `yaml:"storage"`
	Loop    LoopConfig    `yaml:"loop"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type QueueConfig struct {
	URL string `yaml:"url"`
}

type StorageConfig struct {
	Bucket string `yaml:"bucket"`
}

type LoopConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxMessages  int32         `yaml:"max_messages"`
	WaitTime     time.Duration `yaml:"wait_time"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Loop: LoopConfig{
			PollInterval: 10 * time.Second,
			MaxMessages:  10,
			WaitTime:     20 * time.Second,
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("AWS_ENDPOINT"); v != "" {
		cfg.AWS.Endpoint = v
	}
	if v := os.Getenv("SQS_QUEUE_URL"); v != "" {
		cfg.Queue.URL = v
	}
	if v := os.Getenv("S3_BUCKET_NAME"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			cfg.Loop.PollInterval = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("MAX_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Loop.MaxMessages = int32(n)
		}
	}
}

// Validate reports configuration-fatal problems.
func (c *Config) Validate() error {
	if c.Queue.URL == "" {
		return fmt.Errorf("%w: queue.url is required", ErrFatal)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket is required", ErrFatal)
	}
	if c.Loop.MaxMessages < 1 || c.Loop.MaxMessages > 10 {
		return fmt.Errorf("%w: loop.max_messages must be between 1 and 10", ErrFatal)
	}
	return nil
}
