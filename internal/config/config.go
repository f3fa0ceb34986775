package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the public question service the survey client talks to.
const DefaultBaseURL = "https://xm-assignment.web.app"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Survey struct {
		BaseURL           string `yaml:"base_url"`
		RequestTimeout    string `yaml:"request_timeout"`
		NotificationDelay string `yaml:"notification_delay"`
	} `yaml:"survey"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL string `yaml:"ttl"`
	} `yaml:"questions"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Survey.BaseURL = DefaultBaseURL
	cfg.Survey.RequestTimeout = "10s"
	cfg.Survey.NotificationDelay = "3s"
	cfg.Questions.TTL = "10m"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
