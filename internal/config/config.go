package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic information about the application.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // "development" or "production"
}

// LoggerConfig defines the logger settings.
type LoggerConfig struct {
	Level string `yaml:"level"` // log level ("info", "debug", "warn", "error")
}

// MongoConfig defines the MongoDB connection settings.
type MongoConfig struct {
	Address  string `yaml:"address"`  // MongoDB connection URI
	Username string `yaml:"username"` // username, optional
	Password string `yaml:"password"` // password, optional
	Database string `yaml:"database"` // database name
}

// RedisConfig defines the Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis server address (e.g. "localhost:6379")
	Password string `yaml:"password"` // Redis password
	DB       int    `yaml:"db"`       // Redis database number
}

// DatabaseConfigs groups all database settings.
type DatabaseConfigs struct {
	MongoDB MongoConfig `yaml:"mongodb"`
	Redis   RedisConfig `yaml:"redis"`
}

// ScheduleConfig defines the transit schedule lookup collaborator.
type ScheduleConfig struct {
	BaseURL         string `yaml:"baseURL"`         // schedule API endpoint
	APIKey          string `yaml:"apiKey"`          // schedule API key
	TimeoutSeconds  int    `yaml:"timeoutSeconds"`  // per-request timeout, default 10
	CacheTTLMinutes int    `yaml:"cacheTTLMinutes"` // Redis cache TTL for responses, default 15
	ResultTimezone  string `yaml:"resultTimezone"`  // timezone requested for API timestamps
	SearchLimit     int    `yaml:"searchLimit"`     // max runs per lookup, default 300
}

// MatchingConfig defines the window arithmetic and candidate pool settings.
type MatchingConfig struct {
	Timezone                string `yaml:"timezone"`                // IANA name used for all resolved windows
	ToleranceMinutes        int    `yaml:"toleranceMinutes"`        // half-width for single-time input, default 15
	GraceMinutes            int    `yaml:"graceMinutes"`            // day-rollover grace, default 30
	PostWindowMarginMinutes int    `yaml:"postWindowMarginMinutes"` // record TTL beyond window end, default 60
	CandidateCollection     string `yaml:"candidateCollection"`     // Mongo collection for candidate sets
	ProfileCollection       string `yaml:"profileCollection"`       // Mongo collection for user profiles
}

// TelegramConfig defines the Telegram bot settings.
type TelegramConfig struct {
	Token string `yaml:"token"` // bot API token
}

// KafkaConfig defines the Kafka settings for the queue notification transport.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"` // broker address list
	Topic   string   `yaml:"topic"`   // notification topic
}

// NotifyConfig selects how match notifications are delivered.
type NotifyConfig struct {
	Transport string      `yaml:"transport"` // "telegram" (default) or "kafka"
	Kafka     KafkaConfig `yaml:"kafka"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address (e.g. ":8080")
}

// AppConfig is the root structure of the YAML configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Logger    LoggerConfig    `yaml:"logger"`
	Databases DatabaseConfigs `yaml:"databases"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Matching  MatchingConfig  `yaml:"matching"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Notify    NotifyConfig    `yaml:"notify"`
	Server    ServerConfig    `yaml:"server"`
}

// LoadConfig reads and parses the YAML configuration file at the given path.
// Values of the form ${VAR} are expanded from the environment so secrets
// (bot token, database passwords) stay out of the file itself.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(yamlFile))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Schedule.TimeoutSeconds <= 0 {
		c.Schedule.TimeoutSeconds = 10
	}
	if c.Schedule.CacheTTLMinutes <= 0 {
		c.Schedule.CacheTTLMinutes = 15
	}
	if c.Schedule.SearchLimit <= 0 {
		c.Schedule.SearchLimit = 300
	}
	if c.Matching.Timezone == "" {
		c.Matching.Timezone = "Europe/Moscow"
	}
	if c.Matching.ToleranceMinutes <= 0 {
		c.Matching.ToleranceMinutes = 15
	}
	if c.Matching.GraceMinutes <= 0 {
		c.Matching.GraceMinutes = 30
	}
	if c.Matching.PostWindowMarginMinutes <= 0 {
		c.Matching.PostWindowMarginMinutes = 60
	}
	if c.Matching.CandidateCollection == "" {
		c.Matching.CandidateCollection = "candidate_sets"
	}
	if c.Matching.ProfileCollection == "" {
		c.Matching.ProfileCollection = "users"
	}
	if c.Notify.Transport == "" {
		c.Notify.Transport = "telegram"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
}

// Location resolves the configured matching timezone.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Matching.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid matching timezone '%s': %w", c.Matching.Timezone, err)
	}
	return loc, nil
}
