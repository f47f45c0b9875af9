// Package config loads taskboard settings from TASKBOARD_* environment
// variables and an optional YAML file named by TASKBOARD_CONFIG.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TASKBOARD"

type Config struct {
	HTTP   HTTPConfig
	DB     DBConfig
	Redis  RedisConfig
	Cache  CacheConfig
	Kafka  KafkaConfig
	Log    LogConfig
	API    APIConfig
	Client ClientConfig
}

type HTTPConfig struct {
	Port string
}

type DBConfig struct {
	Driver      string
	PostgresDSN string
	SQLitePath  string
	Debug       bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	TaskTTL time.Duration
	ListTTL time.Duration
}

type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
	LogFile string
}

type LogConfig struct {
	Level  string
	Format string
}

type APIConfig struct {
	Port        string
	UpstreamURL string
}

type ClientConfig struct {
	BaseURL   string
	StateFile string
	Timeout   time.Duration
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.port", "8081")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.postgres.dsn", "")
	v.SetDefault("db.sqlite.path", "taskboard.db")
	v.SetDefault("db.debug", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.task_ttl", 60*time.Second)
	v.SetDefault("cache.list_ttl", 15*time.Second)
	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.topic", "task-events")
	v.SetDefault("kafka.group_id", "kafka-logger-group")
	v.SetDefault("kafka.log_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.upstream_url", "http://localhost:8081")
	v.SetDefault("client.base_url", "http://localhost:8080/api")
	v.SetDefault("client.state_file", defaultStateFile())
	v.SetDefault("client.timeout", 10*time.Second)

	return v
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskboard-state.yaml"
	}
	return filepath.Join(home, ".taskboard", "state.yaml")
}

// Load reads the configuration. Values from the environment win over the file.
func Load() (*Config, error) {
	v := newViper()

	if file := os.Getenv(envPrefix + "_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTPConfig{Port: v.GetString("http.port")},
		DB: DBConfig{
			Driver:      strings.ToLower(v.GetString("db.driver")),
			PostgresDSN: v.GetString("db.postgres.dsn"),
			SQLitePath:  v.GetString("db.sqlite.path"),
			Debug:       v.GetBool("db.debug"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			TaskTTL: v.GetDuration("cache.task_ttl"),
			ListTTL: v.GetDuration("cache.list_ttl"),
		},
		Kafka: KafkaConfig{
			Broker:  v.GetString("kafka.broker"),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.group_id"),
			LogFile: v.GetString("kafka.log_file"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		API: APIConfig{
			Port:        v.GetString("api.port"),
			UpstreamURL: strings.TrimRight(v.GetString("api.upstream_url"), "/"),
		},
		Client: ClientConfig{
			BaseURL:   strings.TrimRight(v.GetString("client.base_url"), "/"),
			StateFile: v.GetString("client.state_file"),
			Timeout:   v.GetDuration("client.timeout"),
		},
	}
}

// ValidateServer checks the settings the task service cannot start without.
func (c *Config) ValidateServer() error {
	if c.HTTP.Port == "" {
		return fmt.Errorf("http.port is not configured")
	}
	switch c.DB.Driver {
	case "postgres":
		if c.DB.PostgresDSN == "" {
			return fmt.Errorf("db.postgres.dsn is not configured")
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("db.sqlite.path is not configured")
		}
	default:
		return fmt.Errorf("unsupported db.driver %q (want postgres or sqlite)", c.DB.Driver)
	}
	return nil
}

// ValidateGateway checks the settings of the API gateway.
func (c *Config) ValidateGateway() error {
	if c.API.Port == "" || c.API.UpstreamURL == "" {
		return fmt.Errorf("api.port or api.upstream_url is not configured")
	}
	return nil
}

// ValidateEventLogger checks the settings of the Kafka event logger.
func (c *Config) ValidateEventLogger() error {
	if c.Kafka.Broker == "" || c.Kafka.Topic == "" || c.Kafka.LogFile == "" {
		return fmt.Errorf("kafka.broker, kafka.topic or kafka.log_file is not configured")
	}
	return nil
}
