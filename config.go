package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFile    = "./config.yml"
	ConfigEnvFile = "./config.env"
	EnvPrefix     = "BOOKS"
)

// Config defines the structure of the configuration file.
// Environment keys are prefixed with BOOKS_. Fields carrying
// an explicit envconfig tag are also read by that short name.
type Config struct {
	GitCommit          string        `yaml:"git_commit" split_words:"true"`
	GitTag             string        `yaml:"git_tag" split_words:"true"`
	BuildTime          string        `yaml:"build_time" split_words:"true"`
	IsProduction       bool          `yaml:"is_production" split_words:"true"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFile            string        `yaml:"log_file" split_words:"true"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" split_words:"true"`
	ProfilerEnable     bool          `yaml:"profiler_enable" split_words:"true"`
	Server             ServerConfig  `yaml:"server"`
	Events             EventsConfig  `yaml:"events"`
	Redis              RedisConfig   `yaml:"redis"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// EventsConfig controls the publication of created books to redis.
type EventsConfig struct {
	Enable bool   `yaml:"enable"`
	Queue  string `yaml:"queue"`
}

type RedisConfig struct {
	Host          string        `yaml:"host"`
	Port          string        `yaml:"port"`
	DialTimeout   time.Duration `yaml:"dial_timeout" split_words:"true"`
	ReadTimeout   time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout  time.Duration `yaml:"write_timeout" split_words:"true"`
	PoolSize      int           `yaml:"pool_size" split_words:"true"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" split_words:"true"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password" json:"-"`
	DatabaseIndex int           `yaml:"db_index" split_words:"true"`
}

// NewDefaultConfig provides the configuration used when no file
// nor environment variable overrides a setting.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: zapcore.DebugLevel,
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8090",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RequestTimeout:  15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Events: EventsConfig{
			Queue: DefaultEventsQueue,
		},
		Redis: RedisConfig{
			Host:        "localhost",
			Port:        "6379",
			DialTimeout: 5 * time.Second,
			PoolSize:    10,
		},
	}
}

// LoadConfigFile overrides config values with the ones found in the yaml file.
// A missing file is not an error.
func LoadConfigFile(configFile string, config *Config) error {
	file, err := os.Open(configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()
	if err = yaml.NewDecoder(file).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadConfigEnvs reads the environments variables and overrides the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig configures build tags values to be used if provided
// then ensures the mandatory settings are present.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port")
	}

	if config.Events.Enable {
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port when events are enabled")
		}
		if len(config.Events.Queue) == 0 {
			return errors.New("make sure to set the events queue name when events are enabled")
		}
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	config := NewDefaultConfig()

	// Setup the yaml configuration from file.
	if err := LoadConfigFile(ConfigFile, config); err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration. Already defined variables win.
	if err := godotenv.Load(ConfigEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BOOKS`.
	if err := LoadConfigEnvs(EnvPrefix, config); err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	if err := InitConfig(config, gitCommit, gitTag, buildTime); err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
