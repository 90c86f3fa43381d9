package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment variables read by the App.
const EnvPrefix = "DPAP"

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit    string         `yaml:"git_commit" json:"git_commit" envconfig:"DPAP_GIT_COMMIT"`
	GitTag       string         `yaml:"git_tag" json:"git_tag" envconfig:"DPAP_GIT_TAG"`
	BuildTime    string         `yaml:"build_time" json:"build_time" envconfig:"DPAP_BUILD_TIME"`
	IsProduction bool           `yaml:"is_production" json:"is_production" envconfig:"DPAP_IS_PRODUCTION"`
	LogLevel     zapcore.Level  `yaml:"log_level" json:"log_level" envconfig:"DPAP_LOG_LEVEL"`
	LogFolder    string         `yaml:"log_folder" json:"log_folder" envconfig:"DPAP_LOG_FOLDER" validate:"required"`
	LogMaxSize   int            `yaml:"log_max_size" json:"log_max_size" envconfig:"DPAP_LOG_MAX_SIZE" validate:"gte=1"`
	Server       ServerConfig   `yaml:"server" json:"server"`
	Postgres     PostgresConfig `yaml:"postgres" json:"postgres"`
	Redis        RedisConfig    `yaml:"redis" json:"redis"`
	Archive      ArchiveConfig  `yaml:"archive" json:"archive"`
}

type ServerConfig struct {
	Host               string        `yaml:"host" json:"host" envconfig:"DPAP_SERVER_HOST" validate:"required"`
	Port               string        `yaml:"port" json:"port" envconfig:"DPAP_SERVER_PORT" validate:"required,numeric"`
	ReadTimeout        time.Duration `yaml:"read_timeout" json:"read_timeout" envconfig:"DPAP_SERVER_READ_TIMEOUT"`
	WriteTimeout       time.Duration `yaml:"write_timeout" json:"write_timeout" envconfig:"DPAP_SERVER_WRITE_TIMEOUT"`
	RequestTimeout     time.Duration `yaml:"request_timeout" json:"request_timeout" envconfig:"DPAP_SERVER_REQUEST_TIMEOUT" validate:"gt=0"` // Time to wait for a request to finish
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" envconfig:"DPAP_SERVER_SHUTDOWN_TIMEOUT"`
	MaxBodySize        int64         `yaml:"max_body_size" json:"max_body_size" envconfig:"DPAP_SERVER_MAX_BODY_SIZE" validate:"gt=0"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" json:"ops_endpoints_enable" envconfig:"DPAP_SERVER_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" json:"profiler_enable" envconfig:"DPAP_SERVER_PROFILER_ENABLE"`
}

type PostgresConfig struct {
	DSN            string        `yaml:"dsn" json:"-" envconfig:"DPAP_POSTGRES_DSN" validate:"required"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout" envconfig:"DPAP_POSTGRES_CONNECT_TIMEOUT" validate:"gt=0"`
	QueryTimeout   time.Duration `yaml:"query_timeout" json:"query_timeout" envconfig:"DPAP_POSTGRES_QUERY_TIMEOUT" validate:"gt=0"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" json:"host" envconfig:"DPAP_REDIS_HOST"`
	Port          string        `yaml:"port" json:"port" envconfig:"DPAP_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" json:"dial_timeout" envconfig:"DPAP_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" json:"read_timeout" envconfig:"DPAP_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" json:"write_timeout" envconfig:"DPAP_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" json:"pool_size" envconfig:"DPAP_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" json:"pool_timeout" envconfig:"DPAP_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" json:"-" envconfig:"DPAP_REDIS_USERNAME"`
	Password      string        `yaml:"password" json:"-" envconfig:"DPAP_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" json:"db_index" envconfig:"DPAP_REDIS_DATABASE_INDEX"`
}

// ArchiveConfig controls the change feed which mirrors
// every book write into a local bolt database.
type ArchiveConfig struct {
	Enable     bool          `yaml:"enable" json:"enable" envconfig:"DPAP_ARCHIVE_ENABLE"`
	FilePath   string        `yaml:"filepath" json:"filepath" envconfig:"DPAP_ARCHIVE_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" envconfig:"DPAP_ARCHIVE_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" json:"bucket_name" envconfig:"DPAP_ARCHIVE_BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and overrides the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig configures build tags values to be used if provided
// then validates the final set of settings.
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

	return ValidateConfig(config)
}

// ValidateConfig checks required settings. The redis and archive
// sections are only mandatory once the archive is turned on.
func ValidateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !config.Archive.Enable {
		return nil
	}

	if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
		return errors.New("make sure to set valid redis address and port when archive is enabled")
	}

	if len(config.Archive.FilePath) == 0 || len(config.Archive.BucketName) == 0 {
		return errors.New("make sure to set archive file path and bucket name when archive is enabled")
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration. The env file is optional.
	err = godotenv.Load("./config.env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `DPAP`.
	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
