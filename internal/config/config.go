package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Workers  WorkersConfig  `yaml:"workers"`
	Schema   SchemaConfig   `yaml:"schema"`
	Upload   UploadConfig   `yaml:"upload"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// Driver is "mysql" or "memory".
	Driver             string        `yaml:"driver"`
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	PoolSize       int    `yaml:"pool_size"`
	IngestionQueue string `yaml:"ingestion_queue"`
	DLQSuffix      string `yaml:"dlq_suffix"`
}

type StorageConfig struct {
	// Driver is "s3" or "memory".
	Driver         string   `yaml:"driver"`
	OriginalPrefix string   `yaml:"original_prefix"`
	ErrorsPrefix   string   `yaml:"errors_prefix"`
	S3             S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type WorkersConfig struct {
	Ingestion IngestionWorkerConfig `yaml:"ingestion"`
}

type IngestionWorkerConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
	// ReplayDeadLetters moves dead-lettered jobs back onto the queue at startup.
	ReplayDeadLetters bool `yaml:"replay_dead_letters"`
}

// SchemaConfig selects the workbook layout and the worksheet titles it accepts.
type SchemaConfig struct {
	Version      string   `yaml:"version"`
	SheetAliases []string `yaml:"sheet_aliases"`
	SheetPattern string   `yaml:"sheet_pattern"`
}

type UploadConfig struct {
	MaxBytes     int64 `yaml:"max_bytes"`
	ErrorPreview int   `yaml:"error_preview"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config and fills defaults for anything left unset.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "aps-preliquidacion"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.Loc == "" {
		c.Database.Loc = "UTC"
	}
	if c.Redis.IngestionQueue == "" {
		c.Redis.IngestionQueue = "payroll:ingestion"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "s3"
	}
	if c.Storage.OriginalPrefix == "" {
		c.Storage.OriginalPrefix = "originales"
	}
	if c.Storage.ErrorsPrefix == "" {
		c.Storage.ErrorsPrefix = "errores"
	}
	if c.Workers.Ingestion.Count <= 0 {
		c.Workers.Ingestion.Count = 2
	}
	if c.Workers.Ingestion.QueueSize <= 0 {
		c.Workers.Ingestion.QueueSize = c.Workers.Ingestion.Count * 4
	}
	if c.Schema.Version == "" {
		c.Schema.Version = schema.VersionLibroPrimario
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 10 << 20
	}
	if c.Upload.ErrorPreview <= 0 {
		c.Upload.ErrorPreview = 50
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Layout resolves the configured schema version with its sheet aliases and pattern.
func (c SchemaConfig) Layout() (*schema.Schema, error) {
	s, ok := schema.Lookup(c.Version)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSchema, c.Version)
	}

	opts := []schema.Option{schema.WithSheetAliases(c.SheetAliases...)}
	if c.SheetPattern != "" {
		re, err := regexp.Compile(c.SheetPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid sheet pattern %q: %w", c.SheetPattern, err)
		}
		opts = append(opts, schema.WithSheetPattern(re))
	}
	return s.With(opts...), nil
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
