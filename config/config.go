package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	StorageMinio = "minio"
	StorageGCS   = "gcs"

	MQRabbitMQ = "rabbitmq"
	MQPubSub   = "pubsub"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	MQ       MQConfig       `yaml:"mq"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	Store          string        `yaml:"store"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	UseSSL   bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RedisConfig is optional; an empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Minio   MinioConfig `yaml:"minio"`
	GCS     GCSConfig   `yaml:"gcs"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

type MQConfig struct {
	Backend  string         `yaml:"backend"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	PubSub   PubSubConfig   `yaml:"pubsub"`
}

type RabbitMQConfig struct {
	URL             string `yaml:"url"`
	QueueDurable    bool   `yaml:"queue_durable"`
	QueueAutoDelete bool   `yaml:"queue_auto_delete"`
	PrefetchCount   int    `yaml:"prefetch_count"`
}

type PubSubConfig struct {
	ProjectID          string `yaml:"project_id"`
	CredentialsFile    string `yaml:"credentials_file"`
	SubscriptionSuffix string `yaml:"subscription_suffix"`
}

// SMTPConfig is optional; without credentials the mailer only logs.
type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
	UseTLS    bool   `yaml:"use_tls"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a value.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			Store:          StorePostgres,
			RequestTimeout: 60 * time.Second,
			AutoMigrate:    true,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "alumnet",
			Password: "password",
			DBName:   "alumnet_db",
		},
		Auth: AuthConfig{
			TokenTTL: 30 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Redis: RedisConfig{
			TTL: time.Minute,
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Alumni Network",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// finally environment variables. An empty path falls back to CONFIG_FILE.
func Load(path string) (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	cfg := Defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.Store = getEnv("STORE_BACKEND", cfg.Server.Store)
	cfg.Server.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.Server.RequestTimeout)
	cfg.Server.AutoMigrate = getEnvBool("AUTO_MIGRATE", cfg.Server.AutoMigrate)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.UseSSL = getEnvBool("DB_USE_SSL", cfg.Database.UseSSL)

	cfg.Auth.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", cfg.Auth.JWTSecret))
	cfg.Auth.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.Auth.TokenTTL)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getEnvDuration("REDIS_TTL", cfg.Redis.TTL)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Minio.Endpoint = getEnv("MINIO_ENDPOINT", cfg.Storage.Minio.Endpoint)
	cfg.Storage.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.Storage.Minio.AccessKey)
	cfg.Storage.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.Storage.Minio.SecretKey)
	cfg.Storage.Minio.Bucket = getEnv("MINIO_BUCKET", cfg.Storage.Minio.Bucket)
	cfg.Storage.Minio.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.Storage.Minio.UseSSL)
	cfg.Storage.GCS.Bucket = getEnv("GCS_BUCKET", cfg.Storage.GCS.Bucket)
	cfg.Storage.GCS.ProjectID = getEnv("GCS_PROJECT_ID", cfg.Storage.GCS.ProjectID)
	cfg.Storage.GCS.CredentialsFile = getEnv("GCS_CREDENTIALS_FILE", cfg.Storage.GCS.CredentialsFile)

	cfg.MQ.Backend = getEnv("MQ_BACKEND", cfg.MQ.Backend)
	cfg.MQ.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.MQ.RabbitMQ.URL)
	cfg.MQ.RabbitMQ.QueueDurable = getEnvBool("RABBITMQ_QUEUE_DURABLE", cfg.MQ.RabbitMQ.QueueDurable)
	cfg.MQ.RabbitMQ.QueueAutoDelete = getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", cfg.MQ.RabbitMQ.QueueAutoDelete)
	cfg.MQ.RabbitMQ.PrefetchCount = getEnvInt("RABBITMQ_PREFETCH", cfg.MQ.RabbitMQ.PrefetchCount)
	cfg.MQ.PubSub.ProjectID = getEnv("PUBSUB_PROJECT_ID", cfg.MQ.PubSub.ProjectID)
	cfg.MQ.PubSub.CredentialsFile = getEnv("PUBSUB_CREDENTIALS_FILE", cfg.MQ.PubSub.CredentialsFile)
	cfg.MQ.PubSub.SubscriptionSuffix = getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", cfg.MQ.PubSub.SubscriptionSuffix)

	cfg.SMTP.Host = getEnv("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", cfg.SMTP.Username)
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", cfg.SMTP.Password)
	cfg.SMTP.FromName = getEnv("SMTP_FROM_NAME", cfg.SMTP.FromName)
	cfg.SMTP.FromEmail = getEnv("SMTP_FROM_EMAIL", cfg.SMTP.FromEmail)
	cfg.SMTP.UseTLS = getEnvBool("SMTP_USE_TLS", cfg.SMTP.UseTLS)
}

// Validate reports the first setting that would prevent the server from starting.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	switch c.Server.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Server.Store)
	}
	switch c.Storage.Backend {
	case "", StorageMinio, StorageGCS:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.MQ.Backend {
	case "", MQRabbitMQ, MQPubSub:
	default:
		return fmt.Errorf("unknown mq backend %q", c.MQ.Backend)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}
