package config

import (
	"fmt"
	"image/color"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/wb-go/wbf/retry"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	BackendFS    = "fs"
	BackendMinio = "minio"
	BackendS3    = "s3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Store   StoreConfig   `yaml:"store"`
	Storage StorageConfig `yaml:"storage"`
	Raster  RasterConfig  `yaml:"raster"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Worker  WorkerConfig  `yaml:"worker"`
	Retry   RetryConfig   `yaml:"retry"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SERVER_ADDR"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DBConfig struct {
	Host            string        `yaml:"host"              env:"DB_HOST"              env-default:"localhost"`
	Port            int           `yaml:"port"              env:"DB_PORT"              env-default:"5432"`
	User            string        `yaml:"user"              env:"DB_USER"              env-default:"postgres"`
	Password        string        `yaml:"password"          env:"DB_PASSWORD"          env-default:"postgres"`
	Name            string        `yaml:"name"              env:"DB_NAME"              env-default:"wishboard"`
	SSLMode         string        `yaml:"sslmode"           env:"DB_SSLMODE"           env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns"    env:"DB_MAX_OPEN_CONNS"    env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns"    env:"DB_MAX_IDLE_CONNS"    env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"       env:"STORE_DRIVER"       env-default:"postgres"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"STORE_AUTO_MIGRATE" env-default:"true"`
}

type StorageConfig struct {
	Backend       string      `yaml:"backend"         env:"STORAGE_BACKEND"         env-default:"fs"`
	MaxUploadSize int64       `yaml:"max_upload_size" env:"STORAGE_MAX_UPLOAD_SIZE" env-default:"33554432"`
	FS            FSConfig    `yaml:"fs"`
	Minio         MinioConfig `yaml:"minio"`
	S3            S3Config    `yaml:"s3"`
}

type FSConfig struct {
	Dir       string `yaml:"dir"        env:"STORAGE_FS_DIR"        env-default:"./uploads"`
	PublicURL string `yaml:"public_url" env:"STORAGE_FS_PUBLIC_URL" env-default:"/uploads"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"   env:"MINIO_ENDPOINT"   env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `yaml:"bucket"     env:"MINIO_BUCKET"     env-default:"wishes"`
	Region    string `yaml:"region"     env:"MINIO_REGION"     env-default:"us-east-1"`
	UseSSL    bool   `yaml:"use_ssl"    env:"MINIO_USE_SSL"    env-default:"false"`
	PublicURL string `yaml:"public_url" env:"MINIO_PUBLIC_URL"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"   env:"S3_ENDPOINT"`
	Region    string `yaml:"region"     env:"S3_REGION"     env-default:"us-east-1"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket"     env:"S3_BUCKET"     env-default:"wishes"`
	PublicURL string `yaml:"public_url" env:"S3_PUBLIC_URL"`
}

type RasterConfig struct {
	Quality    int     `yaml:"quality"    env:"RASTER_QUALITY"    env-default:"90"`
	MaxPixels  int     `yaml:"max_pixels" env:"RASTER_MAX_PIXELS" env-default:"40000000"`
	MinZoom    float64 `yaml:"min_zoom"   env:"RASTER_MIN_ZOOM"   env-default:"0.5"`
	MaxZoom    float64 `yaml:"max_zoom"   env:"RASTER_MAX_ZOOM"   env-default:"5"`
	Background string  `yaml:"background" env:"RASTER_BACKGROUND" env-default:"#ffffff"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"  env:"KAFKA_ENABLED"  env-default:"false"`
	Brokers []string `yaml:"brokers"  env:"KAFKA_BROKERS"  env-default:"localhost:9092" env-separator:","`
	Topic   string   `yaml:"topic"    env:"KAFKA_TOPIC"    env-default:"wish-events"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"wishboard-reconciler"`
}

type WorkerConfig struct {
	Concurrency      int  `yaml:"concurrency"        env:"WORKER_CONCURRENCY"        env-default:"4"`
	ReconcileOnStart bool `yaml:"reconcile_on_start" env:"WORKER_RECONCILE_ON_START" env-default:"true"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay"    env:"RETRY_DELAY"    env-default:"200ms"`
	Backoff  float64       `yaml:"backoff"  env:"RETRY_BACKOFF"  env-default:"2"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// MustLoad reads CONFIG_PATH (fallback ./config.yaml) with environment
// overrides. Without a file only the environment and defaults are used.
func MustLoad() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("store.driver must be %q or %q (got %q)", DriverPostgres, DriverMemory, c.Store.Driver)
	}

	switch c.Storage.Backend {
	case BackendFS:
		if c.Storage.FS.Dir == "" {
			return fmt.Errorf("storage.fs.dir is required")
		}
	case BackendMinio:
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			return fmt.Errorf("storage.minio.endpoint and storage.minio.bucket are required")
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required")
		}
	default:
		return fmt.Errorf("storage.backend must be one of fs, minio, s3 (got %q)", c.Storage.Backend)
	}

	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage.max_upload_size must be > 0 (got %d)", c.Storage.MaxUploadSize)
	}

	if c.Raster.Quality < 1 || c.Raster.Quality > 100 {
		return fmt.Errorf("raster.quality must be in [1, 100] (got %d)", c.Raster.Quality)
	}
	if c.Raster.MinZoom <= 0 || c.Raster.MaxZoom < c.Raster.MinZoom {
		return fmt.Errorf("raster zoom bounds are invalid: [%v, %v]", c.Raster.MinZoom, c.Raster.MaxZoom)
	}
	if _, err := c.Raster.BackgroundColor(); err != nil {
		return fmt.Errorf("raster.background: %w", err)
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic are required when kafka is enabled")
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker.concurrency must be > 0 (got %d)", c.Worker.Concurrency)
	}

	if c.Retry.Attempts <= 0 {
		return fmt.Errorf("retry.attempts must be > 0 (got %d)", c.Retry.Attempts)
	}

	return nil
}

func (c *Config) DBDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     c.DB.Host + ":" + strconv.Itoa(c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}
	return u.String()
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}

// BackgroundColor parses "#rrggbb" or "transparent".
func (r RasterConfig) BackgroundColor() (color.Color, error) {
	s := strings.TrimSpace(strings.ToLower(r.Background))
	if s == "transparent" {
		return color.Transparent, nil
	}

	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("expected #rrggbb or transparent, got %q", r.Background)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", r.Background, err)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
