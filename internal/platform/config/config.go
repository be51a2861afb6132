package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 永続化領域の種類です。
const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Notice  NoticeConfig  `yaml:"notice"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig はリモート API への接続設定です。
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" env:"DIRECTORY_API_BASE_URL"`
	Timeout           time.Duration `yaml:"-"`
	TimeoutRaw        string        `yaml:"timeout" env:"DIRECTORY_API_TIMEOUT"`
	MaxRetries        int           `yaml:"max_retries" env:"DIRECTORY_API_MAX_RETRIES"`
	RetryBaseDelay    time.Duration `yaml:"-"`
	RetryBaseDelayRaw string        `yaml:"retry_base_delay"`
}

// StorageConfig はセッションの永続化先の設定です。
type StorageConfig struct {
	Driver   string            `yaml:"driver" env:"DIRECTORY_STORAGE_DRIVER"`
	File     FileStorageConfig `yaml:"file"`
	Redis    RedisConfig       `yaml:"redis"`
	Database DatabaseConfig    `yaml:"database"`
}

// FileStorageConfig はファイル永続化の設定です。
type FileStorageConfig struct {
	Path string `yaml:"path" env:"DIRECTORY_STORAGE_FILE_PATH"`
}

// RedisConfig は Redis 接続に関する設定です。
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"DIRECTORY_REDIS_ADDR"`
	Password  string `yaml:"password" env:"DIRECTORY_REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"DIRECTORY_REDIS_DB"`
	KeyPrefix string `yaml:"key_prefix"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" env:"DIRECTORY_DB_HOST"`
	Port               int           `yaml:"port" env:"DIRECTORY_DB_PORT"`
	User               string        `yaml:"user" env:"DIRECTORY_DB_USER"`
	Password           string        `yaml:"password" env:"DIRECTORY_DB_PASSWORD"`
	Name               string        `yaml:"name" env:"DIRECTORY_DB_NAME"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	StateKey           string        `yaml:"state_key"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string `yaml:"level" env:"DIRECTORY_LOG_LEVEL"`
	Format string `yaml:"format" env:"DIRECTORY_LOG_FORMAT"`
}

// NoticeConfig は通知の表示時間の設定です。
type NoticeConfig struct {
	TTL    time.Duration `yaml:"-"`
	TTLRaw string        `yaml:"ttl"`
}

// MetricsConfig は Prometheus 計測の設定です。
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" env:"DIRECTORY_METRICS_ENABLED"`
	Namespace  string `yaml:"namespace"`
	ListenAddr string `yaml:"listen_addr" env:"DIRECTORY_METRICS_LISTEN_ADDR"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.API.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Storage.validateAndNormalize(); err != nil {
		return err
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch c.Log.Format {
	case "":
		c.Log.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}

	ttl, err := parseDurationAllowEmpty(c.Notice.TTLRaw)
	if err != nil {
		return fmt.Errorf("config: notice.ttl: %w", err)
	}
	if ttl == 0 {
		ttl = 3 * time.Second
	}
	c.Notice.TTL = ttl

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "directory_client"
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = "127.0.0.1:9464"
	}

	return nil
}

func (a *APIConfig) validateAndNormalize() error {
	if a.BaseURL == "" {
		return fmt.Errorf("config: api.base_url must be set")
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api.base_url must be an absolute URL, got %q", a.BaseURL)
	}
	a.BaseURL = strings.TrimRight(a.BaseURL, "/")

	timeout, err := parseDurationAllowEmpty(a.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: api.timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	a.Timeout = timeout

	if a.MaxRetries < 0 {
		return fmt.Errorf("config: api.max_retries must not be negative")
	}

	delay, err := parseDurationAllowEmpty(a.RetryBaseDelayRaw)
	if err != nil {
		return fmt.Errorf("config: api.retry_base_delay: %w", err)
	}
	if delay == 0 {
		delay = 200 * time.Millisecond
	}
	a.RetryBaseDelay = delay

	return nil
}

func (s *StorageConfig) validateAndNormalize() error {
	if s.Driver == "" {
		s.Driver = StorageFile
	}

	switch s.Driver {
	case StorageMemory:
		return nil
	case StorageFile:
		if s.File.Path == "" {
			s.File.Path = ".directory/session.json"
		}
		return nil
	case StorageRedis:
		if s.Redis.Addr == "" {
			return fmt.Errorf("config: storage.redis.addr must be set")
		}
		if s.Redis.KeyPrefix == "" {
			s.Redis.KeyPrefix = "directory:session:"
		}
		return nil
	case StoragePostgres:
		return s.Database.validateAndNormalize()
	default:
		return fmt.Errorf("config: storage.driver %q is not supported", s.Driver)
	}
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: storage.database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: storage.database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: storage.database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: storage.database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: storage.database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.StateKey == "" {
		d.StateKey = "default"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: storage.database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: storage.database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。資格情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
