package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverDatabase = "database"
	StoreDriverHTTP     = "http"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Name       string `mapstructure:"name"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxRetries int    `mapstructure:"max_retries"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Broker        string        `mapstructure:"broker"`
	ConsumerGroup string        `mapstructure:"consumer_group"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects where teams and attendance records come from.
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"`
	BackendURL  string        `mapstructure:"backend_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TeamsTTL    time.Duration `mapstructure:"teams_ttl"`
	FetchLimit  int           `mapstructure:"fetch_limit"`
	BackendAuth string        `mapstructure:"backend_auth"`
}

type ScheduleConfig struct {
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	CommitLockTTL  time.Duration `mapstructure:"commit_lock_ttl"`
	EscalationNote string        `mapstructure:"escalation_note"`
	// Timezone is the IANA zone exports render shift times in.
	Timezone string `mapstructure:"timezone"`
}

func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load reads defaults, an optional YAML file and STAFFOPS_* env vars, in
// increasing priority. A missing .env or config file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.name", "staffops")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_retries", 5)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.consumer_group", "go-staffops-schedule-refresh")
	v.SetDefault("kafka.poll_interval", "3s")

	// keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("store.driver", StoreDriverDatabase)
	v.SetDefault("store.backend_url", "")
	v.SetDefault("store.backend_auth", "")
	v.SetDefault("store.timeout", "15s")
	v.SetDefault("store.teams_ttl", "5m")
	v.SetDefault("store.fetch_limit", 1000)

	v.SetDefault("schedule.session_ttl", "30m")
	v.SetDefault("schedule.commit_lock_ttl", "30s")
	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.escalation_note", "Tự động điểm danh: tất cả thành viên đã được điểm danh")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STAFFOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	switch c.Store.Driver {
	case StoreDriverDatabase:
	case StoreDriverHTTP:
		if c.Store.BackendURL == "" {
			return errors.New("config: store.backend_url is required for the http store")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("config: schedule.timezone: %w", err)
	}
	if c.Schedule.SessionTTL <= 0 {
		return errors.New("config: schedule.session_ttl must be positive")
	}
	return nil
}
