package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all kiosk configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kiosk    KioskConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"3001"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	WebOrigin       string        `envconfig:"WEB_ORIGIN" default:"http://localhost:3000"`
	Mode            string        `envconfig:"GIN_MODE" default:"release"`
}

// DatabaseConfig holds the relational store settings.
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"postgres"` // postgres or sqlite
	Host     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	Name     string `envconfig:"DB_NAME" default:"kiosk"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	Path     string `envconfig:"DB_PATH" default:"./data/kiosk.db"` // sqlite only

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"10m"`
	SlowThreshold   time.Duration `envconfig:"DB_SLOW_THRESHOLD" default:"200ms"`
}

// RedisConfig holds Redis settings. Redis is optional; without it change
// events are dropped and the page-load sweep runs unthrottled.
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Addr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Channel  string `envconfig:"REDIS_EVENTS_CHANNEL" default:"kiosk:events"`
}

// KioskConfig holds rental engine settings.
type KioskConfig struct {
	// DayTimezone is the IANA location whose calendar day bounds the
	// per-user daily cap. Empty or "Local" means the process time zone.
	DayTimezone   string        `envconfig:"KIOSK_DAY_TIMEZONE" default:"Local"`
	Locale        string        `envconfig:"KIOSK_LOCALE" default:"en"`
	SweepInterval time.Duration `envconfig:"KIOSK_SWEEP_INTERVAL" default:"0s"`
	SweepThrottle time.Duration `envconfig:"KIOSK_SWEEP_THROTTLE" default:"5s"`
	AdminKeys     []string      `envconfig:"KIOSK_ADMIN_KEYS" default:""`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// LoadEnv loads a .env file into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	keys := cfg.Kiosk.AdminKeys[:0]
	for _, k := range cfg.Kiosk.AdminKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	cfg.Kiosk.AdminKeys = keys

	if _, err := cfg.Kiosk.DayLocation(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// DayLocation resolves the location used for calendar-day windows.
func (k *KioskConfig) DayLocation() (*time.Location, error) {
	tz := strings.TrimSpace(k.DayTimezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid KIOSK_DAY_TIMEZONE %q: %w", tz, err)
	}
	return loc, nil
}
