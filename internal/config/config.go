package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage  Storage `yaml:"storage"`
	Redis    Redis   `yaml:"redis"`
	Jobs     Jobs    `yaml:"jobs"`
	Mail     Mail    `yaml:"mail"`
}

type Storage struct {
	// Driver - backend for players, games and stats: redis or memory.
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"redis"`
	// ScoreLedger - backend for score records: redis, sqlite or memory.
	ScoreLedger string `yaml:"score-ledger" env:"SCORE_LEDGER" env-default:"redis"`
	SQLitePath  string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"scores.db"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

// Jobs - a negative reminder interval disables reminders. Zero values fall back to the defaults.
type Jobs struct {
	AverageMovesInterval time.Duration `yaml:"average-moves-interval" env:"AVERAGE_MOVES_INTERVAL" env-default:"1m"`
	ReminderInterval     time.Duration `yaml:"reminder-interval" env:"REMINDER_INTERVAL" env-default:"24h"`
}

// Mail - SMTP settings for reminders. An empty host logs reminders instead of sending them.
type Mail struct {
	Host     string `yaml:"host" env:"MAIL_HOST"`
	Port     int    `yaml:"port" env:"MAIL_PORT" env-default:"587"`
	Username string `yaml:"username" env:"MAIL_USERNAME"`
	Password string `yaml:"password" env:"MAIL_PASSWORD"`
	From     string `yaml:"from" env:"MAIL_FROM" env-default:"noreply@tictactoe.local"`
}

// Load - reads config.yml and applies environment overrides on top.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) validate() error {
	switch that.Storage.Driver {
	case DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", that.Storage.Driver)
	}

	switch that.Storage.ScoreLedger {
	case DriverRedis, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown score ledger %q", that.Storage.ScoreLedger)
	}

	if that.Jobs.AverageMovesInterval <= 0 {
		return fmt.Errorf("average-moves-interval must be positive, got %s", that.Jobs.AverageMovesInterval)
	}

	return nil
}

// UsesRedis - whether any backend needs a Redis connection.
func (that *Config) UsesRedis() bool {
	return that.Storage.Driver == DriverRedis || that.Storage.ScoreLedger == DriverRedis
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}
