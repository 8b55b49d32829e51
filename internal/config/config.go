package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/strategy"
)

const (
	ModeBot = "bot"
	ModeTUI = "tui"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	ServerURL    string        `yaml:"server-url" env:"SERVER_URL" env-default:"ws://localhost:8080"`
	Mode         string        `yaml:"mode" env:"MODE" env-default:"bot"`
	Role         string        `yaml:"role" env:"ROLE" env-default:"player"`
	Name         string        `yaml:"name" env:"PLAYER_NAME"`
	Strategy     string        `yaml:"strategy" env:"STRATEGY" env-default:"rule-priority"`
	Seed         int64         `yaml:"seed" env:"SEED" env-default:"0"`
	PingInterval time.Duration `yaml:"ping-interval" env:"PING_INTERVAL" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
	Redis        Redis         `yaml:"redis" env-prefix:"REDIS_"`
}

type Redis struct {
	Enabled bool          `yaml:"enabled" env:"ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"PORT" env-default:"6379"`
	DB      int           `yaml:"db" env:"DB" env-default:"0"`
	TTL     time.Duration `yaml:"ttl" env:"TTL" env-default:"168h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path, then environment overrides. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, that.LogLevel) {
		errs = append(errs, fmt.Errorf("log-level %q", that.LogLevel))
	}

	if !slices.Contains([]string{ModeBot, ModeTUI}, that.Mode) {
		errs = append(errs, fmt.Errorf("mode %q", that.Mode))
	}

	if !slices.Contains([]string{entity.RolePlayer, entity.RoleObserver}, that.Role) {
		errs = append(errs, fmt.Errorf("role %q", that.Role))
	}

	if that.Mode == ModeBot && that.Role == entity.RolePlayer && !slices.Contains(strategy.Names(), that.Strategy) {
		errs = append(errs, fmt.Errorf("strategy %q, expected one of %v", that.Strategy, strategy.Names()))
	}

	if parsed, err := url.Parse(that.ServerURL); err != nil || (parsed.Scheme != "ws" && parsed.Scheme != "wss") {
		errs = append(errs, fmt.Errorf("server-url %q", that.ServerURL))
	}

	if that.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("write-timeout %s", that.WriteTimeout))
	}

	if that.PingInterval < 0 {
		errs = append(errs, fmt.Errorf("ping-interval %s", that.PingInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
