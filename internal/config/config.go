package config

import (
	"errors"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"time"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type Repo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	URL         string `yaml:"html_url"`
}

type Config struct {
	App struct {
		Env Environment `yaml:"env" env:"ENV" env-default:"dev"`
	} `yaml:"app" env-prefix:"APP_"`

	Server struct {
		Host string `yaml:"host" env:"HOST" env-default:"localhost"`
		Port int    `yaml:"port" env:"PORT" env-default:"8080"`
	} `yaml:"server" env-prefix:"SERVER_"`

	DB struct {
		Driver  string `yaml:"driver" env:"DRIVER" env-default:"pgx"`
		DSN     string `yaml:"dsn" env:"DSN" env-required:""`
		Migrate bool   `yaml:"migrate" env:"MIGRATE" env-default:"false"`
	} `yaml:"db" env-prefix:"DB_"`

	Snapshots struct {
		Dir string `yaml:"dir" env:"DIR" env-default:"data"`
	} `yaml:"snapshots" env-prefix:"SNAPSHOTS_"`

	GitHub struct {
		User   string   `yaml:"user" env:"USER" env-default:"Ashwin-Iyer1"`
		APIURL string   `yaml:"api_url" env:"API_URL" env-default:"https://api.github.com"`
		Token  string   `yaml:"token" env:"TOKEN"`
		Hidden []string `yaml:"hidden" env:"HIDDEN" env-separator:","`
		Extra  []Repo   `yaml:"extra"`
	} `yaml:"github" env-prefix:"GITHUB_"`

	Clash struct {
		APIURL    string `yaml:"api_url" env:"API_URL" env-default:"https://api.clashofclans.com/v1"`
		PlayerTag string `yaml:"player_tag" env:"PLAYER_TAG" env-default:"#29YOY8UJQ"`
		Token     string `yaml:"token" env:"TOKEN"`
	} `yaml:"clash" env-prefix:"COC_"`

	Admin struct {
		Secret   string        `yaml:"secret" env:"SECRET"`
		TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	} `yaml:"admin" env-prefix:"ADMIN_"`

	Oura struct {
		DashboardDays   int           `yaml:"dashboard_days" env:"DASHBOARD_DAYS" env-default:"30"`
		HeartRateWindow time.Duration `yaml:"heart_rate_window" env:"HEART_RATE_WINDOW" env-default:"24h"`
	} `yaml:"oura" env-prefix:"OURA_"`
}

// Load reads the YAML file at filePath with environment overrides. An empty
// path reads the environment only.
func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if filePath == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, configNotLoadedErr("config not loaded: %w", err)
		}
	} else if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.App.Env != Production && c.App.Env != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	if c.DB.Driver != DriverPostgres && c.DB.Driver != DriverSQLite {
		return configNotLoadedErr("unknown db driver %q", c.DB.Driver)
	}
	if c.Oura.DashboardDays < 1 {
		return configNotLoadedErr("oura.dashboard_days must be positive")
	}
	return nil
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
