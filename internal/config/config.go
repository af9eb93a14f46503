package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v2"
)

const DefaultReconcileSchedule = "FREQ=MINUTELY;INTERVAL=1"

type Config struct {
	Server struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port" validate:"min=1,max=65535"`
		Env          string        `yaml:"env" validate:"oneof=development production test"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		CORSOrigins  []string      `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url" validate:"required"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Redis struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url" validate:"required_if=Enabled true"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret" validate:"required,min=16"`
		Issuer string `yaml:"issuer"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Reconcile struct {
		Enabled    bool   `yaml:"enabled"`
		Schedule   string `yaml:"schedule" validate:"required"`
		CronSecret string `yaml:"cron_secret"`
	} `yaml:"reconcile"`

	Email struct {
		Enabled      bool   `yaml:"enabled"`
		SMTPHost     string `yaml:"smtp_host" validate:"required_if=Enabled true"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email" validate:"omitempty,email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format" validate:"omitempty,oneof=json console"`
	} `yaml:"log"`
}

var (
	AppConfig *Config
	validate  = validator.New()
)

// Load reads .env (if any), the YAML file at CONFIG_PATH, environment
// overrides and defaults, then validates the result.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	var cfg Config
	if err := loadFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || os.Getenv("CONFIG_PATH") != "" {
			return nil, err
		}
		// no file: environment-only deployment
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	AppConfig = &cfg
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.Reconcile.CronSecret = v
	}
	if v := os.Getenv("RECONCILE_SCHEDULE"); v != "" {
		cfg.Reconcile.Schedule = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
		cfg.Email.Enabled = true
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUsername = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "campusreq:events"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Reconcile.Schedule == "" {
		cfg.Reconcile.Schedule = DefaultReconcileSchedule
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
}

// Validate runs struct validation and checks the reconcile RRULE.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := rrule.StrToRRule(cfg.Reconcile.Schedule); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", cfg.Reconcile.Schedule, err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func GetConfig() *Config {
	return AppConfig
}
