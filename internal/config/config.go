package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config is the runtime configuration. Values come from defaults, then the
// optional YAML file, then environment variables.
type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		Env            string   `yaml:"env"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		Backend       string `yaml:"backend"`
		MongoURI      string `yaml:"mongo_uri"`
		MongoDatabase string `yaml:"mongo_database"`
	} `yaml:"storage"`

	JWT struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Upload struct {
		Dir      string `yaml:"dir"`
		MaxBytes int64  `yaml:"max_bytes"`
	} `yaml:"upload"`

	Notify struct {
		WebhookURL string        `yaml:"webhook_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"notify"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	RateLimit struct {
		LoginPerMinute int `yaml:"login_per_minute"`
	} `yaml:"rate_limit"`

	Admin struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

// Load reads configPath if it exists and applies environment overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Port = "8080"
	cfg.Server.Env = "development"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	cfg.Storage.Backend = BackendMongo
	cfg.Storage.MongoURI = "mongodb://localhost:27017"
	cfg.Storage.MongoDatabase = "academic_scheduler"

	cfg.JWT.TTL = 24 * time.Hour

	cfg.Upload.Dir = "uploads"
	cfg.Upload.MaxBytes = 2 << 20

	cfg.Notify.Timeout = 5 * time.Second

	cfg.Log.Level = "info"
	cfg.Log.Pretty = true

	cfg.RateLimit.LoginPerMinute = 20
}

func loadFromEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "API_PORT")
	setString(&cfg.Server.Env, "APP_ENV")
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.MongoURI, "MONGO_URI")
	setString(&cfg.Storage.MongoDatabase, "MONGO_DATABASE")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Upload.Dir, "UPLOAD_DIR")
	setString(&cfg.Notify.WebhookURL, "NOTIFY_WEBHOOK_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Admin.Name, "ADMIN_NAME")
	setString(&cfg.Admin.Email, "ADMIN_EMAIL")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")

	if err := setDuration(&cfg.JWT.TTL, "JWT_TTL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Notify.Timeout, "NOTIFY_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&cfg.RateLimit.LoginPerMinute, "LOGIN_RATE_PER_MIN"); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("UPLOAD_MAX_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("UPLOAD_MAX_BYTES: %w", err)
		}
		cfg.Upload.MaxBytes = n
	}
	if v, ok := os.LookupEnv("LOG_PRETTY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		cfg.Log.Pretty = b
	}
	return nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT ttl must be positive")
	}
	switch c.Storage.Backend {
	case BackendMongo:
		if c.Storage.MongoURI == "" || c.Storage.MongoDatabase == "" {
			return errors.New("mongo uri and database are required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	if c.RateLimit.LoginPerMinute <= 0 {
		return errors.New("login rate limit must be positive")
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return errors.New("admin email and password must be set together")
	}
	return nil
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

func setInt(dst *int, key string) error {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
