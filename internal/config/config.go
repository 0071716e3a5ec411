package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string `mapstructure:"PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	DBHost            string `mapstructure:"DB_HOST"`
	DBPort            string `mapstructure:"DB_PORT"`
	DBUser            string `mapstructure:"DB_USER"`
	DBPassword        string `mapstructure:"DB_PASSWORD"`
	DBName            string `mapstructure:"DB_NAME"`
	MongoURI          string `mapstructure:"MONGODB_URI"`
	MongoDatabase     string `mapstructure:"MONGODB_DATABASE"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	APIKey            string `mapstructure:"API_KEY"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`
	ResendAPIKey      string `mapstructure:"RESEND_API_KEY"`
	MailFrom          string `mapstructure:"MAIL_FROM"`
	SentryDSN         string `mapstructure:"SENTRY_DSN"`
	AvgConsultMinutes int    `mapstructure:"AVG_CONSULT_MINUTES"`
}

var defaults = map[string]interface{}{
	"PORT":                "8080",
	"ENV":                 "production",
	"LOG_LEVEL":           "info",
	"DB_HOST":             "localhost",
	"DB_PORT":             "3306",
	"DB_USER":             "hospital",
	"DB_PASSWORD":         "hospital_pass",
	"DB_NAME":             "hospital",
	"MONGODB_URI":         "mongodb://localhost:27017",
	"MONGODB_DATABASE":    "hospital",
	"JWT_SECRET":          "",
	"API_KEY":             "",
	"ALLOWED_ORIGINS":     "*",
	"RESEND_API_KEY":      "",
	"MAIL_FROM":           "",
	"SENTRY_DSN":          "",
	"AVG_CONSULT_MINUTES": 10,
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory when present.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an
// error; an unreadable or malformed one is.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if c.AvgConsultMinutes <= 0 {
		return fmt.Errorf("AVG_CONSULT_MINUTES must be positive, got %d", c.AvgConsultMinutes)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

func (c *Config) Origins() []string {
	origins := strings.Split(c.AllowedOrigins, ",")
	for i, o := range origins {
		origins[i] = strings.TrimSpace(o)
	}
	return origins
}
