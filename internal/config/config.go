package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	External  ExternalConfig
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	RefreshSecret      string `mapstructure:"refresh_secret"`
	ExpiryHours        int    `mapstructure:"expiry_hours"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerWindow int     `mapstructure:"requests_per_window"`
	WindowSeconds     int     `mapstructure:"window_seconds"`
	GlobalRPS         float64 `mapstructure:"global_rps"`
	GlobalBurst       int     `mapstructure:"global_burst"`
}

// ExternalConfig is the environment-driven block: ML service location,
// destructive admin feature flag and mail credentials.
type ExternalConfig struct {
	MLServiceURL      string        `envconfig:"ML_SERVICE_URL" default:"http://localhost:8001"`
	MLTimeout         time.Duration `envconfig:"ML_TIMEOUT" default:"10s"`
	AdminQueryEnabled bool          `envconfig:"ADMIN_QUERY_ENABLED" default:"false"`
	SMTPHost          string        `envconfig:"SMTP_HOST"`
	SMTPPort          int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser          string        `envconfig:"SMTP_USER"`
	SMTPPassword      string        `envconfig:"SMTP_PASSWORD"`
	MailFrom          string        `envconfig:"MAIL_FROM" default:"noreply@immunerisk.local"`
}

func (c *JWTConfig) Expiry() time.Duration {
	if c.ExpiryHours == 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ExpiryHours) * time.Hour
}

func (c *JWTConfig) RefreshExpiry() time.Duration {
	if c.RefreshExpiryHours == 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.RefreshExpiryHours) * time.Hour
}

func (c *RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds == 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.External); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	return &config, nil
}
