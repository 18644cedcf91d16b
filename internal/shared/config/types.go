package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the gorm dialect. Driver "sqlite" uses Path and
// ignores the network settings.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT           JWTConfig `mapstructure:"jwt"`
	InternalToken string    `mapstructure:"internal_token"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PackageConfig is one purchasable tier as written in config.yaml.
// Price is in minor currency units.
type PackageConfig struct {
	Name              string   `mapstructure:"name"`
	Price             int64    `mapstructure:"price"`
	Currency          string   `mapstructure:"currency"`
	MaxListings       int      `mapstructure:"max_listings"`
	MaxPhotos         int      `mapstructure:"max_photos"`
	DurationDays      int      `mapstructure:"duration_days"`
	BoostCount        int      `mapstructure:"boost_count"`
	BoostDurationDays int      `mapstructure:"boost_duration_days"`
	SearchPlacement   int      `mapstructure:"search_placement_tier"`
	Badges            []string `mapstructure:"badges"`
	Analytics         bool     `mapstructure:"analytics"`
}

type CatalogConfig struct {
	Version             string          `mapstructure:"version"`
	StarterPackage      string          `mapstructure:"starter_package"`
	StarterValidityDays int             `mapstructure:"starter_validity_days"`
	Packages            []PackageConfig `mapstructure:"packages"`
}

type ProcessorConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	KeyID            string `mapstructure:"key_id"`
	KeySecret        string `mapstructure:"key_secret"`
	SignatureSecret  string `mapstructure:"signature_secret"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BreakerThreshold uint32 `mapstructure:"breaker_threshold"`
	BreakerCooldown  int    `mapstructure:"breaker_cooldown_seconds"`
}

func (p *ProcessorConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type RateLimitConfig struct {
	VerifyPerMinute int `mapstructure:"verify_per_minute"`
}
