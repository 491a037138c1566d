package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	CatalogSourceSeed     = "seed"
	CatalogSourcePostgres = "postgres"

	CartStorageMemory = "memory"
	CartStorageRedis  = "redis"
)

type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://': %s", maskURL(c.URL))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("database timeout must be greater than 0")
	}
	return nil
}

func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// CatalogConfig selects where products and categories come from.
type CatalogConfig struct {
	Source   string         `koanf:"source"`
	SeedFile string         `koanf:"seedfile"`
	Database DatabaseConfig `koanf:"database"`
}

func (c *CatalogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  source: %s\n", c.Source))
	b.WriteString(fmt.Sprintf("  seedfile: %s\n", orEmbedded(c.SeedFile)))
	b.WriteString(fmt.Sprintf("  database.url: %s\n", maskURL(c.Database.URL)))
	b.WriteString(fmt.Sprintf("  database.timeout: %v\n", c.Database.Timeout))
	return b.String()
}

func (c *CatalogConfig) Validate() error {
	switch c.Source {
	case "", CatalogSourceSeed:
		return nil
	case CatalogSourcePostgres:
		return c.Database.Validate()
	default:
		return fmt.Errorf("unknown catalog source: %q", c.Source)
	}
}

func orEmbedded(path string) string {
	if path == "" {
		return "<embedded>"
	}
	return path
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *CircuitBreakerConfig) Validate() error {
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if c.ErrorRatePercent < 0 || c.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100")
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}

type RedisConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// CartConfig controls where carts are persisted.
type CartConfig struct {
	Storage        string               `koanf:"storage"`
	KeyPrefix      string               `koanf:"keyprefix"`
	TTL            time.Duration        `koanf:"ttl"`
	Redis          RedisConfig          `koanf:"redis"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

func (c *CartConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Cart ---\n")
	b.WriteString(fmt.Sprintf("  storage: %s\n", c.Storage))
	b.WriteString(fmt.Sprintf("  keyprefix: %s\n", c.KeyPrefix))
	b.WriteString(fmt.Sprintf("  ttl: %v\n", c.TTL))
	b.WriteString(fmt.Sprintf("  redis.url: %s\n", maskURL(c.Redis.URL)))
	b.WriteString(fmt.Sprintf("  redis.timeout: %v\n", c.Redis.Timeout))
	b.WriteString(fmt.Sprintf("  circuitbreaker.consecutivefailures: %d\n", c.CircuitBreaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  circuitbreaker.errorratepercent: %d\n", c.CircuitBreaker.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  circuitbreaker.opentimeout: %v\n", c.CircuitBreaker.OpenTimeout))
	return b.String()
}

func (c *CartConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("cart ttl must not be negative")
	}
	switch c.Storage {
	case "", CartStorageMemory:
		return nil
	case CartStorageRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("cart redis URL is not configured")
		}
		if c.Redis.Timeout <= 0 {
			return fmt.Errorf("cart redis timeout must be greater than 0")
		}
		return c.CircuitBreaker.Validate()
	default:
		return fmt.Errorf("unknown cart storage: %q", c.Storage)
	}
}

// SessionConfig controls how long idle sessions are kept in memory.
type SessionConfig struct {
	IdleTimeout   time.Duration `koanf:"idletimeout"`
	SweepInterval time.Duration `koanf:"sweepinterval"`
}

func (c *SessionConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  idletimeout: %v\n", c.IdleTimeout))
	b.WriteString(fmt.Sprintf("  sweepinterval: %v\n", c.SweepInterval))
	return b.String()
}

func (c *SessionConfig) Validate() error {
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be greater than 0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be greater than 0")
	}
	return nil
}

type AuthConfig struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

func (c *AuthConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString("  secret: ****\n")
	b.WriteString(fmt.Sprintf("  issuer: %s\n", c.Issuer))
	b.WriteString(fmt.Sprintf("  ttl: %v\n", c.TTL))
	return b.String()
}

func (c *AuthConfig) Validate() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("auth secret must be at least 16 characters")
	}
	if c.Issuer == "" {
		return fmt.Errorf("auth issuer is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("auth token ttl must be greater than 0")
	}
	return nil
}

type CheckoutConfig struct {
	TaxPercent float64 `koanf:"taxpercent"`
}

func (c *CheckoutConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Checkout ---\n")
	b.WriteString(fmt.Sprintf("  taxpercent: %v\n", c.TaxPercent))
	return b.String()
}

func (c *CheckoutConfig) Validate() error {
	if c.TaxPercent < 0 || c.TaxPercent > 100 {
		return fmt.Errorf("checkout tax percent must be between 0 and 100")
	}
	return nil
}
