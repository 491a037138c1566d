// Package config defines the storefront service configuration.
package config

import (
	"strings"

	"github.com/abgdnv/gostorefront/internal/platform/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer HTTPConfig       `koanf:"server"`
	GRPC       GrpcServerConfig `koanf:"grpc"`
	Log        LogConfig        `koanf:"log"`
	PProf      PProfConfig      `koanf:"pprof"`
	Shutdown   ShutdownConfig   `koanf:"shutdown"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Cart       CartConfig       `koanf:"cart"`
	Session    SessionConfig    `koanf:"session"`
	Auth       AuthConfig       `koanf:"auth"`
	Checkout   CheckoutConfig   `koanf:"checkout"`
	NATS       NATSConfig       `koanf:"nats"`
	AMQP       AMQPConfig       `koanf:"amqp"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Catalog.String())
	b.WriteString(c.Cart.String())
	b.WriteString(c.Session.String())
	b.WriteString(c.Auth.String())
	b.WriteString(c.Checkout.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.AMQP.String())
	b.WriteString(c.Telemetry.String())
	return b.String()
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer, &c.GRPC, &c.Log, &c.PProf, &c.Shutdown,
		&c.Catalog, &c.Cart, &c.Session, &c.Auth, &c.Checkout,
		&c.NATS, &c.AMQP, &c.Telemetry,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
