package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL URL of the order archive; archiving is off when empty" flag:"database-url"`
	CatalogFile string `usage:"Product catalog seed, .json or .json.gz" flag:"catalog-file"`
	Discount    DiscountConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// DiscountConfig is the Nth-order discount policy.
type DiscountConfig struct {
	NthOrder    int    `default:"3"  usage:"A code may be generated after every Nth order"`
	RatePercent string `default:"10" usage:"Percentage taken off an order by a code"`
}

// Rate returns RatePercent as a fraction, e.g. 0.1 for "10".
func (c DiscountConfig) Rate() (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(c.RatePercent)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse discount rate %q", c.RatePercent)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, errors.Errorf("discount rate %s%% is outside [0, 100]", pct)
	}
	return pct.Shift(-2), nil
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window, 0 disables"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from command line flags, environment
// variables and YAML config files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:], "config.yaml", "/etc/storefront/config.yaml")
}

// loadConfig skips flag parsing when args is nil.
func loadConfig(args []string, files ...string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: args == nil,
		Args:      args,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Discount.NthOrder <= 0 {
		return errors.Errorf("discount nth order must be positive, got %d", c.Discount.NthOrder)
	}
	if _, err := c.Discount.Rate(); err != nil {
		return err
	}
	if c.RateLimit.Max > 0 && c.RateLimit.Window <= 0 {
		return errors.New("rate limit window must be positive")
	}
	return nil
}

// applyPlatformDefaults maps the PORT and DATABASE_URL variables set by
// hosting platforms onto the STOREFRONT_ settings.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
