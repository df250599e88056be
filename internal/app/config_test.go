package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPlatformEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearPlatformEnv(t)

	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.Discount.NthOrder)
	rate, err := cfg.Discount.Rate()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.1").Equal(rate), rate.String())
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
}

func TestLoadConfig_Env(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("STOREFRONT_ADDR", "127.0.0.1:9000")
	t.Setenv("STOREFRONT_CATALOG_FILE", "catalog.json.gz")
	t.Setenv("STOREFRONT_DISCOUNT_NTH_ORDER", "5")
	t.Setenv("STOREFRONT_DISCOUNT_RATE_PERCENT", "12.5")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "catalog.json.gz", cfg.CatalogFile)
	assert.Equal(t, 5, cfg.Discount.NthOrder)
	rate, err := cfg.Discount.Rate()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.125").Equal(rate), rate.String())
}

func TestLoadConfig_PlatformDefaults(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/storefront")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr)
	assert.Equal(t, "postgres://localhost/storefront", cfg.DatabaseURL)
}

func TestLoadConfig_PlatformDefaultsDoNotOverride(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://platform/db")
	t.Setenv("STOREFRONT_ADDR", "127.0.0.1:9000")
	t.Setenv("STOREFRONT_DATABASE_URL", "postgres://explicit/db")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "postgres://explicit/db", cfg.DatabaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "zero nth order", key: "STOREFRONT_DISCOUNT_NTH_ORDER", val: "0"},
		{name: "negative nth order", key: "STOREFRONT_DISCOUNT_NTH_ORDER", val: "-2"},
		{name: "rate above 100", key: "STOREFRONT_DISCOUNT_RATE_PERCENT", val: "101"},
		{name: "negative rate", key: "STOREFRONT_DISCOUNT_RATE_PERCENT", val: "-1"},
		{name: "rate not a number", key: "STOREFRONT_DISCOUNT_RATE_PERCENT", val: "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearPlatformEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := loadConfig(nil)
			assert.Error(t, err)
		})
	}
}

func TestDiscountConfig_Rate(t *testing.T) {
	for pct, want := range map[string]string{"0": "0", "10": "0.1", "100": "1", "2.5": "0.025"} {
		rate, err := DiscountConfig{RatePercent: pct}.Rate()
		require.NoError(t, err, pct)
		assert.True(t, decimal.RequireFromString(want).Equal(rate), "%s%% -> %s", pct, rate)
	}
}
