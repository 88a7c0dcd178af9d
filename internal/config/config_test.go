package config_test

import (
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	v := newViper(map[string]interface{}{
		"JWT_SECRET":     "secret",
		"ADMIN_EMAIL":    "admin@example.com",
		"ADMIN_PASSWORD": "admin123",
	})

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "ecommerce.db", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "replace", cfg.CartPolicy)
	assert.Equal(t, 10, cfg.BodyLimitMB)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestFromViper_MissingSecrets(t *testing.T) {
	_, err := config.FromViper(newViper(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "ADMIN_EMAIL and ADMIN_PASSWORD are required")
}

func TestFromViper_RejectsUnknownPolicyAndDriver(t *testing.T) {
	v := newViper(map[string]interface{}{
		"JWT_SECRET":      "secret",
		"ADMIN_EMAIL":     "admin@example.com",
		"ADMIN_PASSWORD":  "admin123",
		"CART_POLICY":     "merge",
		"DATABASE_DRIVER": "mysql",
	})

	_, err := config.FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported CART_POLICY "merge"`)
	assert.Contains(t, err.Error(), `unsupported DATABASE_DRIVER "mysql"`)
}

func TestFromViper_AccumulatePolicyIsCaseInsensitive(t *testing.T) {
	v := newViper(map[string]interface{}{
		"JWT_SECRET":     "secret",
		"ADMIN_EMAIL":    "admin@example.com",
		"ADMIN_PASSWORD": "admin123",
		"CART_POLICY":    "Accumulate",
	})

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "accumulate", cfg.CartPolicy)
}
