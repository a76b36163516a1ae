package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"JWT_SECRET":      "secret",
		"WALLET_MNEMONIC": "  test test test test test test test test test test test junk ",
	}))
	require.NoError(t, err)

	assert.Equal(t, defaultAppName, cfg.AppName)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, defaultDerivationPath, cfg.DerivationPath)
	assert.Equal(t, defaultStoreTimeout, cfg.StoreTimeout)
	assert.Equal(t, "test test test test test test test test test test test junk", cfg.WalletMnemonic)
	assert.True(t, cfg.IsDev())
}

func TestFromEnvDurations(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"JWT_SECRET":               "secret",
		"WALLET_MNEMONIC":          "words",
		"SHUTDOWN_TIMEOUT_SECONDS": "3",
		"SHUTDOWN_TIMEOUT":         "1m",
		"IDEMPOTENCY_TTL":          "90s",
		"STORE_TIMEOUT":            "250ms",
		"PORT":                     ":9000",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	assert.Equal(t, 90*time.Second, cfg.IdempotencyTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, ":9000", cfg.Address())
}

func TestFromEnvRequiredValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {"WALLET_MNEMONIC": "words"},
		"missing mnemonic": {"JWT_SECRET": "secret"},
		"missing database in production": {
			"APP_ENV": "production", "JWT_SECRET": "secret", "WALLET_MNEMONIC": "words",
		},
		"bad duration": {
			"JWT_SECRET": "secret", "WALLET_MNEMONIC": "words", "STORE_TIMEOUT": "soon",
		},
		"non-positive timeout": {
			"JWT_SECRET": "secret", "WALLET_MNEMONIC": "words", "STORE_TIMEOUT": "0s",
		},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}
