package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.Equal(t, "Mochilas artesanales", cfg.StoreName)
	assert.InDelta(t, 4.71047, cfg.StoreLatitude, 1e-9)
	assert.InDelta(t, -74.111894, cfg.StoreLongitude, 1e-9)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"sqlite ok", Config{JWTSecret: "s", DBDriver: "sqlite"}, ""},
		{"driver case", Config{JWTSecret: "s", DBDriver: "SQLite"}, ""},
		{"postgres needs url", Config{JWTSecret: "s", DBDriver: "postgres"}, "DATABASE_URL"},
		{"postgres ok", Config{JWTSecret: "s", DBDriver: "postgres", DBURL: "postgres://x"}, ""},
		{"unknown driver", Config{JWTSecret: "s", DBDriver: "mysql"}, "unsupported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
