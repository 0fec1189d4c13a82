package config_test

import (
	"testing"
	"time"

	"github.com/pharmadash/pharmadash/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 120*time.Second, cfg.API.UploadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.Staleness)
	assert.NotEmpty(t, cfg.API.TokenPath)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PHARMADASH_API_BASE_URL", "https://pharmacy.example.com")
	t.Setenv("PHARMADASH_API_REQUEST_TIMEOUT", "10s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pharmacy.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.RequestTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "base url with /api prefix rejected",
			mutate:  func(c *config.Config) { c.API.BaseURL = "http://localhost:8000/api" },
			wantErr: "must not include the /api prefix",
		},
		{
			name:    "missing scheme rejected",
			mutate:  func(c *config.Config) { c.API.BaseURL = "localhost:8000" },
			wantErr: "not a valid URL",
		},
		{
			name:    "upload timeout shorter than request timeout",
			mutate:  func(c *config.Config) { c.API.UploadTimeout = time.Second },
			wantErr: "upload_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
