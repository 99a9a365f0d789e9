package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:assetflow.db")
	t.Setenv("PORT", "")
	t.Setenv("IMPORT_BATCH_SIZE", "")
	t.Setenv("SHEET_SYNC_CRON", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadRejectsBadBatchSize(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:assetflow.db")
	t.Setenv("IMPORT_BATCH_SIZE", "many")

	_, err := Load("testdata/missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMPORT_BATCH_SIZE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", MaxUploadBytes: 1024},
			Database: DatabaseConfig{Driver: "postgres", DSN: "postgres://localhost/assetflow"},
			Import:   ImportConfig{BatchSize: 50},
			Sheets:   SheetsConfig{Range: "Sheet1!A1:AG"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: "DB_DRIVER"},
		{name: "missing dsn", mutate: func(c *Config) { c.Database.DSN = "" }, wantErr: "DB_DSN"},
		{name: "zero batch", mutate: func(c *Config) { c.Import.BatchSize = 0 }, wantErr: "IMPORT_BATCH_SIZE"},
		{name: "cron without sheet", mutate: func(c *Config) { c.Sheets.SyncCron = "*/30 * * * *" }, wantErr: "SHEET_SYNC_CRON"},
		{name: "mongo without db name", mutate: func(c *Config) {
			c.MongoDB.URI = "mongodb://localhost"
		}, wantErr: "MONGODB_DB_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
