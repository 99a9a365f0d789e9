package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Sheets   SheetsConfig
	MongoDB  MongoDBConfig
	WhatsApp WhatsAppConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
	UploadDir      string
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

// ImportConfig tunes the reconciliation pipeline.
type ImportConfig struct {
	BatchSize int
}

// SheetsConfig contains configuration required to pull rows from Google Sheets.
// The sync job is disabled when SyncCron is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
	SyncCron        string
	Timezone        string
}

// Enabled reports whether enough is configured to reach the spreadsheet.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// MongoDBConfig holds settings for the import report archive. An empty URI
// disables archiving.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used to
// push import summaries.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	NotifyTo      string
}

// Enabled reports whether import summaries should be pushed.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.NotifyTo != ""
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string
	Development bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when the environment is set directly.
		_ = godotenv.Load()
	}

	maxUpload, err := getenvInt64("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	batchSize, err := getenvInt64("IMPORT_BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("PORT", "8080"),
			MaxUploadBytes: maxUpload,
			UploadDir:      os.Getenv("UPLOAD_DIR"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getenvWithDefault("DB_DRIVER", "postgres")),
			DSN:         os.Getenv("DB_DSN"),
			AutoMigrate: getenvBool("DB_AUTO_MIGRATE", true),
		},
		Import: ImportConfig{
			BatchSize: int(batchSize),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
			Range:           getenvWithDefault("GOOGLE_SHEET_RANGE", "Sheet1!A1:AG"),
			SyncCron:        os.Getenv("SHEET_SYNC_CRON"),
			Timezone:        getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "assetflow"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_API_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			NotifyTo:      os.Getenv("WHATSAPP_NOTIFY_TO"),
		},
		Log: LogConfig{
			Level:       getenvWithDefault("LOG_LEVEL", "info"),
			Development: getenvBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("PORT must be provided")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN must be provided")
	}

	if c.Import.BatchSize <= 0 {
		return errors.New("IMPORT_BATCH_SIZE must be positive")
	}

	if c.Sheets.SyncCron != "" && !c.Sheets.Enabled() {
		return errors.New("SHEET_SYNC_CRON requires GOOGLE_CREDENTIALS_PATH and GOOGLE_SPREADSHEET_ID")
	}
	if c.Sheets.Enabled() && c.Sheets.Range == "" {
		return errors.New("GOOGLE_SHEET_RANGE must not be empty")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_API_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt64(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getenvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
