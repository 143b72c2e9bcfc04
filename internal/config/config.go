package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/fishledger/internal/domain/pricing"
)

// Storage drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Ledger    LedgerConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// LedgerConfig holds the business constants used for pricing and stock.
type LedgerConfig struct {
	TrayWeightKg             float64
	DispatchDeductionPercent float64
	IntakeNetFactor          float64
}

// Policy converts the ledger settings into a pricing policy.
func (l LedgerConfig) Policy() pricing.Policy {
	return pricing.Policy{
		PerTrayWeightKg:          l.TrayWeightKg,
		DispatchDeductionPercent: l.DispatchDeductionPercent,
		IntakeNetFactor:          l.IntakeNetFactor,
	}
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// Enabled reports whether outbound messaging is configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to export to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether snapshot export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	SnapshotSchedule string
	DigestSchedule   string
	Timezone         string
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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	trayWeight, err := getenvFloat("TRAY_WEIGHT_KG", 35)
	if err != nil {
		return nil, err
	}
	deduction, err := getenvFloat("DISPATCH_DEDUCTION_PERCENT", 5)
	if err != nil {
		return nil, err
	}
	netFactor, err := getenvFloat("INTAKE_NET_FACTOR", 0.95)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver: getenvWithDefault("STORAGE_DRIVER", DriverMongo),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "fishledger"),
		},
		Ledger: LedgerConfig{
			TrayWeightKg:             trayWeight,
			DispatchDeductionPercent: deduction,
			IntakeNetFactor:          netFactor,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Reporting: ReportingConfig{
			SnapshotSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 21 * * *"),
			DigestSchedule:   getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:         getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
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
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when STORAGE_DRIVER=mongo")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.Storage.Driver)
	}

	if err := c.Ledger.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid ledger policy: %w", err)
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_EXPORT_ID must be set together")
	}

	if c.Reporting.SnapshotSchedule == "" || c.Reporting.DigestSchedule == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE and DIGEST_CRON_SCHEDULE must not be empty")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return parsed, nil
}
