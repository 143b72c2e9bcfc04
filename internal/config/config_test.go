package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("TRAY_WEIGHT_KG", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 35.0, cfg.Ledger.TrayWeightKg)
	assert.Equal(t, 5.0, cfg.Ledger.DispatchDeductionPercent)
	assert.Equal(t, 0.95, cfg.Ledger.IntakeNetFactor)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORAGE_DRIVER=memory\nTRAY_WEIGHT_KG=40\nDISPATCH_DEDUCTION_PERCENT=3\nAPP_PORT=9090\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	for _, key := range []string{"STORAGE_DRIVER", "TRAY_WEIGHT_KG", "DISPATCH_DEDUCTION_PERCENT", "APP_PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)

	policy := cfg.Ledger.Policy()
	assert.Equal(t, 40.0, policy.PerTrayWeightKg)
	assert.Equal(t, 3.0, policy.DispatchDeductionPercent)
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("INTAKE_NET_FACTOR", "ninety")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "INTAKE_NET_FACTOR")
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Storage:   StorageConfig{Driver: DriverMemory},
		Ledger:    LedgerConfig{TrayWeightKg: 35, DispatchDeductionPercent: 5, IntakeNetFactor: 0.95},
		Reporting: ReportingConfig{SnapshotSchedule: "0 21 * * *", DigestSchedule: "0 20 * * 5", Timezone: "Asia/Kolkata"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"mongo without uri", func(c *Config) { c.Storage.Driver = DriverMongo }, "MONGODB_URI"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, "STORAGE_DRIVER"},
		{"zero tray weight", func(c *Config) { c.Ledger.TrayWeightKg = 0 }, "ledger policy"},
		{"whatsapp without verify token", func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", BaseURL: "u", APIVersion: "v"}
		}, "META_VERIFY_TOKEN"},
		{"half configured sheets", func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{"missing timezone", func(c *Config) { c.Reporting.Timezone = "" }, "TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
