package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		RetailPath:      "Retail.csv",
		WarehousePath:   "Warehouse.csv",
		SourceEncoding:  "auto",
		CSVDelimiter:    ",",
		DatabaseDriver:  "sqlite3",
		DatabasePath:    "retail_inventory.db",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		CommitBatch:     500,
		Burst:           100,
		LogLevel:        "INFO",
		Port:            "9999",
	}
}

func TestConfigLogLevelValidation(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		wantError bool
	}{
		{"Valid DEBUG", "DEBUG", false},
		{"Valid INFO", "INFO", false},
		{"Valid WARN", "WARN", false},
		{"Valid ERROR", "ERROR", false},
		{"Valid lowercase debug", "debug", false},
		{"Invalid value", "INVALID", true},
		{"Empty string", "", false}, // Пустая строка допустима (будет использовано значение по умолчанию)
		{"Mixed case", "DeBuG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.logLevel

			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "oracle" }, "DatabaseDriver"},
		{"empty retail path", func(c *Config) { c.RetailPath = "" }, "RetailPath"},
		{"idle above open", func(c *Config) { c.MaxIdleConns = 20 }, "MaxIdleConns"},
		{"zero batch", func(c *Config) { c.CommitBatch = 0 }, "CommitBatch"},
		{"long delimiter", func(c *Config) { c.CSVDelimiter = ";;" }, "invalid CSV delimiter"},
		{"bad encoding", func(c *Config) { c.SourceEncoding = "klingon" }, "unsupported source encoding"},
		{"bad port", func(c *Config) { c.Port = "99999" }, "port must be between"},
		{"pacing without burst", func(c *Config) { c.EventsPerSecond = 10; c.Burst = 0 }, "burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidation_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseDriver = "oracle"
	cfg.Port = "abc"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "DatabaseDriver") || !strings.Contains(err.Error(), "invalid port") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel == "" {
		t.Error("LogLevel should have a default value")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_PATH", "postgres://user@localhost/retail")
	t.Setenv("PIPELINE_COMMIT_BATCH", "50")
	t.Setenv("PIPELINE_EVENTS_PER_SECOND", "12.5")
	t.Setenv("CSV_DELIMITER", `\t`)
	t.Setenv("DB_CONN_MAX_LIFETIME", "not-a-duration")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DatabaseDriver != "postgres" || cfg.CommitBatch != 50 || cfg.EventsPerSecond != 12.5 {
		t.Errorf("env values not applied: %+v", cfg)
	}
	if cfg.Delimiter() != '\t' {
		t.Errorf("Expected tab delimiter, got %q", cfg.Delimiter())
	}
	if cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("invalid duration should fall back to default, got %s", cfg.ConnMaxLifetime)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RETAIL_CSV_PATH=from_dotenv.csv\nSERVER_PORT=8088\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	// Уже заданная переменная не перезаписывается
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("RETAIL_CSV_PATH", "")
	os.Unsetenv("RETAIL_CSV_PATH")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("RETAIL_CSV_PATH") })

	cfg, _ := LoadConfig()
	if cfg.RetailPath != "from_dotenv.csv" {
		t.Errorf("Expected RETAIL_CSV_PATH from .env, got %q", cfg.RetailPath)
	}
	if cfg.Port != "7000" {
		t.Errorf("existing env var must win over .env, got %q", cfg.Port)
	}
}

func TestConfigConversions(t *testing.T) {
	cfg := validConfig()
	cfg.CSVDelimiter = ";"
	cfg.SourceEncoding = "windows-1251"
	cfg.EventsPerSecond = 50

	db := cfg.DBConfig()
	if db.Driver != "sqlite3" || db.DSN != "retail_inventory.db" || db.MaxOpenConns != 10 {
		t.Errorf("unexpected DBConfig: %+v", db)
	}

	reader := cfg.ReaderConfig()
	if reader.Delimiter != ';' || reader.Encoding != "windows-1251" {
		t.Errorf("unexpected ReaderConfig: %+v", reader)
	}

	pc := cfg.PipelineConfig()
	if pc.EventsPerSecond != 50 || pc.Burst != 100 {
		t.Errorf("unexpected PipelineConfig: %+v", pc)
	}
}
