package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"retailsync/database"
	"retailsync/importer"
	"retailsync/pipeline"
)

// Config конфигурация запуска сверки
type Config struct {
	// Источники
	RetailPath     string `json:"retail_path" validate:"required"`
	WarehousePath  string `json:"warehouse_path" validate:"required"`
	SourceEncoding string `json:"source_encoding" validate:"required"`
	CSVDelimiter   string `json:"csv_delimiter" validate:"required"`

	// База данных
	DatabaseDriver  string        `json:"database_driver" validate:"oneof=sqlite3 postgres mysql"`
	DatabasePath    string        `json:"database_path" validate:"required"`
	MaxOpenConns    int           `json:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `json:"max_idle_conns" validate:"gte=1,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Нормализация
	NormalizerRulesPath string `json:"normalizer_rules_path"`

	// Конвейер
	CommitBatch     int     `json:"commit_batch" validate:"gte=1"`
	EventsPerSecond float64 `json:"events_per_second" validate:"gte=0"`
	Burst           int     `json:"burst" validate:"gte=0"`

	// Логирование
	LogLevel string `json:"log_level"`

	// HTTP API
	Port string `json:"port"`
}

// LoadDotEnv загружает переменные из .env файла, если он есть.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		log.Printf("Loaded environment from %s", path)
	}
	return nil
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		RetailPath:          getEnv("RETAIL_CSV_PATH", "Retail.csv"),
		WarehousePath:       getEnv("WAREHOUSE_CSV_PATH", "Warehouse.csv"),
		SourceEncoding:      getEnv("SOURCE_ENCODING", "auto"),
		CSVDelimiter:        getEnv("CSV_DELIMITER", ","),
		DatabaseDriver:      getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabasePath:        getEnv("DATABASE_PATH", "retail_inventory.db"),
		MaxOpenConns:        getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:        getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:     getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		NormalizerRulesPath: os.Getenv("NORMALIZER_RULES_PATH"),
		CommitBatch:         getEnvInt("PIPELINE_COMMIT_BATCH", 500),
		EventsPerSecond:     getEnvFloat("PIPELINE_EVENTS_PER_SECOND", 0),
		Burst:               getEnvInt("PIPELINE_BURST", 100),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
		Port:                getEnv("SERVER_PORT", "9999"),
	}

	return config, nil
}

// Delimiter возвращает разделитель CSV как руну
func (c *Config) Delimiter() rune {
	if c.CSVDelimiter == `\t` || strings.EqualFold(c.CSVDelimiter, "tab") {
		return '\t'
	}
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid integer in %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid number in %s=%q, using %g", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration in %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

// DBConfig возвращает параметры подключения к хранилищу
func (c *Config) DBConfig() database.DBConfig {
	return database.DBConfig{
		Driver:          c.DatabaseDriver,
		DSN:             c.DatabasePath,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// ReaderConfig возвращает параметры чтения исходных файлов
func (c *Config) ReaderConfig() importer.ReaderConfig {
	return importer.ReaderConfig{
		Delimiter: c.Delimiter(),
		Encoding:  c.SourceEncoding,
	}
}

// PipelineConfig возвращает параметры конвейера записи
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		EventsPerSecond: c.EventsPerSecond,
		Burst:           c.Burst,
	}
}
