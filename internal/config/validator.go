package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/htmlindex"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var validLogLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// Validate проверяет корректность конфигурации и возвращает все ошибки сразу
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("field %s failed rule '%s' (param '%s', got '%v')",
					fe.StructField(), fe.Tag(), fe.Param(), fe.Value()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	// Валидация порта
	if c.Port != "" {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			problems = append(problems, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.ConnMaxLifetime < time.Second {
		problems = append(problems, "connection max lifetime must be at least 1 second")
	}

	if c.CSVDelimiter != "" && c.Delimiter() != '\t' && utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		problems = append(problems, fmt.Sprintf("invalid CSV delimiter: %q (single character or \\t expected)", c.CSVDelimiter))
	}

	// Кодировка источников
	if enc := strings.ToLower(c.SourceEncoding); enc != "" && enc != "auto" {
		if _, err := htmlindex.Get(enc); err != nil {
			problems = append(problems, fmt.Sprintf("unsupported source encoding: %s", c.SourceEncoding))
		}
	}

	// Валидация уровня логирования
	if c.LogLevel != "" {
		valid := false
		logLevelUpper := strings.ToUpper(c.LogLevel)
		for _, level := range validLogLevels {
			if logLevelUpper == level {
				valid = true
				break
			}
		}
		if !valid {
			problems = append(problems, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	if c.EventsPerSecond > 0 && c.Burst < 1 {
		problems = append(problems, "pipeline burst must be at least 1 when pacing is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(problems, "; "))
	}

	return nil
}
