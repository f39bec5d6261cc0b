package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/sentenceflash/internal/logger"
)

// Spreadsheet sources.
const (
	SourceGoogle   = "google"
	SourceWorkbook = "workbook"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	Source             string
	WorkbookDir        string
	DefaultSheet       string
	GoogleAPIKey       string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	LoadWorkerCount    int
	LoadQueueSize      int

	// Header names used to locate card fields in the first sheet row.
	ColumnSection string
	ColumnNum     string
	ColumnSource  string
	ColumnTarget  string
	ColumnGrammar string
	ColumnNote    []string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:sentenceflash.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		Source:             strings.ToLower(envOr("SOURCE", SourceGoogle)),
		WorkbookDir:        envOr("WORKBOOK_DIR", "workbooks"),
		DefaultSheet:       envOr("DEFAULT_SHEET", "Sheet1"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		LoadWorkerCount:    envIntOr("LOAD_WORKER_COUNT", 1),
		LoadQueueSize:      envIntOr("LOAD_QUEUE_SIZE", 16),
		ColumnSection:      envOr("COLUMN_SECTION", "section"),
		ColumnNum:          envOr("COLUMN_NUM", "#"),
		ColumnSource:       envOr("COLUMN_SOURCE", "日本語"),
		ColumnTarget:       envOr("COLUMN_TARGET", "英語"),
		ColumnGrammar:      envOr("COLUMN_GRAMMAR", "構文"),
		ColumnNote:         envListOr("COLUMN_NOTE", []string{"解説", "備考"}),
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.DefaultSheet == "" {
		errs = append(errs, errors.New("DEFAULT_SHEET cannot be empty"))
	}
	if c.ColumnSource == "" || c.ColumnTarget == "" {
		errs = append(errs, errors.New("COLUMN_SOURCE and COLUMN_TARGET cannot be empty"))
	}
	if c.LoadWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("LOAD_WORKER_COUNT must be at least 1 (got %d)", c.LoadWorkerCount))
	}
	if c.LoadQueueSize < 1 {
		errs = append(errs, fmt.Errorf("LOAD_QUEUE_SIZE must be at least 1 (got %d)", c.LoadQueueSize))
	}

	switch c.Source {
	case SourceGoogle:
		if c.GoogleClientID == "" {
			errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required when SOURCE=google"))
		}
		if c.GoogleRedirectURL == "" {
			errs = append(errs, errors.New("GOOGLE_REDIRECT_URL is required when SOURCE=google"))
		}
	case SourceWorkbook:
		if c.WorkbookDir == "" {
			errs = append(errs, errors.New("WORKBOOK_DIR is required when SOURCE=workbook"))
		} else if info, err := os.Stat(c.WorkbookDir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("WORKBOOK_DIR %q is not a directory", c.WorkbookDir))
		}
	default:
		errs = append(errs, fmt.Errorf("SOURCE must be %q or %q (got %q)", SourceGoogle, SourceWorkbook, c.Source))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envListOr splits a comma-separated value, dropping blank entries.
func envListOr(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
