package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Log     LogConfig
	Server  ServerConfig
	Store   StoreConfig
	MongoDB MongoDBConfig
	Ledger  LedgerConfig
	Auth    AuthConfig
	Sheets  SheetsConfig
	Watch   WatchConfig
	Invoice InvoiceConfig
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// LedgerConfig bounds ledger writes and log pages.
type LedgerConfig struct {
	RequestTimeout time.Duration
	PageSize       int
	MaxPageSize    int
}

// AuthConfig holds the login allow-list and token settings.
type AuthConfig struct {
	// Users maps a user id to a bcrypt hash of its secret.
	Users     map[string]string
	JWTSecret string
	TokenTTL  time.Duration
}

// SheetsConfig enables the optional Google Sheets log mirror.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	LogRange        string
}

// Enabled reports whether both credentials and a spreadsheet are configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// WatchConfig holds the warehouse polling schedule.
type WatchConfig struct {
	PollSchedule string
}

// InvoiceConfig holds the business details printed on invoices.
type InvoiceConfig struct {
	CompanyName    string
	CompanyAddress string
	TaxID          string
	Currency       string
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

	timeout, err := getDuration("LEDGER_REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	pageSize, err := getInt("LOG_PAGE_SIZE", 20)
	if err != nil {
		return nil, err
	}
	maxPageSize, err := getInt("LOG_MAX_PAGE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getDuration("AUTH_TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	users, err := ParseUsers(os.Getenv("AUTH_USERS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Log: LogConfig{
			Level: os.Getenv("LOG_LEVEL"),
		},
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverMongoDB)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockledger"),
		},
		Ledger: LedgerConfig{
			RequestTimeout: timeout,
			PageSize:       pageSize,
			MaxPageSize:    maxPageSize,
		},
		Auth: AuthConfig{
			Users:     users,
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			TokenTTL:  tokenTTL,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			LogRange:        getenvWithDefault("LOG_SHEET_RANGE", "Logs!A:J"),
		},
		Watch: WatchConfig{
			PollSchedule: getenvWithDefault("WATCH_POLL_SCHEDULE", "@every 2s"),
		},
		Invoice: InvoiceConfig{
			CompanyName:    getenvWithDefault("INVOICE_COMPANY_NAME", "Mamta Enterprises"),
			CompanyAddress: getenvWithDefault("INVOICE_COMPANY_ADDRESS", "Samastipur, Bihar"),
			TaxID:          getenvWithDefault("INVOICE_TAX_ID", "GSTIN: 12ABCDE1234F1Z5"),
			Currency:       getenvWithDefault("INVOICE_CURRENCY", "Rs."),
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

	switch c.Store.Driver {
	case DriverMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.Store.Driver)
	}

	if c.Ledger.RequestTimeout <= 0 {
		return errors.New("LEDGER_REQUEST_TIMEOUT must be positive")
	}

	switch {
	case c.Ledger.MaxPageSize <= 0:
		return errors.New("LOG_MAX_PAGE_SIZE must be positive")
	case c.Ledger.PageSize <= 0:
		return errors.New("LOG_PAGE_SIZE must be positive")
	case c.Ledger.PageSize > c.Ledger.MaxPageSize:
		return errors.New("LOG_PAGE_SIZE must not exceed LOG_MAX_PAGE_SIZE")
	}

	if len(c.Auth.Users) == 0 {
		return errors.New("AUTH_USERS must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET must be provided")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}

	if c.Sheets.Enabled() && c.Sheets.LogRange == "" {
		return errors.New("LOG_SHEET_RANGE must not be empty when the sheets mirror is enabled")
	}

	if c.Watch.PollSchedule == "" {
		return errors.New("WATCH_POLL_SCHEDULE must be provided")
	}

	return nil
}

// ParseUsers decodes "id:bcryptHash,id2:bcryptHash" into a map.
func ParseUsers(raw string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range splitList(raw) {
		id, hash, ok := strings.Cut(pair, ":")
		id = strings.TrimSpace(id)
		hash = strings.TrimSpace(hash)
		if !ok || id == "" || hash == "" {
			return nil, fmt.Errorf("AUTH_USERS entry %q must look like id:hash", pair)
		}
		if _, dup := users[id]; dup {
			return nil, fmt.Errorf("AUTH_USERS lists %q twice", id)
		}
		users[id] = hash
	}
	return users, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
