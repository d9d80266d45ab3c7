package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	Ledger LedgerConfig
	Mirror MirrorConfig
}

// LedgerConfig holds the period and summary rules.
type LedgerConfig struct {
	// UTCOffsetHours is the fixed offset used to derive "today".
	UTCOffsetHours int `toml:"utc_offset_hours"`
	// GraceDays extends the reporting window past the end of the period's month.
	GraceDays int `toml:"grace_days"`
	// DailyBaseline is reserved per remaining day when computing the per-day amount.
	DailyBaseline int64 `toml:"daily_baseline"`
	// StrictPeriods fails period resolution when periods overlap on a date
	// instead of returning the earliest match.
	StrictPeriods bool `toml:"strict_periods"`

	PrimaryPerson    string `toml:"primary_person"`
	ObligationPerson string `toml:"obligation_person"`
	CashWallet       string `toml:"cash_wallet"`
	BankWallet       string `toml:"bank_wallet"`
}

// MirrorConfig selects where summary figures are mirrored.
type MirrorConfig struct {
	Backend         string `toml:"backend"`
	SpreadsheetID   string `toml:"spreadsheet_id"`
	CredentialsFile string `toml:"credentials_file"`
	CredentialsJSON string `toml:"-"`
	PerDayLabel     string `toml:"per_day_label"`
	ObligationLabel string `toml:"obligation_label"`
}

type fileConfig struct {
	Ledger LedgerConfig `toml:"ledger"`
	Mirror MirrorConfig `toml:"mirror"`
}

var appConfig *Config

// Defaults returns the built-in ledger and mirror settings.
func Defaults() (LedgerConfig, MirrorConfig) {
	return LedgerConfig{
			UTCOffsetHours:   7,
			GraceDays:        6,
			DailyBaseline:    200,
			PrimaryPerson:    "Me",
			ObligationPerson: "Nhi",
			CashWallet:       "Cash",
			BankWallet:       "Bank",
		}, MirrorConfig{
			Backend:         "none",
			PerDayLabel:     "Per Day",
			ObligationLabel: "N Remain",
		}
}

// Load loads configuration from environment variables. Ledger and mirror
// settings may also come from the TOML file named by LEDGER_CONFIG_FILE;
// environment variables take precedence over the file.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	ledger, mirror := Defaults()
	if path := os.Getenv("LEDGER_CONFIG_FILE"); path != "" {
		file := fileConfig{Ledger: ledger, Mirror: mirror}
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		ledger, mirror = file.Ledger, file.Mirror
	}

	config := &Config{
		// Server
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "ledger"),
		DBPassword: getEnv("DB_PASSWORD", "ledger"),
		DBName:     getEnv("DB_NAME", "ledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/ledger.db"),

		Ledger: LedgerConfig{
			UTCOffsetHours:   getEnvInt("LEDGER_UTC_OFFSET_HOURS", ledger.UTCOffsetHours),
			GraceDays:        getEnvInt("LEDGER_GRACE_DAYS", ledger.GraceDays),
			DailyBaseline:    int64(getEnvInt("LEDGER_DAILY_BASELINE", int(ledger.DailyBaseline))),
			StrictPeriods:    getEnvBool("LEDGER_STRICT_PERIODS", ledger.StrictPeriods),
			PrimaryPerson:    getEnv("LEDGER_PRIMARY_PERSON", ledger.PrimaryPerson),
			ObligationPerson: getEnv("LEDGER_OBLIGATION_PERSON", ledger.ObligationPerson),
			CashWallet:       getEnv("LEDGER_CASH_WALLET", ledger.CashWallet),
			BankWallet:       getEnv("LEDGER_BANK_WALLET", ledger.BankWallet),
		},
		Mirror: MirrorConfig{
			Backend:         getEnv("MIRROR_BACKEND", mirror.Backend),
			SpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", mirror.SpreadsheetID),
			CredentialsFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", mirror.CredentialsFile),
			CredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			PerDayLabel:     getEnv("MIRROR_PER_DAY_LABEL", mirror.PerDayLabel),
			ObligationLabel: getEnv("MIRROR_OBLIGATION_LABEL", mirror.ObligationLabel),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %q", c.Port))
	}

	switch c.DBDriver {
	case "postgres":
	case "sqlite":
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER %q: must be postgres or sqlite", c.DBDriver))
	}

	if c.Ledger.UTCOffsetHours < -12 || c.Ledger.UTCOffsetHours > 14 {
		problems = append(problems, fmt.Sprintf("invalid LEDGER_UTC_OFFSET_HOURS %d", c.Ledger.UTCOffsetHours))
	}
	if c.Ledger.GraceDays < 0 {
		problems = append(problems, "LEDGER_GRACE_DAYS must not be negative")
	}

	switch c.Mirror.Backend {
	case "none", "memory":
	case "sheets":
		if c.Mirror.SpreadsheetID == "" {
			problems = append(problems, "GOOGLE_SPREADSHEET_ID is required for the sheets mirror")
		}
		if c.Mirror.CredentialsFile == "" && c.Mirror.CredentialsJSON == "" {
			problems = append(problems, "GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON is required for the sheets mirror")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid MIRROR_BACKEND %q: must be none, memory or sheets", c.Mirror.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// PostgresURL returns the golang-migrate connection URL.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, value, defaultValue)
		return defaultValue
	}
	return b
}
