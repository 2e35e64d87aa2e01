package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// The kiosk runs on one machine and is configured through TIMECLOCK_*
// environment variables, optionally backed by a config file named in
// TIMECLOCK_CONFIG.

const envPrefix = "TIMECLOCK"

// Store backends.
const (
	BackendXLSX     = "xlsx"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	RecordsPath   string `mapstructure:"RECORDS_PATH"`
	EmployeesPath string `mapstructure:"EMPLOYEES_PATH"`
	StoreBackend  string `mapstructure:"STORE_BACKEND"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	LunchAllowance    time.Duration `mapstructure:"LUNCH_ALLOWANCE"`
	DefaultShiftHours float64       `mapstructure:"DEFAULT_SHIFT_HOURS"`
	ShiftChoices      []float64     `mapstructure:"SHIFT_CHOICES"`
	TickInterval      time.Duration `mapstructure:"TICK_INTERVAL"`
	BlinkInterval     time.Duration `mapstructure:"BLINK_INTERVAL"`
	Timezone          string        `mapstructure:"TIMEZONE"`

	IsLocalDev    bool   `mapstructure:"IS_LOCAL_DEV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	TraceExporter string `mapstructure:"TRACE_EXPORTER"`
	TraceEndpoint string `mapstructure:"TRACE_ENDPOINT"`
	TraceFile     string `mapstructure:"TRACE_FILE"`
	JournalPath   string `mapstructure:"JOURNAL_PATH"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (config Config, err error) {
	v := viper.New()

	v.SetDefault("RECORDS_PATH", "registro_personal.xlsx")
	v.SetDefault("EMPLOYEES_PATH", "empleados.xlsx")
	v.SetDefault("STORE_BACKEND", BackendXLSX)
	v.SetDefault("SQLITE_PATH", "timeclock.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "timeclock")
	v.SetDefault("DB_PASSWORD", "timeclock")
	v.SetDefault("DB_NAME", "timeclock")
	v.SetDefault("LUNCH_ALLOWANCE", "60m")
	v.SetDefault("DEFAULT_SHIFT_HOURS", 7)
	v.SetDefault("SHIFT_CHOICES", []float64{4, 5, 6, 7})
	v.SetDefault("TICK_INTERVAL", "1s")
	v.SetDefault("BLINK_INTERVAL", "500ms")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("TRACE_EXPORTER", "none")
	v.SetDefault("TRACE_ENDPOINT", "localhost:4317")
	v.SetDefault("TRACE_FILE", "")
	v.SetDefault("JOURNAL_PATH", "eventos.jsonl")

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err = v.ReadInConfig(); err != nil {
			return config, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// Read in environment variables that match the keys.
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err = v.Unmarshal(&config); err != nil {
		return config, err
	}
	return config, config.Validate()
}

// Validate rejects settings the kiosk cannot run with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendXLSX, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.LunchAllowance <= 0 {
		return fmt.Errorf("LUNCH_ALLOWANCE must be positive, got %s", c.LunchAllowance)
	}
	if c.TickInterval <= 0 || c.BlinkInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL and BLINK_INTERVAL must be positive")
	}
	if c.DefaultShiftHours <= 0 {
		return fmt.Errorf("DEFAULT_SHIFT_HOURS must be positive, got %v", c.DefaultShiftHours)
	}
	if len(c.ShiftChoices) == 0 {
		return fmt.Errorf("SHIFT_CHOICES must not be empty")
	}
	for _, h := range c.ShiftChoices {
		if h <= 0 {
			return fmt.Errorf("SHIFT_CHOICES must be positive, got %v", h)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TIMEZONE. "Local" and "" mean the machine's zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
