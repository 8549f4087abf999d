package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"calblock/core/archive"
	"calblock/core/calendar"
	"calblock/core/journal"
	"calblock/core/logger"
	"calblock/core/notify"
	"calblock/core/server"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Accounts lists the calendar accounts to keep in sync.
	Accounts []Account `mapstructure:"accounts"`
	// Sync holds the pass options: window, schedule, matcher policy.
	Sync SyncConfig `mapstructure:"sync"`
	// Server holds configuration for the status HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Journal holds configuration for the pass history database.
	Journal journal.Config `mapstructure:"journal"`
	// Archive holds configuration for the plan archive bucket.
	Archive archive.Config `mapstructure:"archive"`
	// Notify holds configuration for pass notifications.
	Notify notify.Config `mapstructure:"notify"`
}

// Account describes one CalDAV account.
type Account struct {
	// Name identifies the account in plans, logs and reports.
	Name string `mapstructure:"name"`
	// URL is the CalDAV endpoint.
	URL string `mapstructure:"url"`
	// Username is the login for basic authentication.
	Username string `mapstructure:"username"`
	// Password is the password for basic authentication.
	Password string `mapstructure:"password"`
	// Calendar is the calendar collection path. Empty selects the
	// account's first discovered calendar.
	Calendar string `mapstructure:"calendar"`
}

// SyncConfig holds the per-pass options.
type SyncConfig struct {
	// Days is the sync window length in days.
	Days int `mapstructure:"days" default:"30"`
	// Start fixes the window start date (YYYY-MM-DD). Empty starts
	// the window at the current day.
	Start string `mapstructure:"start" default:""`
	// Schedule is the cron spec driving background passes.
	Schedule string `mapstructure:"schedule" default:"@hourly"`
	// BlockerSubject is the label given to created placeholders.
	BlockerSubject string `mapstructure:"blocker_subject" default:"Blocker"`
	// MatchOrganizer also compares organizer identity when deciding
	// whether a meeting is already visible in a target account.
	MatchOrganizer bool `mapstructure:"match_organizer" default:"false"`
	// MinSuffix refuses subject equivalence when the compared suffix
	// is shorter than this. Zero keeps the historical behavior.
	MinSuffix int `mapstructure:"min_suffix" default:"0"`
	// LockFile is the single-instance lock path. Empty picks
	// calblock.lock in the system temp directory.
	LockFile string `mapstructure:"lock_file" default:""`
}

// Window computes the sync window for a pass running at now: from the
// configured start date, or from the start of the current day, for the
// configured number of days.
func (s SyncConfig) Window(now time.Time) (calendar.Window, error) {
	start := calendar.StartOfDay(now)
	if s.Start != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s.Start, now.Location())
		if err != nil {
			return calendar.Window{}, fmt.Errorf("invalid sync start date %q: %w", s.Start, err)
		}
		start = parsed
	}
	return calendar.NewWindow(start, s.Days), nil
}

// AccountNames returns the configured account names in order.
func (c *Config) AccountNames() []string {
	names := make([]string, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		names = append(names, a.Name)
	}
	return names
}

// Validate checks that the account list can carry a sync pass.
func (c *Config) Validate() error {
	if len(c.Accounts) < 2 {
		return calendar.ErrTooFewAccounts
	}
	seen := make(map[string]struct{}, len(c.Accounts))
	for i, a := range c.Accounts {
		if a.Name == "" {
			return fmt.Errorf("account %d has no name", i)
		}
		if a.URL == "" {
			return fmt.Errorf("account %s has no url", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("duplicate account name %s", a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	if c.Sync.Days <= 0 {
		return errors.New("sync.days must be positive")
	}
	return nil
}

// LoadConfig loads configuration from environment variables, an
// optional .env file and an optional calblock.yaml in the given path.
// The accounts list can only come from the config file; every scalar
// key can also be set through the environment (SYNC_DAYS, LOG_LEVEL).
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_DAYS -> sync.days)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 2. Overlay the config file when present
	v.SetConfigName("calblock")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// Slices and maps (e.g. accounts) only come from the config
		// file; defaults and env binding cover scalar keys.
		if field.Type.Kind() == reflect.Slice || field.Type.Kind() == reflect.Map {
			continue
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
