// Package config provides configuration management for calblock.
//
// It utilizes Viper for loading configuration from environment
// variables, an optional .env file, and an optional calblock.yaml.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Accounts: the CalDAV accounts to keep in sync (config file only)
//   - Sync: window length, schedule, placeholder label, matcher policy
//   - Server: status API settings (enabled, port, API key)
//   - Log: logging level and format
//   - Journal: pass history database connection
//   - Archive: S3/MinIO plan archive credentials and bucket
//   - Notify: Telegram notification settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Days)
package config
