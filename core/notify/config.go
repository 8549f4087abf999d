package notify

// Config holds configuration for Telegram notifications.
type Config struct {
	// Token is the Telegram bot token. Empty disables notifications.
	Token string `mapstructure:"token" default:""`
	// ChatID is the chat the bot posts summaries to.
	ChatID int64 `mapstructure:"chat_id" default:"0"`
	// Verbose sends a summary after every pass, not only after failures.
	Verbose bool `mapstructure:"verbose" default:"false"`
}

// Enabled reports whether the configuration is complete enough to send.
func (c Config) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}
