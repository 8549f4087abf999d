// Package notify sends short pass summaries to a Telegram chat.
//
// The worker notifies after a pass when something failed, or after every
// pass when verbose mode is on. Notifications are strictly one-way: no
// commands, no webhook, just a message per pass.
//
// # Notifier Interface
//
// The Notifier interface has a single Send method so the worker can be
// tested without a bot token. Nop is the default when no token is
// configured.
//
// # Usage
//
//	n, err := notify.NewTelegram(cfg, log)
//	text := notify.FormatPassSummary("sync", window, summary, report, nil)
//	err = n.Send(ctx, text)
package notify
