package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"calblock/core/calendar"
	"calblock/core/reconcile"
)

// Notifier delivers a pass summary somewhere a human will see it.
type Notifier interface {
	// Send delivers one message.
	Send(ctx context.Context, text string) error
}

// Nop is the Notifier used when no token is configured.
type Nop struct{}

// Send discards the message.
func (Nop) Send(ctx context.Context, text string) error { return nil }

// Telegram sends messages to a fixed chat via the Bot API.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

// NewTelegram authorizes the bot and returns a Telegram notifier.
func NewTelegram(cfg Config, log *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("Telegram notifier ready", zap.String("bot", api.Self.UserName))

	return &Telegram{api: api, chatID: cfg.ChatID, log: log}, nil
}

// Send posts the text to the configured chat. The Bot API client has no
// context support, so cancellation is only checked up front.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// FormatPassSummary renders the short text sent after a pass. Window
// bounds are shown as dates since passes always span whole days.
func FormatPassSummary(mode string, window calendar.Window, summary reconcile.Summary, report *reconcile.Report, passErr error) string {
	if passErr != nil {
		return fmt.Sprintf("❌ calblock %s failed: %v", mode, passErr)
	}

	var b strings.Builder
	if report != nil && report.Failed > 0 {
		b.WriteString("⚠️ calblock ")
	} else {
		b.WriteString("✅ calblock ")
	}
	b.WriteString(mode)
	if report != nil && report.DryRun {
		b.WriteString(" (dry-run)")
	}

	fmt.Fprintf(&b, ": %d creates, %d deletes", summary.Creates, summary.Deletes)
	if report != nil && !report.DryRun {
		fmt.Fprintf(&b, ", %d applied", report.Applied)
		if report.Failed > 0 {
			fmt.Fprintf(&b, ", %d failed", report.Failed)
		}
	}
	if !window.IsZero() {
		fmt.Fprintf(&b, " for %s to %s",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
	}
	return b.String()
}
