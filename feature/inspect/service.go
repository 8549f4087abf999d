package inspect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"calblock/core/calendar"
	"calblock/core/config"
	"calblock/core/snapshot"
)

// Service reads account metadata and live snapshots.
type Service struct {
	accounts []config.Account
	loader   *snapshot.Loader
	logger   *zap.Logger
}

// NewService creates a new inspect service.
func NewService(accounts []config.Account, loader *snapshot.Loader, logger *zap.Logger) *Service {
	return &Service{
		accounts: accounts,
		loader:   loader,
		logger:   logger,
	}
}

// AccountView is the credential-free rendering of a configured account.
type AccountView struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Calendar string `json:"calendar,omitempty"`
}

// Accounts lists the configured accounts. Credentials never leave the
// config layer.
func (s *Service) Accounts() []AccountView {
	views := make([]AccountView, 0, len(s.accounts))
	for _, a := range s.accounts {
		views = append(views, AccountView{Name: a.Name, URL: a.URL, Calendar: a.Calendar})
	}
	return views
}

// SnapshotPeek is the GET /inspect/snapshot response body.
type SnapshotPeek struct {
	Account      string           `json:"account"`
	Window       calendar.Window  `json:"window"`
	MeetingCount int              `json:"meeting_count"`
	BlockerCount int              `json:"blocker_count"`
	Meetings     []calendar.Event `json:"meetings"`
	Blockers     []calendar.Event `json:"blockers"`
}

// Snapshot loads one account's live view for the next days, starting at
// the current day. Unknown accounts map to calendar.ErrUnknownAccount.
func (s *Service) Snapshot(ctx context.Context, account string, days int) (*SnapshotPeek, error) {
	if !s.knows(account) {
		return nil, calendar.ErrUnknownAccount
	}

	window := calendar.NewWindow(calendar.StartOfDay(time.Now()), days)
	snap, err := s.loader.LoadOne(ctx, account, window)
	if err != nil {
		return nil, err
	}

	return &SnapshotPeek{
		Account:      snap.Name,
		Window:       window,
		MeetingCount: len(snap.Meetings),
		BlockerCount: len(snap.Blockers),
		Meetings:     snap.Meetings,
		Blockers:     snap.Blockers,
	}, nil
}

func (s *Service) knows(account string) bool {
	for _, a := range s.accounts {
		if a.Name == account {
			return true
		}
	}
	return false
}
