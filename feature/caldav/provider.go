package caldav

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"calblock/core/calendar"
	"calblock/core/config"
)

// Provider talks to the CalDAV endpoints of the configured accounts.
// It implements calendar.Provider.
type Provider struct {
	accounts map[string]*accountClient
	log      *zap.Logger
}

// CalendarInfo describes one calendar collection found on an account.
type CalendarInfo struct {
	// Path is the collection path used for queries and event objects.
	Path string `json:"path"`

	// Name is the display name reported by the server.
	Name string `json:"name"`

	// Description is the server-side description, if any.
	Description string `json:"description,omitempty"`
}

// New creates a provider for the given accounts. Connections are
// established on first use per account.
func New(accounts []config.Account, log *zap.Logger) *Provider {
	m := make(map[string]*accountClient, len(accounts))
	for _, a := range accounts {
		m[a.Name] = &accountClient{account: a}
	}
	return &Provider{accounts: m, log: log}
}

// ListEvents returns the expanded occurrences of the account's events
// whose start falls inside the window. A zero window queries without a
// time-range filter and returns everything the calendar holds.
func (p *Provider) ListEvents(ctx context.Context, account string, window calendar.Window) ([]calendar.Event, error) {
	ac, err := p.forAccount(account)
	if err != nil {
		return nil, err
	}
	client, err := ac.connect()
	if err != nil {
		return nil, err
	}
	calendarPath, err := ac.calendarFor(ctx)
	if err != nil {
		return nil, err
	}

	eventFilter := caldav.CompFilter{Name: "VEVENT"}
	if !window.IsZero() {
		eventFilter.Start = window.Start
		eventFilter.End = window.End
	}
	query := &caldav.CalendarQuery{
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{eventFilter},
		},
	}

	objects, err := client.QueryCalendar(ctx, calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar for account %s: %w", account, err)
	}

	events := make([]calendar.Event, 0, len(objects))
	for _, obj := range objects {
		events = append(events, expandObject(&obj, window, p.log)...)
	}
	return events, nil
}

// CreateBlocker writes the placeholder as a new single-VEVENT object
// in the account's calendar.
func (p *Provider) CreateBlocker(ctx context.Context, account string, tpl calendar.Event) error {
	ac, err := p.forAccount(account)
	if err != nil {
		return err
	}
	client, err := ac.connect()
	if err != nil {
		return err
	}
	calendarPath, err := ac.calendarFor(ctx)
	if err != nil {
		return err
	}

	uid := uuid.NewString() + uidSuffix
	obj := blockerCalendar(uid, tpl)

	if _, err := client.PutCalendarObject(ctx, objectPath(calendarPath, uid), obj); err != nil {
		return fmt.Errorf("create blocker in account %s: %w", account, err)
	}
	return nil
}

// DeleteEvent removes the object a listing reported under ref. A ref
// that no longer exists maps to calendar.ErrNotFound so callers can
// treat the delete as already done.
func (p *Provider) DeleteEvent(ctx context.Context, account string, ref string) error {
	ac, err := p.forAccount(account)
	if err != nil {
		return err
	}
	client, err := ac.connect()
	if err != nil {
		return err
	}
	if err := client.RemoveAll(ctx, ref); err != nil {
		if webdav.IsNotFound(err) {
			return fmt.Errorf("%w: %s", calendar.ErrNotFound, ref)
		}
		return fmt.Errorf("delete event %s in account %s: %w", ref, account, err)
	}
	return nil
}

// DiscoverCalendars lists the calendar collections of the account.
func (p *Provider) DiscoverCalendars(ctx context.Context, account string) ([]CalendarInfo, error) {
	ac, err := p.forAccount(account)
	if err != nil {
		return nil, err
	}
	cals, err := ac.discover(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]CalendarInfo, 0, len(cals))
	for _, c := range cals {
		infos = append(infos, CalendarInfo{Path: c.Path, Name: c.Name, Description: c.Description})
	}
	return infos, nil
}

func (p *Provider) forAccount(name string) (*accountClient, error) {
	ac, ok := p.accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", calendar.ErrUnknownAccount, name)
	}
	return ac, nil
}

// accountClient holds the lazily established session for one account.
type accountClient struct {
	account config.Account

	mu           sync.Mutex
	client       *caldav.Client
	calendarPath string
}

// connect establishes the CalDAV client on first use.
func (a *accountClient) connect() (*caldav.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: a.account.Username,
			password: a.account.Password,
		},
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, a.account.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV for account %s: %w", a.account.Name, err)
	}

	a.client = client
	return client, nil
}

// calendarFor resolves the calendar collection to operate on: the
// configured path when set, otherwise the account's first discovered
// calendar. The discovered path is cached for the process lifetime.
func (a *accountClient) calendarFor(ctx context.Context) (string, error) {
	if a.account.Calendar != "" {
		return a.account.Calendar, nil
	}

	a.mu.Lock()
	cached := a.calendarPath
	a.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	cals, err := a.discover(ctx)
	if err != nil {
		return "", err
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("account %s has no calendars", a.account.Name)
	}

	a.mu.Lock()
	a.calendarPath = cals[0].Path
	a.mu.Unlock()
	return cals[0].Path, nil
}

// discover walks the standard chain from the current user principal to
// the calendars below the home set.
func (a *accountClient) discover(ctx context.Context) ([]caldav.Calendar, error) {
	client, err := a.connect()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal for account %s: %w", a.account.Name, err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find calendar home set for account %s: %w", a.account.Name, err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars for account %s: %w", a.account.Name, err)
	}
	return cals, nil
}

// objectPath joins a calendar collection path and an event UID into
// the path the object is stored under.
func objectPath(calendarPath, uid string) string {
	if !strings.HasSuffix(calendarPath, "/") {
		calendarPath += "/"
	}
	return calendarPath + uid + ".ics"
}

// basicAuthTransport adds basic auth to every request.
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}
