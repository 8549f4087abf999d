package inspect

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calblock/core/calendar"
	"calblock/core/calendar/mocks"
	"calblock/core/config"
	"calblock/core/snapshot"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Provider) {
	t.Helper()
	mockProvider := new(mocks.Provider)
	accounts := []config.Account{
		{Name: "work", URL: "https://dav.example.com", Username: "u", Password: "secret", Calendar: "/calendars/work/"},
		{Name: "private", URL: "https://cloud.example.org"},
	}

	app := fiber.New()
	feature := NewFeature(accounts, snapshot.NewLoader(mockProvider, zap.NewNop()), zap.NewNop())
	require.NoError(t, feature.Load(app))
	return app, mockProvider
}

func TestFeature(t *testing.T) {
	feature := NewFeature(nil, nil, zap.NewNop())
	assert.Equal(t, "inspect", feature.Name())
	assert.True(t, feature.IsEnabled())
}

func TestHandleAccounts_OmitsCredentials(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/inspect/accounts", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var views []AccountView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 2)
	assert.Equal(t, "work", views[0].Name)
	assert.Equal(t, "/calendars/work/", views[0].Calendar)

	// The raw body must not leak the password anywhere.
	raw, err := json.Marshal(views)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestHandleSnapshot(t *testing.T) {
	app, mockProvider := setupTestApp(t)

	start := calendar.StartOfDay(time.Now()).Add(10 * time.Hour)
	blocker := calendar.Event{
		SourceID:       "b-1",
		CorrelationTag: "m-9",
		Start:          start,
		End:            start.Add(time.Hour),
		Busy:           calendar.BusyStatusBusy,
	}
	meeting := calendar.Event{
		SourceID: "m-1",
		Subject:  "Design Sync",
		Start:    start.Add(2 * time.Hour),
		End:      start.Add(3 * time.Hour),
		Busy:     calendar.BusyStatusBusy,
	}
	mockProvider.On("ListEvents", mock.Anything, "work", mock.Anything).
		Return([]calendar.Event{meeting, blocker}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/inspect/snapshot?account=work&days=7", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var peek SnapshotPeek
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&peek))
	assert.Equal(t, "work", peek.Account)
	assert.Equal(t, 1, peek.MeetingCount)
	assert.Equal(t, 1, peek.BlockerCount)
	require.Len(t, peek.Blockers, 1)
	assert.Equal(t, "m-9", peek.Blockers[0].CorrelationTag)
}

func TestHandleSnapshot_UnknownAccount(t *testing.T) {
	app, mockProvider := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/inspect/snapshot?account=nope", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	mockProvider.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSnapshot_MissingAccountParam(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/inspect/snapshot", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleSnapshot_ProviderError(t *testing.T) {
	app, mockProvider := setupTestApp(t)
	mockProvider.On("ListEvents", mock.Anything, "work", mock.Anything).
		Return(nil, assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/inspect/snapshot?account=work", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
