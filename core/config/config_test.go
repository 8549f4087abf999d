package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calblock/core/calendar"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Sync.Days)
	assert.Equal(t, "@hourly", cfg.Sync.Schedule)
	assert.Equal(t, "Blocker", cfg.Sync.BlockerSubject)
	assert.Equal(t, 0, cfg.Sync.MinSuffix)
	assert.False(t, cfg.Sync.MatchOrganizer)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Server.Enabled)
	assert.Empty(t, cfg.Accounts)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SYNC_DAYS", "7")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_ENABLED", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Sync.Days)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Server.Enabled)
}

func TestLoadConfig_FileProvidesAccounts(t *testing.T) {
	dir := t.TempDir()
	yaml := `
accounts:
  - name: work
    url: https://dav.example.com/work/
    username: alice
    password: secret
  - name: private
    url: https://dav.example.org/alice/
    username: alice@example.org
    password: hunter2
    calendar: /calendars/alice/default/
sync:
  days: 14
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calblock.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "work", cfg.Accounts[0].Name)
	assert.Equal(t, "https://dav.example.com/work/", cfg.Accounts[0].URL)
	assert.Equal(t, "/calendars/alice/default/", cfg.Accounts[1].Calendar)
	assert.Equal(t, []string{"work", "private"}, cfg.AccountNames())
	assert.Equal(t, 14, cfg.Sync.Days)
}

func TestLoadConfig_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "sync:\n  days: 14\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calblock.yaml"), []byte(yaml), 0o600))

	t.Setenv("SYNC_DAYS", "3")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Sync.Days)
}

func TestSyncConfig_Window(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 42, 7, 0, time.UTC)

	t.Run("defaults to start of current day", func(t *testing.T) {
		w, err := SyncConfig{Days: 30}.Window(now)
		assert.NoError(t, err)
		assert.True(t, w.Start.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
		assert.True(t, w.End.Equal(time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("fixed start date", func(t *testing.T) {
		w, err := SyncConfig{Days: 7, Start: "2024-07-01"}.Window(now)
		assert.NoError(t, err)
		assert.True(t, w.Start.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, w.End.Equal(time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("invalid start date", func(t *testing.T) {
		_, err := SyncConfig{Days: 7, Start: "01.07.2024"}.Window(now)
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Accounts: []Account{
				{Name: "work", URL: "https://dav.example.com/"},
				{Name: "private", URL: "https://dav.example.org/"},
			},
			Sync: SyncConfig{Days: 30},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("too few accounts", func(t *testing.T) {
		cfg := valid()
		cfg.Accounts = cfg.Accounts[:1]
		assert.ErrorIs(t, cfg.Validate(), calendar.ErrTooFewAccounts)
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := valid()
		cfg.Accounts[1].Name = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing url", func(t *testing.T) {
		cfg := valid()
		cfg.Accounts[0].URL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("duplicate name", func(t *testing.T) {
		cfg := valid()
		cfg.Accounts[1].Name = "work"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive days", func(t *testing.T) {
		cfg := valid()
		cfg.Sync.Days = 0
		assert.Error(t, cfg.Validate())
	})
}
