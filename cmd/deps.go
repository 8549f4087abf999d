package cmd

import (
	"go.uber.org/zap"

	"calblock/core/archive"
	"calblock/core/config"
	"calblock/core/journal"
	"calblock/core/notify"
	"calblock/core/reconcile"
	"calblock/core/worker"
)

// openSinks assembles the configured pass observers. Each sink is
// optional; a sink that cannot be built is logged and left out so the
// pass itself still runs. The returned close function releases the
// journal handle.
func openSinks(cfg *config.Config, logg *zap.Logger) (worker.Sinks, func()) {
	sinks := worker.Sinks{Verbose: cfg.Notify.Verbose}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			logg.Warn("Journal disabled, open failed", zap.Error(err))
		} else {
			sinks.Journal = j
		}
	}

	if cfg.Archive.Enabled {
		client, err := archive.NewClient(cfg.Archive)
		if err != nil {
			logg.Warn("Plan archive disabled, client setup failed", zap.Error(err))
		} else {
			sinks.Archiver = archive.NewArchiver(client, cfg.Archive, logg)
		}
	}

	if cfg.Notify.Enabled() {
		tg, err := notify.NewTelegram(cfg.Notify, logg)
		if err != nil {
			logg.Warn("Notifications disabled, bot setup failed", zap.Error(err))
		} else {
			sinks.Notifier = tg
		}
	}

	closeSinks := func() {
		if sinks.Journal != nil {
			_ = sinks.Journal.Close()
		}
	}
	return sinks, closeSinks
}

// passOptions maps the sync settings onto the plan builder options.
func passOptions(cfg *config.Config) reconcile.Options {
	return reconcile.Options{
		BlockerSubject: cfg.Sync.BlockerSubject,
		Matcher: reconcile.Matcher{
			CompareOrganizer: cfg.Sync.MatchOrganizer,
			MinSuffix:        cfg.Sync.MinSuffix,
		},
	}
}
