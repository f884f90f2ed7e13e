package cmd

import (
	"fmt"
	"log/slog"

	"github.com/mj1618/winmatch/internal/config"
	"github.com/mj1618/winmatch/internal/history"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
)

// loadConfig loads the file named by --config.
func loadConfig() (*config.Config, error) {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("config loaded", "path", path, "profiles", len(cfg.Profiles))
	return cfg, nil
}

// profileOptions resolves a profile by command token.
func profileOptions(cfg *config.Config, name string) (*config.Profile, session.Options, error) {
	p, ok := cfg.Profile(name)
	if !ok {
		return nil, session.Options{}, fmt.Errorf("unknown profile: %s (see `winmatch profiles`)", name)
	}
	opts, err := cfg.SessionOptions(p)
	if err != nil {
		return nil, session.Options{}, err
	}
	return p, opts, nil
}

// openHistory opens the history database when the config names one. The
// returned close function is never nil.
func openHistory(cfg *config.Config) (*history.Store, func(), error) {
	if cfg.HistoryDB == "" {
		return nil, func() {}, nil
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return nil, func() {}, err
	}
	return store, func() { store.Close() }, nil
}

// sessionReporter combines the console reporter with the history recorder
// when history is enabled.
func sessionReporter(console session.Reporter, store *history.Store) session.Reporter {
	if store == nil {
		return console
	}
	return session.Reporters(console, history.NewRecorder(store))
}

// findWindow resolves a window by title substring.
func findWindow(provider *platform.Provider, title string) (platform.Window, error) {
	if title == "" {
		return platform.Window{}, fmt.Errorf("--window is required")
	}
	return platform.FindWindow(provider.Windows, title)
}
