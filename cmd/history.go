package cmd

import (
	"fmt"

	"github.com/mj1618/winmatch/internal/history"
	"github.com/mj1618/winmatch/internal/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded sessions",
	Long: `Show sessions recorded in the history database named by history_db in the
config file. With --session, print that session and its match events.

Examples:
  winmatch history
  winmatch history --profile fight --limit 5
  winmatch history --session 12 --format json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("profile", "", "Only sessions of this profile")
	historyCmd.Flags().Int("limit", 20, "Maximum number of sessions")
	historyCmd.Flags().Int64("session", 0, "Show one session with its events")
}

// sessionDetail is the output of `history --session`.
type sessionDetail struct {
	Session history.SessionRecord `yaml:"session" json:"session"`
	Events  []history.EventRecord `yaml:"events"  json:"events"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	profile, _ := cmd.Flags().GetString("profile")
	limit, _ := cmd.Flags().GetInt("limit")
	id, _ := cmd.Flags().GetInt64("session")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history is disabled: set history_db in %s", cfg.Path())
	}
	store, closeStore, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if id != 0 {
		rec, err := store.Session(id)
		if err != nil {
			return err
		}
		events, err := store.Events(id)
		if err != nil {
			return err
		}
		return output.Print(sessionDetail{Session: rec, Events: events})
	}

	sessions, err := store.RecentSessions(profile, limit)
	if err != nil {
		return err
	}
	return output.Print(sessions)
}
