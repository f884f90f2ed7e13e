package cmd

import (
	"fmt"
	"io"

	"github.com/mj1618/winmatch/internal/config"
	"github.com/mj1618/winmatch/internal/output"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Show the profiles in the config file",
	Long:  "Validate the config file and print every profile with its defaults filled in.",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

// profilesResult is the output of the `profiles` command.
type profilesResult struct {
	Config   string           `yaml:"config"               json:"config"`
	ResDir   string           `yaml:"res_dir"              json:"res_dir"`
	StopKeys string           `yaml:"stop_keys"            json:"stop_keys"`
	History  string           `yaml:"history_db,omitempty" json:"history_db,omitempty"`
	Profiles []config.Profile `yaml:"profiles"             json:"profiles"`
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return output.Print(profilesResult{
		Config:   cfg.Path(),
		ResDir:   cfg.ResDir,
		StopKeys: cfg.StopKeys,
		History:  cfg.HistoryDB,
		Profiles: cfg.Profiles,
	})
}

// printHelp lists the console commands.
func printHelp(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "------------ Commands ------------")
	for i := range cfg.Profiles {
		p := &cfg.Profiles[i]
		fmt.Fprintf(w, "%s: run %s\n", p.Cmd, p.DisplayName())
	}
	fmt.Fprintln(w, "t, test: run the test spinner")
	fmt.Fprintln(w, "h, help: show this list")
	fmt.Fprintln(w, "q, quit, exit: leave")
	fmt.Fprintln(w, "----------------------------------")
	fmt.Fprintln(w)
}
