package cmd

import (
	"strings"
	"time"

	"github.com/mj1618/winmatch/internal/output"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible windows",
	Long:  "List visible top-level windows with their handle, title, PID and client-area bounds. Use the titles to write a profile's window_name.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("title", "", "Only windows whose title contains this substring")
	listCmd.Flags().Int("pid", 0, "Filter windows by PID")
}

func runList(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	pid, _ := cmd.Flags().GetInt("pid")

	windows, err := provider.Windows.ListWindows()
	if err != nil {
		return err
	}
	return output.Print(output.WindowsResult{
		TS:      time.Now().Unix(),
		Windows: output.NewWindowEntries(filterWindows(windows, title, pid)),
	})
}

func filterWindows(windows []platform.Window, title string, pid int) []platform.Window {
	out := []platform.Window{}
	for _, w := range windows {
		if title != "" && !strings.Contains(w.Title, title) {
			continue
		}
		if pid != 0 && w.PID != pid {
			continue
		}
		out = append(out, w)
	}
	return out
}
