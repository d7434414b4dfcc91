package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/session"
	"github.com/Tiliavir/work-time-logger/internal/tracker"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a legacy text log",
	Long: `import reads lines of the form "YYYY/MM/DD HH:MM:SS -> HH:MM:SS" (the end
may be empty for a running interval). Days already in the work log are
refused.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	days, err := session.ParseLegacy(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	return e.withLock(func(t *tracker.Tracker) error {
		n, err := t.Import(days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d day(s).\n", n)
		return nil
	})
}
