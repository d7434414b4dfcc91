package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-time-logger/internal/editor"
	"github.com/Tiliavir/work-time-logger/internal/storage"
)

// storeFiles maps the names accepted by "wtl edit" to store files.
var storeFiles = map[string]string{
	"logs":      storage.WorkLogFile,
	"overtimes": storage.OvertimeFile,
	"activity":  storage.ActivityFile,
}

var newLauncher = func(program string) editor.Launcher {
	return editor.NewCommand(program)
}

var editCmd = &cobra.Command{
	Use:       "edit logs|overtimes|activity",
	Short:     "Open a raw store file in the configured editor",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"logs", "overtimes", "activity"},
	RunE:      runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if pid, err := storage.RunningPID(e.cfg.DataDir); err == nil {
		return fmt.Errorf("wtl run (PID %d) owns the data directory and would overwrite your edits; stop it first", pid)
	}
	path := filepath.Join(e.cfg.DataDir, storeFiles[args[0]])
	if err := newLauncher(e.cfg.Editor).Open(path); err != nil {
		return fmt.Errorf("editing %s: %w", path, err)
	}
	return nil
}

// storeName returns the "wtl edit" argument for a store file name.
func storeName(file string) string {
	for name, f := range storeFiles {
		if f == file {
			return name
		}
	}
	return file
}
