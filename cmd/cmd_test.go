package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/work-time-logger/internal/editor"
	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

func TestExitCode(t *testing.T) {
	_, statErr := os.Stat(filepath.Join(t.TempDir(), "missing"))
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"user error", errors.New("invalid date"), 1},
		{"locked", storage.ErrLocked, 1},
		{"corrupt", &storage.CorruptError{Path: "log.json", Err: errors.New("bad")}, 2},
		{"wrapped corrupt", fmt.Errorf("opening: %w", &storage.CorruptError{Path: "x", Err: errors.New("bad")}), 2},
		{"data directory io", fmt.Errorf("saving: %w", &storage.Error{Op: "writing", Path: "log.json.tmp", Err: statErr}), 2},
		{"user path", fmt.Errorf("opening import file: %w", statErr), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDescribeAddsEditHint(t *testing.T) {
	err := describe(fmt.Errorf("opening: %w", &storage.CorruptError{Path: "/data/overtimes.json", Err: errors.New("bad")}))
	if !strings.Contains(err.Error(), "wtl edit overtimes") {
		t.Errorf("describe() = %q, want edit hint", err)
	}
	plain := errors.New("plain")
	if describe(plain) != plain {
		t.Errorf("describe() changed a non-corrupt error")
	}
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "2026/10/17", false},
		{"2026/10/01", "2026/10/01", false},
		{"2026-10-01", "", true},
		{"2026/13/01", "", true},
	}
	for _, tt := range tests {
		got, err := resolveDate(tt.input, now)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveDate(%q) = %q, %v; want %q, err=%v", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestResolveMonth(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "2026/10", false},
		{"2026/09", "2026/09", false},
		{"2026/9", "", true},
		{"09/2026", "", true},
	}
	for _, tt := range tests {
		got, err := resolveMonth(tt.input, now)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveMonth(%q) = %q, %v; want %q, err=%v", tt.input, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestStoreName(t *testing.T) {
	tests := map[string]string{
		storage.WorkLogFile:  "logs",
		storage.OvertimeFile: "overtimes",
		storage.ActivityFile: "activity",
		"other.json":         "other.json",
	}
	for file, want := range tests {
		if got := storeName(file); got != want {
			t.Errorf("storeName(%q) = %q, want %q", file, got, want)
		}
	}
}

// execute runs the CLI against a fresh config and data directory.
func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func setupConfig(t *testing.T) (cfgPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	cfgPath = filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("data_dir: %s\neditor: cat\nlogging:\n  level: error\n", dataDir)
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfgPath, dataDir
}

func TestToggleStatusLogsStop(t *testing.T) {
	cfgPath, dataDir := setupConfig(t)
	today := timecalc.DateKey(time.Now())

	out, err := execute(t, cfgPath, "toggle")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if out != "Toggled. Next: Log break.\n" {
		t.Errorf("toggle output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dataDir, storage.WorkLogFile)); err != nil {
		t.Errorf("work log not written: %v", err)
	}

	out, err = execute(t, cfgPath, "status", "--date", "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Working time: ") {
		t.Errorf("status output = %q", out)
	}

	out, err = execute(t, cfgPath, "logs", "--date", today)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "-> running") {
		t.Errorf("logs output = %q", out)
	}

	out, err = execute(t, cfgPath, "stop")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if out != "Open interval closed.\n" {
		t.Errorf("stop output = %q", out)
	}

	_, err = execute(t, cfgPath, "stop")
	if !errors.Is(err, errNothingOpen) {
		t.Errorf("second stop err = %v, want %v", err, errNothingOpen)
	}
}

func TestOvertimesEmptyMonth(t *testing.T) {
	cfgPath, _ := setupConfig(t)
	out, err := execute(t, cfgPath, "overtimes", "--month", "")
	if err != nil {
		t.Fatalf("overtimes: %v", err)
	}
	if out != "No overtimes in current month.\n" {
		t.Errorf("overtimes output = %q", out)
	}
}

func TestCorruptStoreExitsWithHint(t *testing.T) {
	cfgPath, dataDir := setupConfig(t)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, storage.WorkLogFile), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, cfgPath, "logs", "--date", "")
	if err == nil {
		t.Fatal("expected an error for a corrupt work log")
	}
	if exitCode(err) != 2 {
		t.Errorf("exitCode = %d, want 2", exitCode(err))
	}
	if !strings.Contains(err.Error(), "wtl edit logs") {
		t.Errorf("error %q lacks the edit hint", err)
	}
}

type recordingLauncher struct{ paths []string }

func (r *recordingLauncher) Open(path string) error {
	r.paths = append(r.paths, path)
	return nil
}

func TestEditOpensStoreFile(t *testing.T) {
	cfgPath, dataDir := setupConfig(t)
	rec := &recordingLauncher{}
	orig := newLauncher
	newLauncher = func(string) editor.Launcher { return rec }
	defer func() { newLauncher = orig }()

	if _, err := execute(t, cfgPath, "edit", "overtimes"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	want := filepath.Join(dataDir, storage.OvertimeFile)
	if len(rec.paths) != 1 || rec.paths[0] != want {
		t.Errorf("edited %v, want [%s]", rec.paths, want)
	}

	if _, err := execute(t, cfgPath, "edit", "passwords"); err == nil {
		t.Error("expected an error for an unknown store")
	}
}

func TestImportLegacyFile(t *testing.T) {
	cfgPath, _ := setupConfig(t)
	legacy := filepath.Join(t.TempDir(), "legacy.txt")
	body := "2026/09/01 08:00:00 -> 12:00:00\n2026/09/01 13:00:00 -> 17:00:00\n"
	if err := os.WriteFile(legacy, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, cfgPath, "import", legacy)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out != "Imported 1 day(s).\n" {
		t.Errorf("import output = %q", out)
	}

	out, err = execute(t, cfgPath, "month", "--month", "2026/09")
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if out != "Working time in 2026/09: 8:00:00\n" {
		t.Errorf("month output = %q", out)
	}

	if _, err := execute(t, cfgPath, "import", legacy); err == nil {
		t.Error("expected re-import of an existing day to fail")
	}
}

func TestImportMissingFileIsUserError(t *testing.T) {
	cfgPath, _ := setupConfig(t)
	_, err := execute(t, cfgPath, "import", filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing import file")
	}
	if got := exitCode(err); got != 1 {
		t.Errorf("exitCode = %d, want 1", got)
	}
}

func TestUnwritableDataDirIsStorageError(t *testing.T) {
	cfgPath, dataDir := setupConfig(t)
	// A regular file where the data directory should be.
	if err := os.WriteFile(dataDir, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, cfgPath, "toggle")
	if err == nil {
		t.Fatal("expected toggle to fail")
	}
	if got := exitCode(err); got != 2 {
		t.Errorf("exitCode = %d (%v), want 2", got, err)
	}
}
