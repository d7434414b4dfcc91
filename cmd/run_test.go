package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Tiliavir/work-time-logger/internal/metrics"
	"github.com/Tiliavir/work-time-logger/internal/model"
	"github.com/Tiliavir/work-time-logger/internal/storage"
	"github.com/Tiliavir/work-time-logger/internal/timecalc"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func readDay(t *testing.T, dataDir, date string) model.DayLog {
	t.Helper()
	var log model.WorkLog
	if _, err := storage.ReadJSON(filepath.Join(dataDir, storage.WorkLogFile), &log); err != nil {
		t.Fatalf("reading work log: %v", err)
	}
	return log[date]
}

func TestRunLoop(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	t.Setenv("LISTEN_PID", "")
	t.Setenv("LISTEN_FDS", "")

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfgPath := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`data_dir: %s
logging:
  level: error
schedule:
  overtime_interval: 1s
activity:
  enabled: false
`, dataDir)
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	ready := make(chan struct{})
	onRunReady = func() { close(ready) }
	defer func() { onRunReady = func() {} }()

	ticksBefore := testutil.ToFloat64(metrics.TicksTotal.WithLabelValues("overtime"))

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := execute(t, cfgPath, "run")
		done <- result{out, err}
	}()

	select {
	case <-ready:
	case res := <-done:
		t.Fatalf("run exited early: %v\n%s", res.err, res.out)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not become ready")
	}
	today := timecalc.DateKey(time.Now())

	pid, err := storage.ReadPID(dataDir)
	if err != nil || pid != os.Getpid() {
		t.Fatalf("PID file = %d, %v; want %d", pid, err, os.Getpid())
	}
	if day := readDay(t, dataDir, today); len(day) != 1 || !day.HasOpen() {
		t.Fatalf("after start: %+v, want one open interval", day)
	}

	// SIGUSR1 toggles: first a break, then work again.
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "break to be logged", func() bool {
		day := readDay(t, dataDir, today)
		return len(day) == 1 && !day.HasOpen()
	})
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "work to be logged again", func() bool {
		day := readDay(t, dataDir, today)
		return len(day) == 2 && day.HasOpen()
	})

	waitFor(t, "an overtime tick", func() bool {
		return testutil.ToFloat64(metrics.TicksTotal.WithLabelValues("overtime")) > ticksBefore
	})

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	var res result
	select {
	case res = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("run did not shut down")
	}
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}

	for _, want := range []string{"Tracking " + today, "Toggled. Next: Log work.", "Toggled. Next: Log break."} {
		if !strings.Contains(res.out, want) {
			t.Errorf("output %q lacks %q", res.out, want)
		}
	}

	// Shutdown closed the interval and released the directory.
	if day := readDay(t, dataDir, today); len(day) != 2 || day.HasOpen() {
		t.Errorf("after shutdown: %+v, want two closed intervals", day)
	}
	if _, err := storage.ReadPID(dataDir); err != storage.ErrNotRunning {
		t.Errorf("PID file left behind: %v", err)
	}
}
