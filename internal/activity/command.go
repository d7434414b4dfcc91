package activity

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// commandTimeout bounds every probe so a hung helper cannot stall a tick.
const commandTimeout = 500 * time.Millisecond

func runProbe(line string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "sh", "-c", line).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CommandForeground resolves the foreground process by running a shell
// command that prints its name, e.g. built on xdotool.
type CommandForeground struct {
	Line string
}

// Current runs the command. Empty output means no sample.
func (c CommandForeground) Current() (string, error) {
	out, err := runProbe(c.Line)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSample, err)
	}
	if out == "" {
		return "", ErrNoSample
	}
	return filepath.Base(out), nil
}

// IdleCommand is a Hook backed by a command printing the milliseconds since
// the last keyboard or mouse input (xprintidle and friends). Input counts as
// seen when the idle time is below Window.
type IdleCommand struct {
	Line   string
	Window time.Duration
	Logger zerolog.Logger
}

// PollAndReset runs the command. Failures read as "no input".
func (c IdleCommand) PollAndReset() bool {
	out, err := runProbe(c.Line)
	if err != nil {
		c.Logger.Debug().Err(err).Msg("Idle probe failed")
		return false
	}
	ms, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		c.Logger.Debug().Str("output", out).Msg("Idle probe printed no number")
		return false
	}
	return time.Duration(ms)*time.Millisecond < c.Window
}
