// Package editor opens the raw store files for manual correction.
package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Launcher opens a file for editing and returns when the editor exits.
type Launcher interface {
	Open(path string) error
}

// Command runs an external editor. Program may carry arguments, e.g.
// "code --wait".
type Command struct {
	Program string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewCommand returns a Command attached to the current terminal.
func NewCommand(program string) *Command {
	return &Command{Program: program, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Open runs the editor on path and waits for it to exit.
func (c *Command) Open(path string) error {
	args := strings.Fields(c.Program)
	if len(args) == 0 {
		return errors.New("no editor configured")
	}
	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running editor %q on %s: %w", c.Program, path, err)
	}
	return nil
}
