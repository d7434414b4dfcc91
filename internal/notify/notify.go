// Package notify delivers plain-text messages produced by the tracker. The
// tracker never builds UI objects; rendering is up to the Notifier.
package notify

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Notifier shows a message to the user.
type Notifier interface {
	Show(text string) error
}

// Console writes messages to a terminal, highlighted.
type Console struct {
	out   io.Writer
	style *color.Color
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, style: color.New(color.FgYellow, color.Bold)}
}

// Show prints text followed by a newline.
func (c *Console) Show(text string) error {
	_, err := c.style.Fprintln(c.out, text)
	return err
}

// Log writes messages as structured log events.
type Log struct {
	logger zerolog.Logger
}

// NewLog returns a Log notifier.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "notify").Logger()}
}

// Show logs text at info level.
func (l *Log) Show(text string) error {
	l.logger.Info().Str("message", text).Msg("Notification")
	return nil
}

// Multi fans a message out to several notifiers.
type Multi []Notifier

// Show delivers text to every notifier and joins their errors.
func (m Multi) Show(text string) error {
	var errs []error
	for i, n := range m {
		if err := n.Show(text); err != nil {
			errs = append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps messages in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Show records text.
func (r *Recorder) Show(text string) error {
	r.mu.Lock()
	r.messages = append(r.messages, text)
	r.mu.Unlock()
	return nil
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
