package activity_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/work-time-logger/internal/activity"
)

func TestCommandForeground(t *testing.T) {
	name, err := activity.CommandForeground{Line: "echo /usr/bin/firefox"}.Current()
	require.NoError(t, err)
	assert.Equal(t, "firefox", name)

	_, err = activity.CommandForeground{Line: "true"}.Current()
	assert.ErrorIs(t, err, activity.ErrNoSample)

	_, err = activity.CommandForeground{Line: "exit 3"}.Current()
	assert.ErrorIs(t, err, activity.ErrNoSample)
}

func TestIdleCommand(t *testing.T) {
	hook := activity.IdleCommand{Line: "echo 200", Window: time.Second, Logger: zerolog.Nop()}
	assert.True(t, hook.PollAndReset())

	hook.Line = "echo 5000"
	assert.False(t, hook.PollAndReset())

	hook.Line = "echo idle"
	assert.False(t, hook.PollAndReset())

	hook.Line = "exit 1"
	assert.False(t, hook.PollAndReset())
}
