package systemd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/work-time-logger/internal/systemd"
)

func TestOutsideSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	t.Setenv("LISTEN_PID", "")
	t.Setenv("LISTEN_FDS", "")

	sent, err := systemd.NotifyReady()
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = systemd.NotifyStopping()
	require.NoError(t, err)
	assert.False(t, sent)

	ln, err := systemd.MetricsListener()
	require.NoError(t, err)
	assert.Nil(t, ln)
}
