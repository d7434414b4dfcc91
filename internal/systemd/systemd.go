// Package systemd integrates "wtl run" with a systemd user service: readiness
// notification and socket activation of the metrics endpoint.
package systemd

import (
	"fmt"
	"net"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/coreos/go-systemd/v22/daemon"
)

// MetricsSocketName is the FileDescriptorName= of the metrics socket unit.
const MetricsSocketName = "metrics"

// MetricsListener returns the socket-activated metrics listener, or nil when
// not started by systemd.
func MetricsListener() (net.Listener, error) {
	if len(activation.Files(false)) == 0 {
		return nil, nil
	}
	named, err := activation.ListenersWithNames()
	if err != nil {
		return nil, fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if lns, ok := named[MetricsSocketName]; ok && len(lns) > 0 {
		return lns[0], nil
	}
	return nil, nil
}

// NotifyReady tells systemd the service finished starting. It reports whether
// a notification socket was present.
func NotifyReady() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyReady)
}

// NotifyStopping tells systemd the service is shutting down.
func NotifyStopping() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyStopping)
}
