package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
)

const (
	// LockFileName is the lock file guarding the data directory.
	LockFileName = "wtl.lock"
	// PIDFileName records the PID of the process holding the lock.
	PIDFileName = "wtl.pid"
)

var (
	// ErrLocked is returned when another process owns the data directory.
	ErrLocked = errors.New("data directory is in use by another wtl process")
	// ErrNotRunning is returned when no live process owns the data directory.
	ErrNotRunning = errors.New("no running wtl process")
)

// Lock is an exclusive, non-blocking lock on a data directory. It makes one
// process the single writer of the stores.
type Lock struct {
	dir   string
	flock *flock.Flock
}

// AcquireLock takes the lock on dir and records the caller's PID.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &Error{Op: "creating directory", Path: dir, Err: err}
	}
	fl := flock.New(filepath.Join(dir, LockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, &Error{Op: "locking", Path: fl.Path(), Err: err}
	}
	if !ok {
		if pid, err := ReadPID(dir); err == nil {
			return nil, fmt.Errorf("%w (PID %d)", ErrLocked, pid)
		}
		return nil, ErrLocked
	}
	if err := os.WriteFile(pidPath(dir), []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		_ = fl.Unlock()
		return nil, &Error{Op: "writing", Path: pidPath(dir), Err: err}
	}
	return &Lock{dir: dir, flock: fl}, nil
}

// Release drops the lock and removes the PID file.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := os.Remove(pidPath(l.dir)); err != nil && !os.IsNotExist(err) {
		return &Error{Op: "removing", Path: pidPath(l.dir), Err: err}
	}
	err := l.flock.Unlock()
	l.flock = nil
	return err
}

// ReadPID returns the PID recorded in dir.
func ReadPID(dir string) (int, error) {
	data, err := os.ReadFile(pidPath(dir))
	if os.IsNotExist(err) {
		return 0, ErrNotRunning
	}
	if err != nil {
		return 0, &Error{Op: "reading", Path: pidPath(dir), Err: err}
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// RunningPID returns the PID of the live lock holder, or ErrNotRunning. The
// PID file alone is not trusted: a holder killed without cleanup leaves it
// behind and its PID may since belong to an unrelated process. Only a held
// lock proves an owner is alive; a free lock clears the stale PID file.
func RunningPID(dir string) (int, error) {
	pid, err := ReadPID(dir)
	if err != nil {
		return 0, err
	}
	if pid == os.Getpid() {
		return 0, ErrNotRunning
	}

	fl := flock.New(filepath.Join(dir, LockFileName))
	free, err := fl.TryLock()
	if err != nil {
		return 0, &Error{Op: "probing lock", Path: fl.Path(), Err: err}
	}
	if free {
		removeErr := os.Remove(pidPath(dir))
		if err := fl.Unlock(); err != nil {
			return 0, &Error{Op: "releasing lock probe", Path: fl.Path(), Err: err}
		}
		if removeErr != nil && !os.IsNotExist(removeErr) {
			return 0, &Error{Op: "removing stale PID file", Path: pidPath(dir), Err: removeErr}
		}
		return 0, ErrNotRunning
	}

	if !processAlive(pid) {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Signal delivers sig to the live lock holder.
func Signal(dir string, sig os.Signal) (int, error) {
	pid, err := RunningPID(dir)
	if err != nil {
		return 0, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("finding process %d: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return 0, fmt.Errorf("signalling process %d: %w", pid, err)
	}
	return pid, nil
}

func pidPath(dir string) string {
	return filepath.Join(dir, PIDFileName)
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds, so send signal 0 to check.
	return proc.Signal(syscall.Signal(0)) == nil
}
