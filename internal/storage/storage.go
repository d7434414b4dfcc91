package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File names of the three independent stores inside the data directory.
const (
	WorkLogFile  = "log.json"
	OvertimeFile = "overtimes.json"
	ActivityFile = "activity.json"
)

// CorruptError reports a store file that exists but cannot be parsed. The file
// is left untouched so the user can repair it by hand.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt JSON in %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Error reports a failed read or write of a file in the data directory.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage error %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err is, or wraps, a CorruptError.
func IsCorrupt(err error) bool {
	var ce *CorruptError
	return errors.As(err, &ce)
}

// ReadJSON decodes the file at path into v. A missing or empty file is not an
// error; found reports whether any content was decoded.
func ReadJSON(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Op: "reading", Path: path, Err: err}
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &CorruptError{Path: path, Err: err}
	}
	return true, nil
}

// WriteJSON atomically writes v to path.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return &Error{Op: "creating directory", Path: filepath.Dir(path), Err: err}
	}

	data, err := json.MarshalIndent(v, "", "   ")
	if err != nil {
		return &Error{Op: "marshalling", Path: path, Err: err}
	}
	data = append(data, '\n')

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return &Error{Op: "writing", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Op: "renaming", Path: tmpPath, Err: err}
	}
	return nil
}
