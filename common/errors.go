// Package common provides shared constants, types, and utilities
// used across the KDE Theme Backup application.
package common

import "errors"

// Sentinel errors shared by the catalog, runner and actions packages.
// These can be checked with errors.Is().
var (
	// Environment errors.
	ErrCommandNotFound  = errors.New("required command not found in PATH")
	ErrScriptNotFound   = errors.New("uninstall script not found")
	ErrPermissionDenied = errors.New("permission denied")

	// Runner errors.
	ErrBusy         = errors.New("a task is already running")
	ErrNoCommand    = errors.New("no command given")
	ErrLaunchFailed = errors.New("failed to start command")
	ErrTimeout      = errors.New("operation timed out")
	ErrCancelled    = errors.New("operation cancelled")

	// Backup errors.
	ErrEmptyName   = errors.New("backup name is empty")
	ErrInvalidName = errors.New("backup name cannot contain spaces or / \\ :")
	ErrNoSelection = errors.New("no backup selected")
	ErrNotArchive  = errors.New("not a .tar.gz archive")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
