// Package common provides shared constants, types, and utilities
// used across the KDE Theme Backup application.
package common

// Notifier delivers desktop notifications about finished commands.
// Implementations must be safe to call from the UI thread and must not
// block on an unavailable notification daemon.
type Notifier interface {
	Notify(title, message string) error
	NotifyWithIcon(title, message, icon string) error
}
