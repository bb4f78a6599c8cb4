// Package common provides shared constants, types, and utilities
// used across the KDE Theme Backup application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "org.kde.theme-backup"
	// AppName is the display name of the application.
	AppName = "KDE Theme Backup & Switcher"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "kde-theme-backup"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	HistoryFileName = "history.db"
	LogFileName     = "kde-theme-backup.log"
)

// External programs.
const (
	// KDEThemeCommand is the backup/restore tool driven by this front-end.
	KDEThemeCommand = "kde-theme"
	// TarCommand extracts imported archives.
	TarCommand = "tar"
	// ElevateCommand runs the uninstaller with root privileges.
	ElevateCommand = "pkexec"
	// UninstallScriptName is looked up next to the executable.
	UninstallScriptName = "uninstall-kde-theme.sh"
)

// Backup layout.
const (
	// DefaultBackupDirName is created in the user's home directory.
	DefaultBackupDirName = "kde-theme-backups"
	// ArchiveSuffix is appended to a backup name to get its archive file.
	ArchiveSuffix = ".tar.gz"
)

// Default timeouts and intervals.
const (
	// StartTimeout is how long a launched process may take to become active.
	StartTimeout = 5 * time.Second
)

// UI constants.
const (
	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 900
	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 540
	// DialogMargin is the standard margin for dialog content.
	DialogMargin = 24
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
