// Package common provides shared constants, types, utilities, and interfaces
// used throughout the KDE Theme Backup application.
//
// This package holds the cross-cutting concerns:
//
//   - Constants: external command names, file names, timeouts and UI dimensions
//   - Errors: sentinel errors checked with errors.Is across packages
//   - Interfaces: abstractions for notifications and logging
//   - Logger: leveled logging to stdout and a rotating log file
//   - Utils: config/data directory helpers and PATH lookups
//
// # Usage
//
//	common.LogInfo("Creating backup %s", name)
//
//	if errors.Is(err, common.ErrBusy) {
//	    // Another command is still running
//	}
package common
