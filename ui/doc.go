// Package ui provides the graphical user interface for KDE Theme Backup.
//
// This package implements the GTK4-based user interface including:
//
//   - Main window with the backup name entry, backup list, actions and log
//   - System tray indicator with quick theme restores
//   - Confirmation and notice dialogs (libadwaita message dialogs)
//   - Preferences and history dialogs
//   - Desktop notifications over D-Bus
//
// # Architecture
//
// The window holds no backup logic. It implements the Prompter and View
// interfaces of package actions and forwards every button to the
// actions.Controller, which owns the command runner.
//
//   - Application: GTK application lifecycle and wiring
//   - MainWindow: Primary window, Prompter and View
//   - BackupList: Backup rows
//   - TrayIndicator: System tray integration
//
// # Thread Safety
//
// GTK operations must execute on the main thread. Command output arrives
// on reader goroutines; the controller's runner is given a dispatcher that
// wraps glib.IdleAdd, so every View call already runs on the main thread.
// Tray menu clicks arrive on systray goroutines and are scheduled the same
// way:
//
//	go func() {
//	    for range item.ClickedCh {
//	        glib.IdleAdd(func() {
//	            _, _ = app.controller.Refresh()
//	        })
//	    }
//	}()
//
// # File Organization
//
//   - app.go: Application lifecycle and controller wiring
//   - main_window.go: Main window layout, menu, dialogs
//   - backup_list.go: Backup list rows
//   - history_dialog.go: Operation history
//   - tray.go: System tray indicator
//   - icons.go: Icon generation for tray
//   - styles.go: CSS styling
//   - notifications.go: Desktop notification integration
//   - preferences.go: Settings dialog
package ui
