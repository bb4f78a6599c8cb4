// Package ui provides the graphical user interface for KDE Theme Backup.
// This file contains the system tray indicator functionality.
package ui

import (
	"fmt"
	"sync"

	"fyne.io/systray"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/yllada/kde-theme-backup/common"
)

// Pre-generated icons for performance.
var (
	iconIdle = GenerateIdleIcon()
	iconBusy = GenerateBusyIcon()
)

// TrayIndicator manages the system tray icon and menu.
// It offers quick theme restores without opening the main window.
type TrayIndicator struct {
	app         *Application
	statusItem  *systray.MenuItem
	restoreMenu *systray.MenuItem
	emptyItem   *systray.MenuItem
	refreshItem *systray.MenuItem

	mu           sync.Mutex
	ready        bool
	restoreItems map[string]*systray.MenuItem
	pending      []string
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{
		app:          app,
		restoreItems: make(map[string]*systray.MenuItem),
	}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the systray is ready.
func (t *TrayIndicator) onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName + " - Idle")

	// Status item, updated by SetBusy
	t.statusItem = systray.AddMenuItem("○  Idle", "Current task")
	t.statusItem.Disable()

	systray.AddSeparator()

	// Restore submenu, one entry per backup
	t.restoreMenu = systray.AddMenuItem("Restore Theme", "Restore the theme of a backup")
	t.emptyItem = t.restoreMenu.AddSubMenuItem("No backups", "")
	t.emptyItem.Disable()

	t.refreshItem = systray.AddMenuItem("Refresh List", "Rescan the backup folder")
	go func() {
		for range t.refreshItem.ClickedCh {
			glib.IdleAdd(func() {
				if t.app.controller != nil {
					_, _ = t.app.controller.Refresh()
				}
			})
		}
	}()

	systray.AddSeparator()

	showItem := systray.AddMenuItem("Open "+common.AppName, "Show main window")
	go func() {
		for range showItem.ClickedCh {
			glib.IdleAdd(t.app.showWindow)
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	go func() {
		for range quitItem.ClickedCh {
			glib.IdleAdd(t.app.Quit)
		}
	}()

	t.mu.Lock()
	t.ready = true
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	if pending != nil {
		t.SetBackups(pending)
	}
}

// onExit is called when the systray is about to exit.
func (t *TrayIndicator) onExit() {
	common.LogInfo("Tray indicator cleanup completed")
}

// SetBackups updates the restore submenu. Items for backups that are gone
// are hidden; systray menus cannot shrink.
func (t *TrayIndicator) SetBackups(names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ready {
		t.pending = append([]string{}, names...)
		return
	}

	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true

		if item, exists := t.restoreItems[name]; exists {
			item.Show()
			continue
		}

		item := t.restoreMenu.AddSubMenuItem(name, fmt.Sprintf("Restore theme '%s'", name))
		t.restoreItems[name] = item

		go func(backup string, menuItem *systray.MenuItem) {
			for range menuItem.ClickedCh {
				t.restore(backup)
			}
		}(name, item)
	}

	for name, item := range t.restoreItems {
		if !present[name] {
			item.Hide()
		}
	}

	if len(names) == 0 {
		t.emptyItem.Show()
	} else {
		t.emptyItem.Hide()
	}
}

// restore starts a theme restore on the GTK main thread.
func (t *TrayIndicator) restore(name string) {
	glib.IdleAdd(func() {
		if t.app.controller == nil {
			return
		}
		if err := t.app.controller.RestoreTheme(name); err != nil {
			common.LogWarn("Tray: restore of %s not started: %v", name, err)
		}
	})
}

// SetBusy updates the icon and status item.
func (t *TrayIndicator) SetBusy(busy bool, message string) {
	t.mu.Lock()
	ready := t.ready
	t.mu.Unlock()
	if !ready {
		return
	}

	if busy {
		systray.SetIcon(iconBusy)
		systray.SetTooltip(fmt.Sprintf("%s - %s", common.AppName, message))
		t.statusItem.SetTitle("⟳  " + message)
		t.restoreMenu.Disable()
		t.refreshItem.Disable()
		return
	}

	systray.SetIcon(iconIdle)
	systray.SetTooltip(common.AppName + " - Idle")
	t.statusItem.SetTitle("○  Idle")
	t.restoreMenu.Enable()
	t.refreshItem.Enable()
}

// Quit stops the tray loop.
func (t *TrayIndicator) Quit() {
	systray.Quit()
}
