// Package ui provides the graphical user interface for KDE Theme Backup.
// This file contains the CSS styles and theming.
package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// CSS styles for the main window. Colors are theme-aware so the same sheet
// works in light and dark mode.
const appCSS = `
/* Backup rows */
.backup-row {
    border-radius: 8px;
    margin: 2px 6px;
}

.backup-name {
    font-weight: 600;
}

.backup-icon {
    color: #3daee9;
    -gtk-icon-style: symbolic;
}

/* Archive badge */
.archive-badge {
    background-color: alpha(#3daee9, 0.2);
    color: #3daee9;
    font-size: 10px;
    font-weight: 600;
    padding: 2px 8px;
    border-radius: 10px;
}

/* Action column */
.action-button {
    min-height: 34px;
}

/* Delete button - red */
button.destructive-action {
    background-color: #e01b24;
    color: white;
}

button.destructive-action:hover {
    background-color: #c01c28;
}

/* Output log */
.log-view {
    font-family: monospace;
    font-size: 12px;
}

.log-view text {
    background-color: alpha(currentColor, 0.04);
}

.section-label {
    font-weight: 600;
    opacity: 0.8;
}

/* Status Bar */
.status-bar {
    border-top: 1px solid alpha(currentColor, 0.15);
    padding: 6px 12px;
    opacity: 0.8;
}

/* History dialog */
.history-failed {
    color: #e01b24;
}

.history-ok {
    color: #2ec27e;
}

/* Entry fields */
entry {
    border-radius: 6px;
    min-height: 34px;
}
`

// LoadStyles loads the custom CSS styles for the application.
// Should be called during application startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}
