// Package ui provides the graphical user interface for KDE Theme Backup.
// This file contains the HistoryDialog component listing past operations.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/kde-theme-backup/history"
)

// historyLimit is the number of operations shown.
const historyLimit = 200

// HistoryDialog shows the operation history, newest first.
type HistoryDialog struct {
	window     *gtk.Window
	mainWindow *MainWindow
	listBox    *gtk.ListBox
}

// NewHistoryDialog creates a new history dialog.
func NewHistoryDialog(mainWindow *MainWindow) *HistoryDialog {
	hd := &HistoryDialog{
		mainWindow: mainWindow,
	}

	hd.build()
	return hd
}

// build constructs the dialog UI.
func (hd *HistoryDialog) build() {
	hd.window = gtk.NewWindow()
	hd.window.SetTitle("History")
	hd.window.SetTransientFor(&hd.mainWindow.window.Window)
	hd.window.SetModal(true)
	hd.window.SetDefaultSize(620, 480)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	hd.listBox = gtk.NewListBox()
	hd.listBox.AddCSSClass("boxed-list")
	hd.listBox.SetSelectionMode(gtk.SelectionNone)
	hd.listBox.SetMarginTop(16)
	hd.listBox.SetMarginBottom(16)
	hd.listBox.SetMarginStart(16)
	hd.listBox.SetMarginEnd(16)
	scrolled.SetChild(hd.listBox)
	rootBox.Append(scrolled)

	hd.load()

	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(8)
	buttonBar.SetMarginBottom(16)
	buttonBar.SetMarginEnd(16)

	closeBtn := gtk.NewButtonWithLabel("Close")
	closeBtn.ConnectClicked(func() {
		hd.window.Close()
	})
	buttonBar.Append(closeBtn)
	rootBox.Append(buttonBar)

	hd.window.SetChild(rootBox)
}

// load fills the list from the history store.
func (hd *HistoryDialog) load() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := hd.mainWindow.app.controller.History(ctx, historyLimit)
	if err != nil {
		hd.addMessage("Could not read history: " + err.Error())
		return
	}
	if len(entries) == 0 {
		hd.addMessage("No operations recorded yet.")
		return
	}

	for _, entry := range entries {
		hd.addEntryRow(entry)
	}
}

// addMessage adds a non-selectable text row.
func (hd *HistoryDialog) addMessage(text string) {
	label := gtk.NewLabel(text)
	label.AddCSSClass("dim-label")
	label.SetMarginTop(24)
	label.SetMarginBottom(24)

	row := gtk.NewListBoxRow()
	row.SetChild(label)
	row.SetActivatable(false)
	hd.listBox.Append(row)
}

// addEntryRow adds one operation.
func (hd *HistoryDialog) addEntryRow(entry history.Entry) {
	mainBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	mainBox.SetMarginTop(8)
	mainBox.SetMarginBottom(8)
	mainBox.SetMarginStart(12)
	mainBox.SetMarginEnd(12)

	statusIcon := gtk.NewImage()
	if entry.Succeeded() {
		statusIcon.SetFromIconName("emblem-ok-symbolic")
		statusIcon.AddCSSClass("history-ok")
	} else {
		statusIcon.SetFromIconName("dialog-error-symbolic")
		statusIcon.AddCSSClass("history-failed")
	}
	mainBox.Append(statusIcon)

	infoBox := gtk.NewBox(gtk.OrientationVertical, 2)
	infoBox.SetHExpand(true)

	title := entry.Action
	if entry.Backup != "" {
		title = fmt.Sprintf("%s  %s", entry.Action, entry.Backup)
	}
	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	titleLabel.AddCSSClass("heading")
	infoBox.Append(titleLabel)

	details := []string{entry.Finished.Local().Format("01/02/2006 15:04:05")}
	if !entry.Succeeded() {
		details = append(details, fmt.Sprintf("exit status %d", entry.ExitCode))
	}
	details = append(details, entry.Duration().Round(time.Millisecond).String())
	detailsLabel := gtk.NewLabel(strings.Join(details, " · "))
	detailsLabel.SetXAlign(0)
	detailsLabel.AddCSSClass("dim-label")
	detailsLabel.AddCSSClass("caption")
	infoBox.Append(detailsLabel)

	if len(entry.Args) > 0 {
		infoBox.SetTooltipText(strings.Join(entry.Args, " "))
	}
	if entry.ArchiveDigest != "" {
		digestLabel := gtk.NewLabel("blake2b " + entry.ArchiveDigest[:16] + "…")
		digestLabel.SetXAlign(0)
		digestLabel.AddCSSClass("dim-label")
		digestLabel.AddCSSClass("caption")
		digestLabel.SetTooltipText(entry.ArchiveDigest)
		infoBox.Append(digestLabel)
	}

	mainBox.Append(infoBox)

	row := gtk.NewListBoxRow()
	row.SetChild(mainBox)
	row.SetActivatable(false)
	hd.listBox.Append(row)
}

// Show displays the history dialog.
func (hd *HistoryDialog) Show() {
	hd.window.Show()
}
