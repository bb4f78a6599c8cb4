// Package ui provides the graphical user interface for KDE Theme Backup.
// This file contains the BackupList component that displays the backups found
// in the backup root.
package ui

import (
	"fmt"
	"os"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/kde-theme-backup/catalog"
	"github.com/yllada/kde-theme-backup/common"
)

// BackupList represents the backup list.
// Rows are rebuilt from the names passed to SetBackups; nothing is cached
// between refreshes except the names currently shown.
type BackupList struct {
	catalog *catalog.Catalog
	listBox *gtk.ListBox
	names   []string

	// onActivate is called on double click or Enter.
	onActivate func(name string)
}

// NewBackupList creates a new backup list.
func NewBackupList(cat *catalog.Catalog) *BackupList {
	bl := &BackupList{
		catalog: cat,
		listBox: gtk.NewListBox(),
	}

	// List styling
	bl.listBox.AddCSSClass("boxed-list")
	bl.listBox.SetSelectionMode(gtk.SelectionSingle)

	bl.listBox.ConnectRowActivated(func(row *gtk.ListBoxRow) {
		idx := row.Index()
		if idx >= 0 && idx < len(bl.names) && bl.onActivate != nil {
			bl.onActivate(bl.names[idx])
		}
	})

	bl.showEmptyState()
	return bl
}

// GetWidget returns the list widget to be added to a container.
func (bl *BackupList) GetWidget() gtk.Widgetter {
	return bl.listBox
}

// SetBackups replaces the rows. The previous selection is kept if the
// backup is still present.
func (bl *BackupList) SetBackups(names []string) {
	previous := bl.Selected()

	// Clear current list
	for bl.listBox.FirstChild() != nil {
		bl.listBox.Remove(bl.listBox.FirstChild())
	}
	bl.names = append([]string(nil), names...)

	if len(bl.names) == 0 {
		bl.showEmptyState()
		return
	}

	for _, name := range bl.names {
		row := bl.addBackupRow(name)
		if name == previous {
			bl.listBox.SelectRow(row)
		}
	}
}

// Selected returns the selected backup name, or "" when nothing is selected.
func (bl *BackupList) Selected() string {
	row := bl.listBox.SelectedRow()
	if row == nil {
		return ""
	}
	idx := row.Index()
	if idx < 0 || idx >= len(bl.names) {
		return ""
	}
	return bl.names[idx]
}

// Names returns the backup names currently shown.
func (bl *BackupList) Names() []string {
	return append([]string(nil), bl.names...)
}

// SetSensitive enables or disables the list.
func (bl *BackupList) SetSensitive(sensitive bool) {
	bl.listBox.SetSensitive(sensitive)
}

// showEmptyState shows a hint when the backup root has no backups.
func (bl *BackupList) showEmptyState() {
	centerBox := gtk.NewBox(gtk.OrientationVertical, 12)
	centerBox.SetHAlign(gtk.AlignCenter)
	centerBox.SetVAlign(gtk.AlignCenter)
	centerBox.SetMarginTop(36)
	centerBox.SetMarginBottom(36)
	centerBox.SetMarginStart(24)
	centerBox.SetMarginEnd(24)

	icon := gtk.NewImage()
	icon.SetFromIconName("folder-symbolic")
	icon.SetPixelSize(64)
	icon.AddCSSClass("dim-label")
	centerBox.Append(icon)

	titleLabel := gtk.NewLabel("No backups yet")
	titleLabel.AddCSSClass("title-2")
	centerBox.Append(titleLabel)

	descLabel := gtk.NewLabel("Enter a name above and click Create Backup,\nor import an existing archive")
	descLabel.SetJustify(gtk.JustifyCenter)
	descLabel.AddCSSClass("dim-label")
	centerBox.Append(descLabel)

	emptyRow := gtk.NewListBoxRow()
	emptyRow.SetChild(centerBox)
	emptyRow.SetSelectable(false)
	emptyRow.SetActivatable(false)

	bl.listBox.Append(emptyRow)
}

// addBackupRow appends a row for name and returns it.
func (bl *BackupList) addBackupRow(name string) *gtk.ListBoxRow {
	row := gtk.NewListBoxRow()
	row.AddCSSClass("backup-row")

	mainBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	mainBox.SetMarginTop(8)
	mainBox.SetMarginBottom(8)
	mainBox.SetMarginStart(12)
	mainBox.SetMarginEnd(12)

	icon := gtk.NewImage()
	icon.SetFromIconName("preferences-desktop-theme-symbolic")
	icon.SetPixelSize(24)
	icon.AddCSSClass("backup-icon")
	mainBox.Append(icon)

	infoBox := gtk.NewBox(gtk.OrientationVertical, 2)
	infoBox.SetHExpand(true)
	infoBox.SetVAlign(gtk.AlignCenter)

	nameLabel := gtk.NewLabel(name)
	nameLabel.SetXAlign(0)
	nameLabel.AddCSSClass("backup-name")
	infoBox.Append(nameLabel)

	if info, err := os.Stat(bl.catalog.Path(name)); err == nil {
		subtitleLabel := gtk.NewLabel(fmt.Sprintf("Modified: %s", info.ModTime().Format("01/02/2006 15:04")))
		subtitleLabel.SetXAlign(0)
		subtitleLabel.AddCSSClass("dim-label")
		subtitleLabel.AddCSSClass("caption")
		infoBox.Append(subtitleLabel)
	}

	mainBox.Append(infoBox)

	// Badge when the archive sits next to the directory
	if common.FileExists(bl.catalog.ArchivePath(name)) {
		badge := gtk.NewLabel("Archive")
		badge.SetVAlign(gtk.AlignCenter)
		badge.AddCSSClass("archive-badge")
		badge.SetTooltipText(bl.catalog.ArchivePath(name))
		mainBox.Append(badge)
	}

	row.SetChild(mainBox)
	bl.listBox.Append(row)
	return row
}
