// Package ui provides the graphical user interface for KDE Theme Backup.
// This file contains the PreferencesDialog component for application settings.
package ui

import (
	"strings"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/kde-theme-backup/common"
	"github.com/yllada/kde-theme-backup/config"
)

// PreferencesDialog represents the preferences dialog.
type PreferencesDialog struct {
	window        *gtk.Window
	mainWindow    *MainWindow
	config        *config.Config
	backupDir     *gtk.Entry
	command       *gtk.Entry
	notifySwitch  *gtk.Switch
	traySwitch    *gtk.Switch
	themeDropDown *gtk.DropDown
	themeIDs      []string
}

// NewPreferencesDialog creates a new preferences dialog.
func NewPreferencesDialog(mainWindow *MainWindow) *PreferencesDialog {
	pd := &PreferencesDialog{
		mainWindow: mainWindow,
		config:     mainWindow.app.config,
	}

	pd.build()
	return pd
}

// build constructs the dialog UI.
func (pd *PreferencesDialog) build() {
	pd.window = gtk.NewWindow()
	pd.window.SetTitle("Settings")
	pd.window.SetTransientFor(&pd.mainWindow.window.Window)
	pd.window.SetModal(true)
	pd.window.SetDefaultSize(520, 560)
	pd.window.SetResizable(false)

	pd.backupDir = newSettingEntry(pd.config.BackupDir)
	pd.command = newSettingEntry(pd.config.KDEThemeCommand)

	pd.notifySwitch = gtk.NewSwitch()
	pd.notifySwitch.SetActive(pd.config.ShowNotifications)
	pd.notifySwitch.SetVAlign(gtk.AlignCenter)

	pd.traySwitch = gtk.NewSwitch()
	pd.traySwitch.SetActive(pd.config.ShowTray)
	pd.traySwitch.SetVAlign(gtk.AlignCenter)

	pd.themeIDs = []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark}
	pd.themeDropDown = gtk.NewDropDown(gtk.NewStringList([]string{"System Default", "Light", "Dark"}), nil)
	pd.themeDropDown.SetSelected(pd.findThemeIndex(pd.config.Theme))
	pd.themeDropDown.SetVAlign(gtk.AlignCenter)
	pd.themeDropDown.AddCSSClass("flat")

	content := gtk.NewBox(gtk.OrientationVertical, 20)
	content.SetMarginTop(common.DialogMargin)
	content.SetMarginBottom(16)
	content.SetMarginStart(common.DialogMargin)
	content.SetMarginEnd(common.DialogMargin)

	content.Append(settingsSection("Backups", "folder-symbolic",
		settingRow("Backup Folder", "Where backups and archives are stored. Applies after restart", pd.backupDir),
		settingRow("kde-theme Command", "Name or path of the backup tool. Applies after restart", pd.command),
	))
	content.Append(settingsSection("Desktop", "preferences-system-notifications-symbolic",
		settingRow("Notifications", "Notify when a command finishes while the window is in the background", pd.notifySwitch),
		settingRow("System Tray", "Show a tray icon with quick restores. Applies after restart", pd.traySwitch),
	))
	content.Append(settingsSection("Appearance", "preferences-desktop-theme-symbolic",
		settingRow("Theme", "Light, dark or follow the desktop", pd.themeDropDown),
	))

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetChild(content)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)
	rootBox.Append(scrolled)
	rootBox.Append(pd.buttonBar())
	pd.window.SetChild(rootBox)
}

// buttonBar returns the Cancel/Save row.
func (pd *PreferencesDialog) buttonBar() *gtk.Box {
	bar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	bar.SetHAlign(gtk.AlignEnd)
	bar.SetMarginTop(16)
	bar.SetMarginBottom(20)
	bar.SetMarginStart(common.DialogMargin)
	bar.SetMarginEnd(common.DialogMargin)

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(pd.window.Close)
	bar.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel("Save")
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.ConnectClicked(func() {
		if pd.savePreferences() {
			pd.window.Close()
		}
	})
	bar.Append(saveBtn)

	return bar
}

func newSettingEntry(text string) *gtk.Entry {
	entry := gtk.NewEntry()
	entry.SetText(text)
	entry.SetWidthChars(22)
	entry.SetVAlign(gtk.AlignCenter)
	return entry
}

// settingsSection returns a heading with its rows in a card, separated by
// lines.
func settingsSection(title, iconName string, rows ...*gtk.Box) *gtk.Box {
	heading := gtk.NewBox(gtk.OrientationHorizontal, 8)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	heading.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	heading.Append(label)

	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	for i, row := range rows {
		if i > 0 {
			sep := gtk.NewSeparator(gtk.OrientationHorizontal)
			sep.SetMarginStart(16)
			sep.SetMarginEnd(16)
			card.Append(sep)
		}
		card.Append(row)
	}

	section := gtk.NewBox(gtk.OrientationVertical, 8)
	section.Append(heading)
	section.Append(card)
	return section
}

// settingRow lays out a title and description on the left, widget on the right.
func settingRow(title, description string, widget gtk.Widgetter) *gtk.Box {
	text := gtk.NewBox(gtk.OrientationVertical, 4)
	text.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	text.Append(titleLabel)

	descLabel := gtk.NewLabel(description)
	descLabel.SetXAlign(0)
	descLabel.AddCSSClass("dim-label")
	descLabel.AddCSSClass("caption")
	descLabel.SetWrap(true)
	descLabel.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	text.Append(descLabel)

	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(14)
	row.SetMarginBottom(14)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)
	row.Append(text)
	row.Append(widget)
	return row
}

// findThemeIndex returns the index of a theme ID, or 0 if not found.
func (pd *PreferencesDialog) findThemeIndex(themeID string) uint {
	for i, id := range pd.themeIDs {
		if id == themeID {
			return uint(i)
		}
	}
	return 0
}

// savePreferences writes the settings to the config file and applies the
// ones that take effect immediately. It reports whether saving succeeded.
func (pd *PreferencesDialog) savePreferences() bool {
	backupDir := strings.TrimSpace(pd.backupDir.Text())
	command := strings.TrimSpace(pd.command.Text())
	if backupDir == "" || command == "" {
		pd.mainWindow.Warn("Invalid settings", "The backup folder and the kde-theme command cannot be empty.")
		return false
	}

	pd.config.BackupDir = backupDir
	pd.config.KDEThemeCommand = command
	pd.config.ShowNotifications = pd.notifySwitch.Active()
	pd.config.ShowTray = pd.traySwitch.Active()

	themeIdx := pd.themeDropDown.Selected()
	if int(themeIdx) < len(pd.themeIDs) {
		pd.config.Theme = pd.themeIDs[themeIdx]
	}

	if err := pd.config.Save(); err != nil {
		pd.mainWindow.Error("Error", "Could not save preferences: "+err.Error())
		return false
	}

	pd.mainWindow.app.ApplyTheme(pd.config.Theme)
	pd.mainWindow.app.notifier.SetEnabled(pd.config.ShowNotifications)
	pd.mainWindow.SetStatus("Settings saved")
	common.LogInfo("Preferences saved to %s", pd.config.Path())
	return true
}

// Show displays the preferences dialog.
func (pd *PreferencesDialog) Show() {
	pd.window.Show()
}
