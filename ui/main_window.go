package ui

import (
	"fmt"
	"os"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/kde-theme-backup/actions"
	"github.com/yllada/kde-theme-backup/common"
)

// Dialog response IDs.
const (
	responseYes = "yes"
	responseNo  = "no"
	responseOK  = "ok"
)

// MainWindow represents the main application window.
// It is the Prompter and View of the application's actions.Controller.
type MainWindow struct {
	app         *Application
	window      *gtk.ApplicationWindow
	headerBar   *gtk.HeaderBar
	nameEntry   *gtk.Entry
	backupList  *BackupList
	logView     *gtk.TextView
	logEnd      *gtk.TextMark
	progress    *gtk.ProgressBar
	statusBar   *gtk.Box
	statusLabel *gtk.Label

	// controls are disabled while a command runs.
	controls []*gtk.Button
	busy     bool

	// Quit waits for open notices to be acknowledged.
	openNotices int
	quitPending bool
}

var (
	_ actions.Prompter = (*MainWindow)(nil)
	_ actions.View     = (*MainWindow)(nil)
)

// NewMainWindow creates a new main window.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{
		app: app,
	}

	mw.window = gtk.NewApplicationWindow(&app.app.Application)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(common.DefaultWindowWidth, common.DefaultWindowHeight)
	mw.window.SetIconName(common.ConfigDirName)

	// With a tray icon, closing the window keeps the app running in the tray
	mw.window.SetHideOnClose(app.config.ShowTray)

	mw.createLayout()

	return mw
}

// createLayout creates the window layout.
func (mw *MainWindow) createLayout() {
	mw.headerBar = gtk.NewHeaderBar()

	importButton := gtk.NewButton()
	importButton.SetIconName("document-open-symbolic")
	importButton.SetTooltipText("Import backup archive")
	importButton.ConnectClicked(mw.onImport)
	mw.headerBar.PackStart(importButton)
	mw.controls = append(mw.controls, importButton)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetTooltipText("Menu")
	menuButton.SetMenuModel(mw.createMenu())
	mw.headerBar.PackEnd(menuButton)

	mw.window.SetTitlebar(mw.headerBar)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(12)
	mainBox.SetMarginStart(12)
	mainBox.SetMarginEnd(12)

	mainBox.Append(mw.createNameRow())
	mainBox.Append(mw.createBackupArea())
	mainBox.Append(mw.createLogArea())

	mw.createStatusBar()
	mainBox.Append(mw.statusBar)

	mw.window.SetChild(mainBox)
}

// createNameRow creates the "New backup name" row.
func (mw *MainWindow) createNameRow() *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 8)

	label := gtk.NewLabel("New backup name:")
	row.Append(label)

	mw.nameEntry = gtk.NewEntry()
	mw.nameEntry.SetPlaceholderText("Backup name (e.g. macosfull, win11-dark, default)")
	mw.nameEntry.SetHExpand(true)
	mw.nameEntry.ConnectActivate(mw.onCreateBackup)
	row.Append(mw.nameEntry)

	createBtn := gtk.NewButtonWithLabel("Create Backup")
	createBtn.AddCSSClass("suggested-action")
	createBtn.ConnectClicked(mw.onCreateBackup)
	row.Append(createBtn)
	mw.controls = append(mw.controls, createBtn)

	return row
}

// createBackupArea creates the backup list and the action buttons beside it.
func (mw *MainWindow) createBackupArea() *gtk.Box {
	area := gtk.NewBox(gtk.OrientationHorizontal, 12)
	area.SetVExpand(true)

	mw.backupList = NewBackupList(mw.app.catalog)
	mw.backupList.onActivate = func(name string) {
		mw.nameEntry.SetText(name)
	}

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetHExpand(true)
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetChild(mw.backupList.GetWidget())
	area.Append(scrolled)

	buttons := gtk.NewBox(gtk.OrientationVertical, 6)
	buttons.SetVAlign(gtk.AlignStart)

	add := func(label string, handler func(), classes ...string) {
		btn := gtk.NewButtonWithLabel(label)
		btn.AddCSSClass("action-button")
		for _, class := range classes {
			btn.AddCSSClass(class)
		}
		btn.ConnectClicked(handler)
		buttons.Append(btn)
		mw.controls = append(mw.controls, btn)
	}

	add("Restore Theme Only", func() { _ = mw.app.controller.RestoreTheme(mw.backupList.Selected()) })
	add("Restore Layout Only", func() { _ = mw.app.controller.RestoreLayout(mw.backupList.Selected()) })
	add("Restore Theme + Layout", func() { _ = mw.app.controller.RestoreAll(mw.backupList.Selected()) })
	add("Delete Backup", func() { _ = mw.app.controller.Delete(mw.backupList.Selected()) }, "destructive-action")
	add("Refresh List", func() { _, _ = mw.app.controller.Refresh() })
	add("Import Backup Archive…", mw.onImport)
	add("Uninstall App…", func() { _ = mw.app.controller.Uninstall() })

	area.Append(buttons)
	return area
}

// createLogArea creates the read-only output log.
func (mw *MainWindow) createLogArea() *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 4)

	label := gtk.NewLabel("Output / Log:")
	label.SetXAlign(0)
	label.AddCSSClass("section-label")
	box.Append(label)

	mw.logView = gtk.NewTextView()
	mw.logView.SetEditable(false)
	mw.logView.SetCursorVisible(false)
	mw.logView.SetMonospace(true)
	mw.logView.SetWrapMode(gtk.WrapWordChar)
	mw.logView.AddCSSClass("log-view")

	buffer := mw.logView.Buffer()
	// Right gravity keeps the mark at the end as text is appended.
	mw.logEnd = buffer.CreateMark("log-end", buffer.EndIter(), false)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetMinContentHeight(160)
	scrolled.SetChild(mw.logView)
	box.Append(scrolled)

	mw.progress = gtk.NewProgressBar()
	mw.progress.SetVisible(false)
	box.Append(mw.progress)

	return box
}

// createMenu creates the application menu.
func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()

	backupSection := gio.NewMenu()
	backupSection.Append("Import Backup Archive…", "app.import")
	backupSection.Append("Refresh List", "app.refresh")
	backupSection.Append("History", "app.history")
	menu.AppendSection("", &backupSection.MenuModel)

	settingsSection := gio.NewMenu()
	settingsSection.Append("Preferences", "app.preferences")
	menu.AppendSection("", &settingsSection.MenuModel)

	appSection := gio.NewMenu()
	appSection.Append("About", "app.about")
	appSection.Append("Quit", "app.quit")
	menu.AppendSection("", &appSection.MenuModel)

	mw.setupActions()

	return menu
}

// setupActions configures menu actions.
func (mw *MainWindow) setupActions() {
	addAction := func(name string, accels []string, handler func()) {
		action := gio.NewSimpleAction(name, nil)
		action.ConnectActivate(func(_ *glib.Variant) {
			handler()
		})
		mw.app.app.AddAction(action)
		if len(accels) > 0 {
			mw.app.app.SetAccelsForAction("app."+name, accels)
		}
	}

	addAction("preferences", []string{"<Control>comma"}, mw.onPreferences)
	addAction("about", nil, mw.onAbout)
	addAction("quit", []string{"<Control>q"}, mw.app.Quit)
	addAction("import", []string{"<Control>i"}, mw.onImport)
	addAction("history", []string{"<Control>h"}, mw.onHistory)
	addAction("refresh", []string{"F5"}, func() {
		if !mw.busy {
			_, _ = mw.app.controller.Refresh()
		}
	})
}

// createStatusBar creates the status bar.
func (mw *MainWindow) createStatusBar() {
	mw.statusBar = gtk.NewBox(gtk.OrientationHorizontal, 12)
	mw.statusBar.AddCSSClass("status-bar")
	mw.statusBar.SetMarginBottom(6)

	mw.statusLabel = gtk.NewLabel("Idle.")
	mw.statusLabel.SetXAlign(0)
	mw.statusLabel.SetHExpand(true)
	mw.statusBar.Append(mw.statusLabel)

	rootLabel := gtk.NewLabel(mw.app.catalog.Root())
	rootLabel.AddCSSClass("dim-label")
	rootLabel.AddCSSClass("caption")
	mw.statusBar.Append(rootLabel)
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// SetStatus updates the status text.
func (mw *MainWindow) SetStatus(text string) {
	if mw.statusLabel != nil {
		mw.statusLabel.SetText(text)
	}
}

// IsActive reports whether the window is visible and focused.
func (mw *MainWindow) IsActive() bool {
	return mw.window.IsVisible() && mw.window.IsActive()
}

// =============================================================================
// actions.View
// =============================================================================

// SetBackups shows names in the list and the tray.
func (mw *MainWindow) SetBackups(names []string) {
	mw.backupList.SetBackups(names)
	if tray := mw.app.tray; tray != nil {
		tray.SetBackups(names)
	}
}

// AppendLog adds a line to the output log and scrolls to it.
func (mw *MainWindow) AppendLog(text string) {
	if text == "" {
		return
	}
	buffer := mw.logView.Buffer()
	buffer.Insert(buffer.EndIter(), text+"\n")
	mw.logView.ScrollMarkOnscreen(mw.logEnd)
}

// SetBusy toggles the progress bar and disables the controls while a
// command runs.
func (mw *MainWindow) SetBusy(busy bool, message string) {
	wasBusy := mw.busy
	mw.busy = busy

	if busy {
		if message == "" {
			message = "Working…"
		}
		mw.progress.SetVisible(true)
		if !wasBusy {
			glib.TimeoutAdd(100, func() bool {
				if !mw.busy {
					return false
				}
				mw.progress.Pulse()
				return true
			})
		}
	} else {
		if message == "" {
			message = "Idle."
		}
		mw.progress.SetVisible(false)
	}
	mw.SetStatus(message)

	for _, btn := range mw.controls {
		btn.SetSensitive(!busy)
	}
	mw.backupList.SetSensitive(!busy)
	mw.nameEntry.SetSensitive(!busy)

	if tray := mw.app.tray; tray != nil {
		tray.SetBusy(busy, message)
	}
}

// Quit closes the application, after any open notice is dismissed.
func (mw *MainWindow) Quit() {
	if mw.openNotices > 0 {
		mw.quitPending = true
		return
	}
	mw.app.Quit()
}

// =============================================================================
// actions.Prompter
// =============================================================================

// Confirm shows a Yes/No dialog. No is the default and the close response.
func (mw *MainWindow) Confirm(title, message string, answer func(yes bool)) {
	dialog := adw.NewMessageDialog(&mw.window.Window, title, message)
	dialog.AddResponse(responseNo, "_No")
	dialog.AddResponse(responseYes, "_Yes")
	dialog.SetResponseAppearance(responseYes, adw.ResponseSuggested)
	dialog.SetDefaultResponse(responseNo)
	dialog.SetCloseResponse(responseNo)
	dialog.ConnectResponse(func(response string) {
		answer(response == responseYes)
	})
	dialog.Present()
}

// Warn shows a warning notice.
func (mw *MainWindow) Warn(title, message string) {
	mw.notice("⚠ "+title, message)
}

// Error shows an error notice.
func (mw *MainWindow) Error(title, message string) {
	mw.notice("✖ "+title, message)
}

// Info shows an information notice.
func (mw *MainWindow) Info(title, message string) {
	mw.notice(title, message)
}

// notice shows a modal dialog with a single OK button.
func (mw *MainWindow) notice(title, message string) {
	common.LogDebug("Notice: %s: %s", title, message)
	dialog := adw.NewMessageDialog(&mw.window.Window, title, message)
	dialog.AddResponse(responseOK, "_OK")
	dialog.SetDefaultResponse(responseOK)
	dialog.SetCloseResponse(responseOK)
	mw.openNotices++
	dialog.ConnectResponse(func(string) {
		mw.openNotices--
		if mw.openNotices == 0 && mw.quitPending {
			mw.app.Quit()
		}
	})
	dialog.Present()
}

// =============================================================================
// Event handlers
// =============================================================================

func (mw *MainWindow) onCreateBackup() {
	if err := mw.app.controller.CreateBackup(mw.nameEntry.Text()); err == nil {
		mw.nameEntry.SetText("")
	}
}

// onImport asks for an archive and hands it to the controller.
func (mw *MainWindow) onImport() {
	if mw.busy {
		mw.Warn("Busy", "A task is already running.")
		return
	}

	dialog := gtk.NewFileChooserNative(
		"Import backup archive",
		&mw.window.Window,
		gtk.FileChooserActionOpen,
		"Import",
		"Cancel",
	)

	if home, err := os.UserHomeDir(); err == nil {
		_ = dialog.SetCurrentFolder(gio.NewFileForPath(home))
	}

	filter := gtk.NewFileFilter()
	filter.SetName("KDE Backups (*.tar.gz)")
	filter.AddPattern("*.tar.gz")
	filter.AddPattern("*.tgz")
	dialog.AddFilter(filter)

	all := gtk.NewFileFilter()
	all.SetName("All files")
	all.AddPattern("*")
	dialog.AddFilter(all)

	dialog.ConnectResponse(func(responseID int) {
		if responseID == int(gtk.ResponseAccept) {
			if file := dialog.File(); file != nil {
				_ = mw.app.controller.Import(file.Path())
			}
		}
		dialog.Destroy()
	})

	dialog.Show()
}

func (mw *MainWindow) onPreferences() {
	prefsDialog := NewPreferencesDialog(mw)
	prefsDialog.Show()
}

func (mw *MainWindow) onHistory() {
	historyDialog := NewHistoryDialog(mw)
	historyDialog.Show()
}

func (mw *MainWindow) onAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)

	about.SetProgramName(common.AppName)
	about.SetLogoIconName(common.ConfigDirName)
	about.SetVersion(mw.app.version)
	about.SetComments(fmt.Sprintf("Back up, restore and switch KDE Plasma themes and layouts.\nA graphical front-end for %s.", common.KDEThemeCommand))

	about.SetWebsite("https://github.com/yllada/kde-theme-backup")
	about.SetWebsiteLabel("GitHub Repository")

	about.SetCopyright("© 2026 Yadian Llada Lopez")
	about.SetLicenseType(gtk.LicenseMITX11)
	about.SetAuthors([]string{"Yadian Llada Lopez <yadian@y3lcorp.com>"})

	about.Show()
}
