package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/kde-theme-backup/actions"
	"github.com/yllada/kde-theme-backup/catalog"
	"github.com/yllada/kde-theme-backup/common"
	"github.com/yllada/kde-theme-backup/config"
	"github.com/yllada/kde-theme-backup/history"
	"github.com/yllada/kde-theme-backup/runner"
)

// Application represents the main application
type Application struct {
	app        *adw.Application
	window     *MainWindow
	config     *config.Config
	catalog    *catalog.Catalog
	controller *actions.Controller
	history    *history.Store
	notifier   *Notifier
	version    string
	tray       *TrayIndicator
}

// NewApplication creates a new application. store may be nil, in which
// case nothing is recorded.
func NewApplication(cfg *config.Config, store *history.Store, version string) *Application {
	app := adw.NewApplication(common.AppID, gio.ApplicationFlagsNone)

	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	application := &Application{
		app:      app,
		config:   cfg,
		catalog:  catalog.New(cfg.BackupRoot()),
		history:  store,
		notifier: NewNotifier(cfg.ShowNotifications),
		version:  version,
	}

	app.ConnectActivate(application.onActivate)
	app.ConnectShutdown(application.onShutdown)

	return application
}

// Run runs the application
func (a *Application) Run(args []string) int {
	return a.app.Run(args)
}

// onActivate is called when the application is activated
func (a *Application) onActivate() {
	// A second activation (launching again) presents the existing window
	if a.window != nil {
		a.showWindow()
		return
	}

	a.ApplyTheme(a.config.Theme)
	a.setupAppIcon()
	LoadStyles()

	// Tray first so the initial refresh reaches it
	if a.config.ShowTray {
		a.tray = NewTrayIndicator(a)
		go a.tray.Run()
	}

	a.window = NewMainWindow(a)
	a.controller = actions.New(actions.Options{
		Settings: actions.Settings{
			KDEThemeCommand: a.config.KDEThemeCommand,
			UninstallScript: a.config.UninstallScript,
			StartTimeout:    a.config.StartTimeout,
		},
		Catalog:  a.catalog,
		Prompter: a.window,
		View:     a.window,
		Dispatcher: runner.DispatcherFunc(func(fn func()) {
			glib.IdleAdd(fn)
		}),
		History:    a.history,
		OnComplete: a.onCommandComplete,
	})

	a.window.Show()

	if _, err := a.controller.Refresh(); err != nil {
		common.LogError("Initial backup scan failed: %v", err)
	}
}

// onShutdown releases resources when the GTK application exits.
func (a *Application) onShutdown() {
	if a.tray != nil {
		a.tray.Quit()
	}
	a.notifier.Close()
}

// onCommandComplete notifies the desktop when a command finishes while the
// window is not in front.
func (a *Application) onCommandComplete(res runner.Result) {
	if !a.config.ShowNotifications || (a.window != nil && a.window.IsActive()) {
		return
	}

	what := strings.Join(res.Job.Args[1:], " ")
	if res.ExitCode == 0 {
		a.notifier.NotifySucceeded(what)
	} else {
		a.notifier.NotifyFailed(what, res.ExitCode)
	}
}

// setupAppIcon sets up the application icon
func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	// GTK4 looks for theme subdirectories (like "hicolor") inside these paths
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		iconTheme.AddSearchPath(filepath.Join(execDir, "assets", "icons"))
	}
	if cwd, err := os.Getwd(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(cwd, "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName(common.ConfigDirName)
}

// GetConfig returns the configuration
func (a *Application) GetConfig() *config.Config {
	return a.config
}

// ApplyTheme applies the specified theme to the application.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) ApplyTheme(theme string) {
	styleManager := adw.StyleManagerGetDefault()
	if styleManager == nil {
		return
	}

	switch theme {
	case common.ThemeLight:
		styleManager.SetColorScheme(adw.ColorSchemeForceLight)
	case common.ThemeDark:
		styleManager.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		styleManager.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// GetVersion returns the application version
func (a *Application) GetVersion() string {
	return a.version
}

// showWindow shows the main window
func (a *Application) showWindow() {
	if a.window != nil {
		a.window.window.Present()
	}
}

// Quit closes the application
func (a *Application) Quit() {
	a.app.Quit()
}
