// Package tui provides a terminal front-end for KDE Theme Backup, built on
// Bubble Tea. It offers the same operations as the GTK window.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/kde-theme-backup/actions"
	"github.com/yllada/kde-theme-backup/catalog"
	"github.com/yllada/kde-theme-backup/common"
	"github.com/yllada/kde-theme-backup/config"
	"github.com/yllada/kde-theme-backup/history"
	"github.com/yllada/kde-theme-backup/runner"
)

// ProgramOptions returns default program options.
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
}

// Run shows the terminal UI until the user quits. store may be nil.
func Run(cfg *config.Config, store *history.Store) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	cat := catalog.New(cfg.BackupRoot())
	m := newModel(cat.Root())
	p := tea.NewProgram(m, ProgramOptions()...)

	m.ctl = actions.New(actions.Options{
		Settings: actions.Settings{
			KDEThemeCommand: cfg.KDEThemeCommand,
			UninstallScript: cfg.UninstallScript,
			StartTimeout:    cfg.StartTimeout,
		},
		Catalog:  cat,
		Prompter: m,
		View:     m,
		// Runner callbacks come from reader goroutines; Update runs them.
		Dispatcher: runner.DispatcherFunc(func(fn func()) {
			p.Send(dispatchMsg{fn: fn})
		}),
		History: store,
	})

	common.LogInfo("Starting terminal UI for %s", cat.Root())
	_, err := p.Run()
	if m.ctl.Busy() {
		common.LogWarn("Terminal UI closed while a command was still running")
	}
	return err
}
