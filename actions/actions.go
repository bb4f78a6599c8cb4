// Package actions implements the user-facing operations of the application:
// creating, restoring, importing and deleting backups, and uninstalling.
//
// A Controller validates input, asks for confirmation through a Prompter,
// starts the external command through a runner.Runner and refreshes the
// View once the command succeeds. Front-ends (GTK, terminal, command line)
// only provide the Prompter and View.
package actions

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yllada/kde-theme-backup/catalog"
	"github.com/yllada/kde-theme-backup/common"
	"github.com/yllada/kde-theme-backup/history"
	"github.com/yllada/kde-theme-backup/runner"
)

// Log lines written by the controller.
const (
	LineRefreshed = "🔄 Backup list updated."
)

// DeletedLine returns the log line written after a backup is deleted.
func DeletedLine(name string) string {
	return fmt.Sprintf("🗑 Deleted '%s'.", name)
}

// ImportedLine returns the log line written after an archive is imported.
func ImportedLine(file string) string {
	return fmt.Sprintf("📥 Imported '%s'.", file)
}

// Action labels stored in history.
const (
	ActionBackup        = "backup"
	ActionRestore       = "restore"
	ActionRestoreLayout = "restore-layout"
	ActionRestoreAll    = "restore-all"
	ActionImport        = "import"
	ActionDelete        = "delete"
	ActionUninstall     = "uninstall"
)

// Prompter shows modal notices. Confirm may answer synchronously (terminal)
// or later from the UI loop (GTK); answer is called exactly once.
type Prompter interface {
	Confirm(title, message string, answer func(yes bool))
	Warn(title, message string)
	Error(title, message string)
	Info(title, message string)
}

// View is the part of a front-end the controller drives.
type View interface {
	SetBackups(names []string)
	AppendLog(text string)
	SetBusy(busy bool, message string)
	Quit()
}

// Settings holds the external programs the controller runs.
type Settings struct {
	// KDEThemeCommand is the kde-theme executable name or path.
	KDEThemeCommand string
	// UninstallScript is the script run through ElevateCommand by Uninstall.
	UninstallScript string
	// TarCommand extracts imported archives. Defaults to "tar".
	TarCommand string
	// ElevateCommand runs the uninstaller as root. Defaults to "pkexec".
	ElevateCommand string
	// StartTimeout bounds process launch. Defaults to common.StartTimeout.
	StartTimeout time.Duration
}

// Options configures a Controller.
type Options struct {
	Settings   Settings
	Catalog    *catalog.Catalog
	Prompter   Prompter
	View       View
	Dispatcher runner.Dispatcher
	// History records finished operations when set.
	History *history.Store
	// OnComplete is called on the dispatcher after every finished command.
	OnComplete func(runner.Result)
}

// jobInfo is what history needs about a job beyond the runner's Result.
type jobInfo struct {
	action string
	backup string
	digest string
}

// Controller runs the application's operations. It is also the runner's
// observer, forwarding log and busy events to the View and turning
// failures into notices.
type Controller struct {
	settings Settings
	catalog  *catalog.Catalog
	runner   *runner.Runner
	prompt   Prompter
	view     View
	history  *history.Store
	onDone   func(runner.Result)

	// lookPath resolves programs; replaced in tests.
	lookPath func(file string) (string, error)

	mu   sync.Mutex
	jobs map[string]jobInfo
}

// New creates a Controller and the Runner it owns.
func New(opts Options) *Controller {
	s := opts.Settings
	if s.KDEThemeCommand == "" {
		s.KDEThemeCommand = common.KDEThemeCommand
	}
	if s.TarCommand == "" {
		s.TarCommand = common.TarCommand
	}
	if s.ElevateCommand == "" {
		s.ElevateCommand = common.ElevateCommand
	}

	c := &Controller{
		settings: s,
		catalog:  opts.Catalog,
		prompt:   opts.Prompter,
		view:     opts.View,
		history:  opts.History,
		onDone:   opts.OnComplete,
		lookPath: exec.LookPath,
		jobs:     make(map[string]jobInfo),
	}
	c.runner = runner.New(runner.Options{
		Dispatcher:   opts.Dispatcher,
		Observer:     c,
		StartTimeout: s.StartTimeout,
		OnComplete:   c.record,
	})
	return c
}

// Runner returns the runner that executes the controller's commands.
func (c *Controller) Runner() *runner.Runner {
	return c.runner
}

// Catalog returns the backup catalog.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// Busy reports whether a command is running.
func (c *Controller) Busy() bool {
	return c.runner.Busy()
}

// AppendLog implements runner.Observer.
func (c *Controller) AppendLog(text string) {
	c.view.AppendLog(text)
}

// SetBusy implements runner.Observer.
func (c *Controller) SetBusy(busy bool, message string) {
	c.view.SetBusy(busy, message)
}

// CommandFailed implements runner.Observer.
func (c *Controller) CommandFailed(job runner.Job, exitCode int) {
	c.prompt.Warn("Failed", fmt.Sprintf("Command failed with status %d. See log.", exitCode))
}

// Refresh rescans the backup root and pushes the result to the View.
func (c *Controller) Refresh() ([]string, error) {
	names, err := c.catalog.List()
	if err != nil {
		common.LogError("Failed to list backups: %v", err)
		c.prompt.Error("Error", fmt.Sprintf("Could not read %s:\n%v", c.catalog.Root(), err))
		return nil, err
	}
	c.view.SetBackups(names)
	c.view.AppendLog(LineRefreshed)
	return names, nil
}

// CreateBackup runs "kde-theme backup NAME". Replacing an existing backup
// needs confirmation.
//
// Errors raised after an asynchronous confirmation are reported through the
// Prompter only; the returned error covers what happened before Confirm
// returned.
func (c *Controller) CreateBackup(name string) error {
	name = strings.TrimSpace(name)
	if err := catalog.ValidateName(name); err != nil {
		if errors.Is(err, common.ErrEmptyName) {
			c.prompt.Warn("No name", "Enter a backup name.")
		} else {
			c.prompt.Warn("Invalid name", "No spaces or / : \\ allowed.")
		}
		return err
	}
	if err := c.requireCommand(c.settings.KDEThemeCommand); err != nil {
		return err
	}

	if !c.catalog.Exists(name) {
		return c.runKDETheme(ActionBackup, name, fmt.Sprintf("Creating backup '%s'…", name))
	}

	return c.confirm("Overwrite backup?",
		fmt.Sprintf("A backup named '%s' already exists.\n\nDo you want to overwrite it?", name),
		func() error {
			return c.runKDETheme(ActionBackup, name, fmt.Sprintf("Creating backup '%s'…", name))
		})
}

// RestoreTheme runs "kde-theme restore NAME".
func (c *Controller) RestoreTheme(name string) error {
	if err := c.requireSelection(name); err != nil {
		return err
	}
	if err := c.requireCommand(c.settings.KDEThemeCommand); err != nil {
		return err
	}
	return c.runKDETheme(ActionRestore, name, fmt.Sprintf("Restoring theme '%s'…", name))
}

// RestoreLayout runs "kde-theme restore-layout NAME" after confirmation.
func (c *Controller) RestoreLayout(name string) error {
	if err := c.requireSelection(name); err != nil {
		return err
	}
	if err := c.requireCommand(c.settings.KDEThemeCommand); err != nil {
		return err
	}
	return c.confirm("Restore layout?",
		fmt.Sprintf("Overwrite your current layout with '%s'?", name),
		func() error {
			return c.runKDETheme(ActionRestoreLayout, name, fmt.Sprintf("Restoring layout '%s'…", name))
		})
}

// RestoreAll runs "kde-theme restore-all NAME" after confirmation.
func (c *Controller) RestoreAll(name string) error {
	if err := c.requireSelection(name); err != nil {
		return err
	}
	if err := c.requireCommand(c.settings.KDEThemeCommand); err != nil {
		return err
	}
	return c.confirm("Restore all?",
		fmt.Sprintf("Restore THEME + LAYOUT from '%s'?", name),
		func() error {
			return c.runKDETheme(ActionRestoreAll, name, fmt.Sprintf("Restoring theme + layout '%s'…", name))
		})
}

// Delete removes a backup directory and its archive after confirmation.
func (c *Controller) Delete(name string) error {
	if err := c.requireSelection(name); err != nil {
		return err
	}
	if err := c.requireIdle(); err != nil {
		return err
	}

	return c.confirm("Delete backup?",
		fmt.Sprintf("Delete '%s' permanently?", name),
		func() error {
			// The runner may have been started while the dialog was open.
			if err := c.requireIdle(); err != nil {
				return err
			}

			started := time.Now()
			err := c.catalog.Delete(name)
			c.recordDelete(name, started, err)
			if err != nil {
				common.LogError("Failed to delete backup %s: %v", name, err)
				c.prompt.Error("Delete failed", err.Error())
				_, _ = c.Refresh()
				return err
			}

			common.LogInfo("Deleted backup %s", name)
			c.view.AppendLog(DeletedLine(name))
			_, _ = c.Refresh()
			return nil
		})
}

// Import extracts a .tar.gz archive into the backup root. The backup it
// creates is named after the archive; an existing backup of that name is
// replaced only after a second confirmation. An empty path is a cancelled
// file chooser and does nothing.
func (c *Controller) Import(archivePath string) error {
	if archivePath == "" {
		return nil
	}
	file := filepath.Base(archivePath)

	name, err := catalog.ArchiveBackupName(archivePath)
	if err != nil {
		c.prompt.Warn("Invalid archive",
			fmt.Sprintf("'%s' is not a backup archive.\nExpected NAME.tar.gz with no spaces or / : \\ in NAME.", file))
		return err
	}
	if err := c.requireIdle(); err != nil {
		return err
	}
	if err := c.requireCommand(c.settings.TarCommand); err != nil {
		return err
	}

	extract := func() error {
		if err := c.requireIdle(); err != nil {
			return err
		}
		if c.catalog.Exists(name) {
			if err := c.catalog.RemoveBackupDir(name); err != nil {
				common.LogError("Failed to remove %s before import: %v", name, err)
				c.prompt.Error("Import failed", err.Error())
				return err
			}
		}

		digest, err := history.ArchiveDigest(archivePath)
		if err != nil {
			common.LogDebug("Could not hash %s: %v", archivePath, err)
		}

		return c.run(runner.Job{
			Args:   []string{c.settings.TarCommand, "-xzf", archivePath, "-C", c.catalog.Root()},
			Status: fmt.Sprintf("Importing '%s'…", file),
		}, jobInfo{action: ActionImport, backup: name, digest: digest}, func() {
			if err := c.catalog.StoreArchive(archivePath); err != nil {
				common.LogWarn("Could not keep a copy of %s: %v", archivePath, err)
			}
			c.view.AppendLog(ImportedLine(file))
			_, _ = c.Refresh()
		})
	}

	return c.confirm("Import?", fmt.Sprintf("Import '%s' as '%s'?", file, name), func() error {
		if !c.catalog.Exists(name) {
			return extract()
		}
		return c.confirm("Overwrite backup?",
			fmt.Sprintf("A backup named '%s' already exists.\n\nDo you want to overwrite it?", name),
			extract)
	})
}

// Uninstall runs the uninstaller script through pkexec after confirmation
// and quits once it succeeds.
func (c *Controller) Uninstall() error {
	script := c.settings.UninstallScript
	if !common.FileExists(script) {
		c.prompt.Error("Missing", fmt.Sprintf("Uninstaller not found:\n%s", script))
		return fmt.Errorf("%w: %s", common.ErrScriptNotFound, script)
	}

	return c.confirm("Uninstall?", "Remove KDE Theme Backup + GUI?", func() error {
		elevate, err := c.lookPath(c.settings.ElevateCommand)
		if err != nil {
			c.prompt.Warn(c.settings.ElevateCommand+" missing",
				fmt.Sprintf("Run manually:\n  sudo %s", script))
			return fmt.Errorf("%w: %s", common.ErrCommandNotFound, c.settings.ElevateCommand)
		}

		return c.run(runner.Job{
			Args:   []string{elevate, script},
			Status: "Uninstalling…",
		}, jobInfo{action: ActionUninstall}, func() {
			c.view.AppendLog("✅ Uninstalled.")
			c.prompt.Info("Done", "Uninstalled.")
			c.view.Quit()
		})
	})
}

// History returns up to limit recorded operations, newest first. It returns
// nil when no store is configured.
func (c *Controller) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if c.history == nil {
		return nil, nil
	}
	return c.history.Recent(ctx, limit)
}

// runKDETheme runs "kde-theme ACTION NAME" and refreshes on success.
func (c *Controller) runKDETheme(action, name, status string) error {
	return c.run(runner.Job{
		Args:        []string{c.settings.KDEThemeCommand, action, name},
		Status:      status,
		FeedNewline: true,
	}, jobInfo{action: action, backup: name}, func() {
		_, _ = c.Refresh()
	})
}

// run starts job; onSuccess runs after it exits with status 0.
func (c *Controller) run(job runner.Job, info jobInfo, onSuccess func()) error {
	job.ID = uuid.NewString()
	if onSuccess != nil {
		job.OnFinished = func(code int) {
			if code == 0 {
				onSuccess()
			}
		}
	}

	c.mu.Lock()
	c.jobs[job.ID] = info
	c.mu.Unlock()

	err := c.runner.Start(job)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	delete(c.jobs, job.ID)
	c.mu.Unlock()

	switch {
	case errors.Is(err, common.ErrBusy):
		c.prompt.Warn("Busy", "A task is already running.")
	case errors.Is(err, common.ErrLaunchFailed):
		c.prompt.Error("Error", "Failed to start command.")
	}
	return err
}

// confirm asks the question and calls proceed on Yes. The returned error is
// proceed's when the Prompter answers synchronously, ErrCancelled on No.
func (c *Controller) confirm(title, message string, proceed func() error) error {
	var result error
	c.prompt.Confirm(title, message, func(yes bool) {
		if !yes {
			common.LogDebug("User declined: %s", title)
			result = common.ErrCancelled
			return
		}
		result = proceed()
	})
	return result
}

func (c *Controller) requireSelection(name string) error {
	if name == "" {
		c.prompt.Warn("No backup selected", "Select a backup from the list.")
		return common.ErrNoSelection
	}
	if err := catalog.ValidateEntry(name); err != nil {
		c.prompt.Warn("Invalid name", fmt.Sprintf("'%s' is not a backup in the backup folder.", name))
		return err
	}
	return nil
}

func (c *Controller) requireIdle() error {
	if c.runner.Busy() {
		c.prompt.Warn("Busy", "A task is already running.")
		return common.ErrBusy
	}
	return nil
}

func (c *Controller) requireCommand(command string) error {
	if _, err := c.lookPath(command); err != nil {
		c.prompt.Error(command+" not found",
			fmt.Sprintf("Could not find '%s' in PATH.\nInstall via .deb or installer script.", command))
		return fmt.Errorf("%w: %s", common.ErrCommandNotFound, command)
	}
	return nil
}

// record stores a finished job in history. It runs on the dispatcher.
func (c *Controller) record(res runner.Result) {
	if c.onDone != nil {
		defer c.onDone(res)
	}

	c.mu.Lock()
	info, ok := c.jobs[res.Job.ID]
	delete(c.jobs, res.Job.ID)
	c.mu.Unlock()

	if !ok || c.history == nil {
		return
	}

	entry := history.Entry{
		ID:            res.Job.ID,
		Action:        info.action,
		Backup:        info.backup,
		Args:          res.Job.Args,
		ExitCode:      res.ExitCode,
		Started:       res.Started,
		Finished:      res.Finished,
		ArchiveDigest: info.digest,
	}
	if err := c.history.Record(context.Background(), entry); err != nil {
		common.LogWarn("Failed to record history for job %s: %v", res.Job.ID, err)
	}
}

func (c *Controller) recordDelete(name string, started time.Time, err error) {
	if c.history == nil {
		return
	}
	code := 0
	if err != nil {
		code = 1
	}
	entry := history.Entry{
		ID:       uuid.NewString(),
		Action:   ActionDelete,
		Backup:   name,
		Args:     []string{},
		ExitCode: code,
		Started:  started,
		Finished: time.Now(),
	}
	if err := c.history.Record(context.Background(), entry); err != nil {
		common.LogWarn("Failed to record deletion of %s: %v", name, err)
	}
}
