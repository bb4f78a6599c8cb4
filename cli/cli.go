// Package cli provides command-line interface functionality for KDE Theme
// Backup. This allows users to list, create, restore, import and delete
// backups from the terminal without launching the GUI application.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/yllada/kde-theme-backup/actions"
	"github.com/yllada/kde-theme-backup/catalog"
	"github.com/yllada/kde-theme-backup/common"
	"github.com/yllada/kde-theme-backup/config"
	"github.com/yllada/kde-theme-backup/history"
	"github.com/yllada/kde-theme-backup/runner"
)

// ExitError reports a command that ran but exited with a nonzero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// ExitCode maps an error returned by a CLI method to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Options configures a CLI.
type Options struct {
	// AssumeYes answers every confirmation with yes.
	AssumeYes bool
	// In, Out and Err default to the process's standard streams.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// CLI represents the command-line interface. It is the controller's
// Prompter and View: output goes to Out, notices to Err.
type CLI struct {
	ctl     *actions.Controller
	catalog *catalog.Catalog

	in          *bufio.Reader
	out         io.Writer
	errOut      io.Writer
	assumeYes   bool
	interactive bool

	mu       sync.Mutex
	reported bool
	result   *runner.Result
}

// New creates a new CLI instance. store may be nil.
func New(cfg *config.Config, store *history.Store, opts Options) *CLI {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	c := &CLI{
		catalog:   catalog.New(cfg.BackupRoot()),
		out:       opts.Out,
		errOut:    opts.Err,
		assumeYes: opts.AssumeYes,
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.errOut == nil {
		c.errOut = os.Stderr
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	if f, ok := in.(*os.File); ok {
		c.interactive = term.IsTerminal(int(f.Fd()))
	}
	c.in = bufio.NewReader(in)

	c.ctl = actions.New(actions.Options{
		Settings: actions.Settings{
			KDEThemeCommand: cfg.KDEThemeCommand,
			UninstallScript: cfg.UninstallScript,
			StartTimeout:    cfg.StartTimeout,
		},
		Catalog:    c.catalog,
		Prompter:   c,
		View:       c,
		Dispatcher: &runner.Serial{},
		History:    store,
		OnComplete: c.onComplete,
	})

	return c
}

// Reported reports whether an error or warning has already been printed.
func (c *CLI) Reported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reported
}

// ListBackups prints all backups.
func (c *CLI) ListBackups() error {
	names, err := c.catalog.List()
	if err != nil {
		return fmt.Errorf("failed to read backups: %w", err)
	}

	if len(names) == 0 {
		fmt.Fprintf(c.out, "No backups in %s.\n", c.catalog.Root())
		fmt.Fprintln(c.out, "Create one with: kde-theme-backup --backup NAME")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODIFIED\tARCHIVE")
	fmt.Fprintln(w, "----\t--------\t-------")

	for _, name := range names {
		modified := "-"
		if info, err := os.Stat(c.catalog.Path(name)); err == nil {
			modified = info.ModTime().Format("2006-01-02 15:04")
		}

		archive := "No"
		if common.FileExists(c.catalog.ArchivePath(name)) {
			archive = "Yes"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n", name, modified, archive)
	}

	w.Flush()
	return nil
}

// Backup creates or overwrites a backup.
func (c *CLI) Backup(name string) error {
	return c.run(func() error { return c.ctl.CreateBackup(name) })
}

// Restore restores the theme of a backup.
func (c *CLI) Restore(name string) error {
	return c.run(func() error { return c.ctl.RestoreTheme(name) })
}

// RestoreLayout restores the panel layout of a backup.
func (c *CLI) RestoreLayout(name string) error {
	return c.run(func() error { return c.ctl.RestoreLayout(name) })
}

// RestoreAll restores theme and layout of a backup.
func (c *CLI) RestoreAll(name string) error {
	return c.run(func() error { return c.ctl.RestoreAll(name) })
}

// Import extracts a .tar.gz archive into the backup folder.
func (c *CLI) Import(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("no archive given")
	}
	return c.run(func() error { return c.ctl.Import(common.ExpandHome(path)) })
}

// Delete removes a backup and its archive.
func (c *CLI) Delete(name string) error {
	return c.run(func() error { return c.ctl.Delete(name) })
}

// Uninstall runs the uninstaller script.
func (c *CLI) Uninstall() error {
	return c.run(c.ctl.Uninstall)
}

// History prints the most recent operations.
func (c *CLI) History(ctx context.Context, limit int) error {
	entries, err := c.ctl.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if entries == nil {
		fmt.Fprintln(c.out, "History is not available.")
		return nil
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No operations recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tACTION\tBACKUP\tSTATUS\tDURATION")
	fmt.Fprintln(w, "--------\t------\t------\t------\t--------")

	for _, e := range entries {
		status := "OK"
		if !e.Succeeded() {
			status = fmt.Sprintf("Failed (%d)", e.ExitCode)
		}
		backup := e.Backup
		if backup == "" {
			backup = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Finished.Local().Format("2006-01-02 15:04:05"), e.Action, backup, status,
			formatDuration(e.Duration()))
	}

	w.Flush()
	return nil
}

// run performs op and waits for the command it started, if any.
func (c *CLI) run(op func() error) error {
	c.mu.Lock()
	c.result = nil
	c.mu.Unlock()

	if err := op(); err != nil {
		return err
	}

	c.ctl.Runner().Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil && c.result.ExitCode != 0 {
		return &ExitError{Code: c.result.ExitCode}
	}
	return nil
}

func (c *CLI) onComplete(res runner.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = &res
}

// SetBackups is a no-op; use ListBackups to print the list.
func (c *CLI) SetBackups([]string) {}

// AppendLog prints a log line.
func (c *CLI) AppendLog(text string) {
	fmt.Fprintln(c.out, text)
}

// SetBusy logs the status message at debug level.
func (c *CLI) SetBusy(busy bool, message string) {
	if busy {
		common.LogDebug("CLI: %s", message)
	}
}

// Quit is a no-op; the process exits when the operation returns.
func (c *CLI) Quit() {}

// Confirm asks on the terminal. Without a terminal the answer is no
// unless --yes was given.
func (c *CLI) Confirm(title, message string, answer func(yes bool)) {
	question := strings.ReplaceAll(message, "\n", " ")

	switch {
	case c.assumeYes:
		fmt.Fprintf(c.out, "%s %s [y/N] y\n", title, question)
		answer(true)
		return
	case !c.interactive:
		c.report("%s %s\nNot confirmed: stdin is not a terminal (use --yes).\n", title, question)
		answer(false)
		return
	}

	fmt.Fprintf(c.out, "%s %s [y/N] ", title, question)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		answer(false)
		return
	}

	reply := strings.ToLower(strings.TrimSpace(line))
	answer(reply == "y" || reply == "yes")
}

// Warn prints a warning.
func (c *CLI) Warn(title, message string) {
	c.report("Warning: %s: %s\n", title, message)
}

// Error prints an error.
func (c *CLI) Error(title, message string) {
	c.report("Error: %s: %s\n", title, message)
}

// Info prints an information message.
func (c *CLI) Info(title, message string) {
	fmt.Fprintf(c.out, "%s: %s\n", title, message)
}

func (c *CLI) report(format string, args ...interface{}) {
	c.mu.Lock()
	c.reported = true
	c.mu.Unlock()
	fmt.Fprintf(c.errOut, format, args...)
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`KDE Theme Backup - Command Line Interface

Usage:
  kde-theme-backup [OPTIONS]

Options:
  --version               Show version and exit
  --verbose               Enable verbose logging
  --config PATH           Use another config file
  --tui                   Start the terminal interface
  --list                  List all backups
  --backup NAME           Create (or overwrite) a backup
  --restore NAME          Restore the theme of a backup
  --restore-layout NAME   Restore the panel layout of a backup
  --restore-all NAME      Restore theme and layout of a backup
  --import PATH           Import a .tar.gz backup archive
  --delete NAME           Delete a backup and its archive
  --history               Show recent operations
  --uninstall             Run the uninstaller
  --yes                   Answer yes to every confirmation
  --help                  Show this help message

Examples:
  kde-theme-backup --list
  kde-theme-backup --backup win11-dark
  kde-theme-backup --restore-all win11-dark
  kde-theme-backup --import ~/Downloads/macosfull.tar.gz --yes

Notes:
  - Backups are stored in ~/kde-theme-backups unless configured otherwise
  - Confirmations need a terminal, or --yes
  - Run without options to launch the GUI`)
}
