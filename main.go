// Package main provides the entry point for the KDE Theme Backup application.
// KDE Theme Backup is a GTK4 front-end for the kde-theme command line tool
// that saves and restores Plasma themes and panel layouts.
//
// Features:
//   - Create, restore, import and delete theme backups
//   - Live command output in the window log
//   - Operation history stored in SQLite
//   - System tray with quick restores
//   - Terminal interface and command line for scripting and automation
//
// Usage:
//
//	kde-theme-backup [options]
//
// Environment:
//
//	The application requires kde-theme to be installed on the system.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"

	"github.com/yllada/kde-theme-backup/cli"
	"github.com/yllada/kde-theme-backup/common"
	"github.com/yllada/kde-theme-backup/config"
	"github.com/yllada/kde-theme-backup/history"
	"github.com/yllada/kde-theme-backup/tui"
	"github.com/yllada/kde-theme-backup/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// GUI/General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	configPath  = flag.String("config", "", "Path to an alternative config file")
	useTUI      = flag.Bool("tui", false, "Start the terminal interface")

	// CLI flags
	listBackups   = flag.Bool("list", false, "List all backups")
	createBackup  = flag.String("backup", "", "Create a backup with the given name")
	restoreTheme  = flag.String("restore", "", "Restore the theme of a backup")
	restoreLayout = flag.String("restore-layout", "", "Restore the panel layout of a backup")
	restoreAll    = flag.String("restore-all", "", "Restore theme and layout of a backup")
	importArchive = flag.String("import", "", "Import a .tar.gz backup archive")
	deleteBackup  = flag.String("delete", "", "Delete a backup and its archive")
	showHistory   = flag.Bool("history", false, "Show recent operations")
	uninstall     = flag.Bool("uninstall", false, "Run the uninstaller")
	assumeYes     = flag.Bool("yes", false, "Answer yes to every confirmation")
)

// historyLimit is the number of operations --history prints.
const historyLimit = 20

func main() {
	flag.Parse()
	fillVersionFromBuildInfo()

	// Handle help flag
	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	// Handle version flag
	if *showVersion {
		fmt.Printf("KDE Theme Backup v%s\n", appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	// Initialize logger with structured logging and file output
	logLevel := common.LevelInfo
	if isCLIMode() {
		// The file still gets warnings; the command output stays readable.
		logLevel = common.LevelWarn
	}
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		Console:     logConsole(),
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals (SIGINT, SIGTERM)
	setupSignalHandler(cancel)

	cfg := loadConfig()

	store := openHistory()

	exitCode := run(ctx, cfg, store)

	if exitCode != 0 {
		common.LogWarn("Application exited with code %d", exitCode)
	}
	// os.Exit skips deferred calls.
	if store != nil {
		store.Close()
	}
	common.CloseLogger()
	os.Exit(exitCode)
}

// fillVersionFromBuildInfo uses the VCS stamp of "go build" when no
// ldflags were given.
func fillVersionFromBuildInfo() {
	if commitSHA == "unknown" && versioninfo.Revision != "unknown" {
		commitSHA = versioninfo.Revision
		if versioninfo.DirtyBuild {
			commitSHA += "-dirty"
		}
	}
	if buildTime == "unknown" && !versioninfo.LastCommit.IsZero() {
		buildTime = versioninfo.LastCommit.UTC().Format(time.RFC3339)
	}
}

// run starts the selected front-end and returns the process exit status.
func run(ctx context.Context, cfg *config.Config, store *history.Store) int {
	if isCLIMode() {
		return runCLI(ctx, cfg, store)
	}

	if *useTUI {
		common.LogInfo("Starting %s v%s (terminal)", common.AppName, appVersion)
		if err := tui.Run(cfg, store); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	// Start the GTK application (GUI mode)
	common.LogInfo("Starting %s v%s", common.AppName, appVersion)
	app := ui.NewApplication(cfg, store, appVersion)
	return app.Run(os.Args[:1])
}

// logConsole keeps log lines off the terminal UI and away from the
// command output printed in CLI mode.
func logConsole() io.Writer {
	switch {
	case isCLIMode():
		return os.Stderr
	case *useTUI:
		return io.Discard
	default:
		return os.Stdout
	}
}

// isCLIMode reports whether any CLI operation flag is set.
func isCLIMode() bool {
	return *listBackups || *createBackup != "" || *restoreTheme != "" ||
		*restoreLayout != "" || *restoreAll != "" || *importArchive != "" ||
		*deleteBackup != "" || *showHistory || *uninstall
}

// loadConfig reads the config file, falling back to defaults.
func loadConfig() *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(common.ExpandHome(*configPath))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		common.LogWarn("Using default configuration: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: Could not load configuration: %v\n", err)
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
	}
	return cfg
}

// openHistory opens the operation history. The application works without
// it, so failures only warn.
func openHistory() *history.Store {
	path, err := history.DefaultPath()
	if err == nil {
		var store *history.Store
		if store, err = history.Open(path); err == nil {
			return store
		}
	}
	common.LogWarn("Operation history disabled: %v", err)
	return nil
}

// runCLI handles command-line interface operations.
// It accepts a context for graceful shutdown support.
func runCLI(ctx context.Context, cfg *config.Config, store *history.Store) int {
	cliApp := cli.New(cfg, store, cli.Options{AssumeYes: *assumeYes})

	// Check if context is already cancelled before proceeding
	select {
	case <-ctx.Done():
		common.LogInfo("Operation cancelled before execution")
		return 1
	default:
	}

	var cliErr error

	switch {
	case *listBackups:
		cliErr = cliApp.ListBackups()
	case *createBackup != "":
		cliErr = cliApp.Backup(*createBackup)
	case *restoreTheme != "":
		cliErr = cliApp.Restore(*restoreTheme)
	case *restoreLayout != "":
		cliErr = cliApp.RestoreLayout(*restoreLayout)
	case *restoreAll != "":
		cliErr = cliApp.RestoreAll(*restoreAll)
	case *importArchive != "":
		cliErr = cliApp.Import(*importArchive)
	case *deleteBackup != "":
		cliErr = cliApp.Delete(*deleteBackup)
	case *showHistory:
		cliErr = cliApp.History(ctx, historyLimit)
	case *uninstall:
		cliErr = cliApp.Uninstall()
	}

	if cliErr != nil && !cliApp.Reported() {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
	}
	return cli.ExitCode(cliErr)
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
		// Note: In CLI mode, the context cancellation will be checked
		// In GUI mode, GTK handles the shutdown via window close
	}()
}
