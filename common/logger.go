// Package common provides shared constants, types, and utilities
// used across the KDE Theme Backup application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// AppLogger is a leveled logger writing to a console stream and,
// optionally, to a size-rotated file.
type AppLogger struct {
	mu      sync.Mutex
	level   LogLevel
	console io.Writer
	out     *log.Logger
	file    *lumberjack.Logger

	maxFileSize int64 // bytes before rotation
	maxBackups  int   // rotated files kept
}

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level      LogLevel
	EnableFile bool
	// Console receives log lines besides the file. Nil means stdout;
	// io.Discard keeps a full-screen terminal UI clean.
	Console     io.Writer
	MaxFileSize int64 // in bytes, default 5MB
	MaxBackups  int   // number of rotated files to keep, default 5
}

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

const (
	defaultMaxFileSize = 5 * 1024 * 1024 // 5MB
	defaultMaxBackups  = 5
)

func newAppLogger(console io.Writer) *AppLogger {
	l := &AppLogger{
		level:       LevelInfo,
		maxFileSize: defaultMaxFileSize,
		maxBackups:  defaultMaxBackups,
	}
	l.setConsole(console)
	return l
}

// GetLogger returns the process-wide logger.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = newAppLogger(os.Stdout)
	})
	return defaultLogger
}

// InitLogger configures the process-wide logger. Call it once, early.
func InitLogger(config LogConfig) error {
	l := GetLogger()
	l.SetLevel(config.Level)

	l.mu.Lock()
	if config.MaxFileSize > 0 {
		l.maxFileSize = config.MaxFileSize
	}
	if config.MaxBackups > 0 {
		l.maxBackups = config.MaxBackups
	}
	if config.Console != nil {
		l.setConsole(config.Console)
	}
	l.mu.Unlock()

	if !config.EnableFile {
		return nil
	}
	return l.EnableFileLogging()
}

// SetLevel sets the minimum log level.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput replaces the console stream. File output is kept.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setConsole(w)
}

// setConsole rebuilds the writer chain. Callers hold l.mu, except during
// construction.
func (l *AppLogger) setConsole(w io.Writer) {
	l.console = w
	if l.file != nil {
		w = io.MultiWriter(w, l.file)
	}
	l.out = log.New(w, "", 0)
}

// EnableFileLogging adds the default log file as an output.
func (l *AppLogger) EnableFileLogging() error {
	logDir := GetLogDir()
	if logDir == "" {
		return fmt.Errorf("cannot determine log directory")
	}
	return l.EnableFileLoggingAt(filepath.Join(logDir, LogFileName))
}

// EnableFileLoggingAt adds logPath as an output. Symlinked directories and
// files are refused.
func (l *AppLogger) EnableFileLoggingAt(logPath string) error {
	logDir := filepath.Dir(logPath)
	if isSymlink(logDir) {
		return fmt.Errorf("%w: log directory %s is a symlink", ErrPermissionDenied, logDir)
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return WrapError(err, "failed to create log directory")
	}
	if isSymlink(logPath) {
		return fmt.Errorf("%w: log file %s is a symlink", ErrPermissionDenied, logPath)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    megabytes(l.maxFileSize),
		MaxBackups: l.maxBackups,
		Compress:   true,
	}
	l.setConsole(l.console)
	return nil
}

// isSymlink reports whether path is a symbolic link. A missing path is not.
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// megabytes converts a byte limit to lumberjack's MB unit, rounding up.
func megabytes(size int64) int {
	const mb = 1024 * 1024
	if size <= 0 {
		return defaultMaxFileSize / mb
	}
	return int((size + mb - 1) / mb)
}

// GetLogDir returns the log directory path.
func GetLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", ConfigDirName, "logs")
}

// log writes "timestamp [LEVEL] file:line: message". depth is the number of
// frames between the caller of interest and this function.
func (l *AppLogger) log(depth int, level LogLevel, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(depth); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	l.out.Printf("%s [%s] %s: %s", time.Now().Format("2006/01/02 15:04:05"), level, caller, msg)
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.log(2, LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.log(2, LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, args ...interface{}) {
	l.log(2, LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.log(2, LevelError, msg, args...)
}

// Shorthand functions for the default logger. They report their own caller.

// LogDebug logs a debug message to the default logger.
func LogDebug(msg string, args ...interface{}) {
	GetLogger().log(2, LevelDebug, msg, args...)
}

// LogInfo logs an info message to the default logger.
func LogInfo(msg string, args ...interface{}) {
	GetLogger().log(2, LevelInfo, msg, args...)
}

// LogWarn logs a warning message to the default logger.
func LogWarn(msg string, args ...interface{}) {
	GetLogger().log(2, LevelWarn, msg, args...)
}

// LogError logs an error message to the default logger.
func LogError(msg string, args ...interface{}) {
	GetLogger().log(2, LevelError, msg, args...)
}

// Close stops file output. The console stream stays usable.
func (l *AppLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.setConsole(l.console)
	return err
}

// CloseLogger closes the default logger.
func CloseLogger() error {
	return GetLogger().Close()
}

// Rotate starts a new log file now, if file output is enabled.
func (l *AppLogger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	return l.file.Rotate()
}
