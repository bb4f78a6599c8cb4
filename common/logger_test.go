package common

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
		{LogLevel(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppLogger_SetLevel(t *testing.T) {
	logger := newAppLogger(io.Discard)

	logger.SetLevel(LevelDebug)
	if logger.level != LevelDebug {
		t.Errorf("SetLevel did not update level, got %v, want %v", logger.level, LevelDebug)
	}
}

func TestAppLogger_LogFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newAppLogger(&buf)
	logger.SetLevel(LevelWarn)

	// Debug and Info should be filtered
	logger.Debug("debug message")
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("Debug/Info messages should be filtered when level is Warn")
	}

	// Warn and Error should pass
	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Error("Warn message should be logged")
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(buf.String(), "[ERROR]") {
		t.Error("Error message should be logged")
	}
}

func TestAppLogger_LogFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := newAppLogger(&buf)

	logger.Info("Backup %s finished", "win11-dark")

	output := buf.String()

	// Check timestamp format (YYYY/MM/DD)
	if !strings.HasPrefix(output, time.Now().Format("2006/01/02")) {
		t.Errorf("Log should start with date in YYYY/MM/DD format, got %q", output)
	}

	// Check level and caller
	if !strings.Contains(output, "[INFO] logger_test.go:") {
		t.Errorf("Log should contain level and caller, got %q", output)
	}

	// Check message
	if !strings.Contains(output, ": Backup win11-dark finished") {
		t.Error("Log should contain formatted message")
	}

	if !strings.HasSuffix(output, "\n") {
		t.Error("Log line should end with a newline")
	}
}

func TestAppLogger_MessageWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := newAppLogger(&buf)

	logger.Info("100% done")
	if !strings.Contains(buf.String(), "100% done") {
		t.Errorf("Message without args should be logged verbatim, got %q", buf.String())
	}
}

func TestAppLogger_SetOutputKeepsFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	logger := newAppLogger(io.Discard)
	if err := logger.EnableFileLoggingAt(logFile); err != nil {
		t.Fatalf("EnableFileLoggingAt() error = %v", err)
	}
	defer logger.Close()

	var console bytes.Buffer
	logger.SetOutput(&console)
	logger.Info("to both")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to both") {
		t.Error("File should still receive log lines after SetOutput")
	}
	if !strings.Contains(console.String(), "to both") {
		t.Error("New console should receive log lines")
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	logger.Info("console only")
	if !strings.Contains(console.String(), "console only") {
		t.Error("Console should stay usable after Close")
	}

	data, err = os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "console only") {
		t.Error("File should not receive log lines after Close")
	}
}

func TestDefaultLogConfig(t *testing.T) {
	// Test default values
	if defaultMaxFileSize != 5*1024*1024 {
		t.Errorf("defaultMaxFileSize = %v, want 5MB", defaultMaxFileSize)
	}

	if defaultMaxBackups != 5 {
		t.Errorf("defaultMaxBackups = %v, want 5", defaultMaxBackups)
	}

	logger := newAppLogger(io.Discard)
	if logger.level != LevelInfo {
		t.Errorf("default level = %v, want %v", logger.level, LevelInfo)
	}
	if logger.maxFileSize != defaultMaxFileSize {
		t.Errorf("maxFileSize = %v, want %v", logger.maxFileSize, defaultMaxFileSize)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	// Should end with kde-theme-backup
	if !strings.HasSuffix(dir, ConfigDirName) {
		t.Errorf("GetConfigDir() = %v, should end with %v", dir, ConfigDirName)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("GetConfigDir() should create %v", dir)
	}
}

func TestFileExists(t *testing.T) {
	// Test with existing file
	path := filepath.Join(t.TempDir(), "present")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Error("FileExists() should return true for existing file")
	}

	// Test with non-existing file
	if FileExists("/nonexistent/path/to/file") {
		t.Error("FileExists() should return false for non-existing file")
	}
}

func TestWrapError(t *testing.T) {
	originalErr := ErrCommandNotFound
	wrapped := WrapError(originalErr, "additional context")

	if wrapped == nil {
		t.Fatal("WrapError should return non-nil error")
	}

	if !strings.Contains(wrapped.Error(), "additional context") {
		t.Error("WrapError should include additional context")
	}

	if !strings.Contains(wrapped.Error(), originalErr.Error()) {
		t.Error("WrapError should include original error message")
	}

	if !errors.Is(wrapped, originalErr) {
		t.Error("WrapError should keep the original error in the chain")
	}

	// Test with nil error
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}
}

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "test.log")

	logger := newAppLogger(io.Discard)
	logger.maxFileSize = 512 * 1024
	logger.maxBackups = 2
	if err := logger.EnableFileLoggingAt(logFile); err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	// Compression runs in a background goroutine; keep the test synchronous.
	logger.file.Compress = false

	logger.Info("before rotation")
	if err := logger.Rotate(); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	logger.Info("after rotation")

	// Check that backup was created
	matches, _ := filepath.Glob(filepath.Join(tempDir, "test-*.log"))
	if len(matches) != 1 {
		t.Errorf("Rotated files = %v, want exactly one", matches)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "after rotation") {
		t.Error("Current log file should receive new lines")
	}
	if strings.Contains(string(data), "before rotation") {
		t.Error("Current log file should not contain lines written before rotation")
	}
}

func TestEnableFileLoggingRejectsSymlink(t *testing.T) {
	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "real.log")
	if err := os.WriteFile(target, nil, 0600); err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(tempDir, "link.log")
	if err := os.Symlink(target, link); err != nil {
		t.Skip("symlinks not supported:", err)
	}

	logger := newAppLogger(io.Discard)
	err := logger.EnableFileLoggingAt(link)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("EnableFileLoggingAt(symlink) error = %v, want %v", err, ErrPermissionDenied)
	}
}

func TestMegabytes(t *testing.T) {
	tests := []struct {
		in   int64
		want int
	}{
		{0, 5},
		{1, 1},
		{1024 * 1024, 1},
		{1024*1024 + 1, 2},
		{5 * 1024 * 1024, 5},
	}
	for _, tt := range tests {
		if got := megabytes(tt.in); got != tt.want {
			t.Errorf("megabytes(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in, want string
	}{
		{"~/kde-theme-backups", filepath.Join(home, "kde-theme-backups")},
		{"/abs/path", "/abs/path"},
		{"~", "~"},
		{"relative/dir", "relative/dir"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
