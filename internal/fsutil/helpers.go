// Package fsutil provides the filesystem and formatting helpers shared by the
// speak packages: the directory ensure-step, the cache location used for
// scratch files, and human-readable sizes and durations for log lines.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Environment variable names used for path resolution.
const (
	envCacheDir = "CACHE_DIR"
)

// Common application directory and path constants.
const (
	appName               = "speak"
	cacheDirName          = "cache"
	dotCache              = ".cache"
	defaultDirPermissions = 0o750
)

// Data size constants.
const (
	byteUnit = 1
	kilobyte = byteUnit * 1024
	megabyte = kilobyte * 1024
	gigabyte = megabyte * 1024
)

// Time and size formatting constants.
const (
	secondsInMinute = 60
	secondsInHour   = 3600
	formatSeconds   = "%.1fs"
	formatMinutes   = "%dm %.1fs"
	formatHours     = "%dh %dm"
	formatGB        = "%.1f GB"
	formatMB        = "%.1f MB"
	formatKB        = "%.1f KB"
	formatBytes     = "%d B"
)

// Error message and format string constants.
const (
	errFmtFailedToCreateDir = "failed to create directory %s: %w"
	errFmtFailedToStatDir   = "failed to check directory %s: %w"
	errFmtNotDirectory      = "%w: %s"
)

// ErrNotDirectory is returned when the path handed to EnsureDir exists but is
// not a directory.
var ErrNotDirectory = errors.New("path exists and is not a directory")

// GetCacheDir returns the application's cache directory, respecting an environment
// variable override and falling back to a standard user-based cache directory.
func GetCacheDir() string {
	if cacheDir := os.Getenv(envCacheDir); cacheDir != "" {
		return cacheDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName, cacheDirName)
	}

	return filepath.Join(homeDir, dotCache, appName)
}

// EnsureDir makes sure a directory exists at path, creating it and any missing
// parents. Calling it on an existing directory is a no-op. Permission and
// quota failures are returned wrapped, so errors.Is(err, fs.ErrPermission)
// still reports them.
func EnsureDir(path string) error {
	info, statErr := os.Stat(path)

	switch {
	case statErr == nil:
		if !info.IsDir() {
			return fmt.Errorf(errFmtNotDirectory, ErrNotDirectory, path)
		}

		return nil
	case errors.Is(statErr, os.ErrNotExist):
		mkdirErr := os.MkdirAll(path, defaultDirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf(errFmtFailedToCreateDir, path, mkdirErr)
		}

		return nil
	default:
		return fmt.Errorf(errFmtFailedToStatDir, path, statErr)
	}
}

// FormatDuration formats a duration in a human-readable string (e.g., "1h 15m", "5m
// 30.5s", "45.2s").
func FormatDuration(duration time.Duration) string {
	seconds := duration.Seconds()

	if seconds < secondsInMinute {
		return fmt.Sprintf(formatSeconds, seconds)
	}

	if seconds < secondsInHour {
		minutes := int(seconds / secondsInMinute)
		remainingSeconds := seconds - float64(minutes*secondsInMinute)

		return fmt.Sprintf(formatMinutes, minutes, remainingSeconds)
	}

	hours := int(seconds / secondsInHour)
	remainingSeconds := seconds - float64(hours*secondsInHour)
	remainingMinutes := int(remainingSeconds / secondsInMinute)

	return fmt.Sprintf(formatHours, hours, remainingMinutes)
}

// FormatFileSize formats a byte count in a human-readable string (e.g., "1.2 GB",
// "500.5 MB").
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= gigabyte:
		return fmt.Sprintf(formatGB, float64(bytes)/gigabyte)
	case bytes >= megabyte:
		return fmt.Sprintf(formatMB, float64(bytes)/megabyte)
	case bytes >= kilobyte:
		return fmt.Sprintf(formatKB, float64(bytes)/kilobyte)
	default:
		return fmt.Sprintf(formatBytes, bytes)
	}
}
