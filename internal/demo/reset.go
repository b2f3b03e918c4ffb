// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package demo wipes a public demo deployment back to the seeded catalogue.
package demo

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	stampFile = ".last_demo_reset"

	// DefaultInterval is how long demo edits survive.
	DefaultInterval = 24 * time.Hour
)

// Reset removes the database and the uploaded images once Interval has
// passed since the previous reset. It runs at startup, before the database
// is opened, so the next seed starts from an empty catalogue.
type Reset struct {
	DBPath     string
	StorageDir string
	// StampDir holds the last reset time; the database directory is used.
	StampDir string
	Interval time.Duration

	now func() time.Time
}

func (r Reset) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r Reset) interval() time.Duration {
	if r.Interval <= 0 {
		return DefaultInterval
	}
	return r.Interval
}

func (r Reset) stampPath() string {
	return filepath.Join(r.StampDir, stampFile)
}

// LastReset returns the time of the previous reset. ok is false when the
// stamp is missing or unreadable.
func (r Reset) LastReset() (last time.Time, ok bool, err error) {
	data, err := os.ReadFile(r.stampPath())
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading demo reset stamp: %w", err)
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(sec, 0).UTC(), true, nil
}

// RunIfDue resets when no reset happened within Interval and reports
// whether it did.
func (r Reset) RunIfDue() (bool, error) {
	last, ok, err := r.LastReset()
	if err != nil {
		return false, err
	}
	if ok && r.clock().Sub(last) < r.interval() {
		slog.Info("demo data is fresh",
			"last_reset", last.Format(time.RFC3339),
			"next_reset", last.Add(r.interval()).Format(time.RFC3339),
		)
		return false, nil
	}
	return true, r.Run()
}

// Run deletes the database with its WAL files, empties the storage
// buckets and records the reset time.
func (r Reset) Run() error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(r.DBPath + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", r.DBPath+suffix, err)
		}
	}

	removed, err := emptyDir(r.StorageDir)
	if err != nil {
		return fmt.Errorf("emptying storage: %w", err)
	}

	if err := os.MkdirAll(r.StampDir, 0o755); err != nil {
		return fmt.Errorf("creating stamp directory: %w", err)
	}
	stamp := strconv.FormatInt(r.clock().UTC().Unix(), 10)
	if err := os.WriteFile(r.stampPath(), []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("writing demo reset stamp: %w", err)
	}

	slog.Info("demo data reset", "db", r.DBPath, "storage_entries_removed", removed)
	return nil
}

// emptyDir removes everything inside dir and keeps dir. A missing dir is empty.
func emptyDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}
