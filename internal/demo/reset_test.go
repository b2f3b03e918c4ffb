// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package demo

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

// demoTree creates a database with WAL files and one uploaded star image.
func demoTree(t *testing.T) Reset {
	t.Helper()
	root := t.TempDir()
	r := Reset{
		DBPath:     filepath.Join(root, "data", "dizistars.db"),
		StorageDir: filepath.Join(root, "storage"),
		StampDir:   filepath.Join(root, "data"),
	}
	mustWrite(t, r.DBPath, "db")
	mustWrite(t, r.DBPath+"-wal", "wal")
	mustWrite(t, filepath.Join(r.StorageDir, "star_images", "1700000000000-hande.jpg"), "img")
	return r
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertWiped(t *testing.T, r Reset) {
	t.Helper()
	for _, p := range []string{r.DBPath, r.DBPath + "-wal"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists", p)
		}
	}
	entries, err := os.ReadDir(r.StorageDir)
	if err != nil {
		t.Fatalf("storage dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("storage has %d entries after reset", len(entries))
	}
}

func TestRunIfDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		stamp     string // "" means no stamp file
		wantReset bool
	}{
		{"first start", "", true},
		{"stale stamp", strconv.FormatInt(now.Add(-25*time.Hour).Unix(), 10), true},
		{"garbled stamp", "yesterday", true},
		{"fresh stamp", strconv.FormatInt(now.Add(-time.Hour).Unix(), 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := demoTree(t)
			r.now = func() time.Time { return now }
			if tt.stamp != "" {
				mustWrite(t, filepath.Join(r.StampDir, stampFile), tt.stamp)
			}

			did, err := r.RunIfDue()
			if err != nil {
				t.Fatalf("RunIfDue() error = %v", err)
			}
			if did != tt.wantReset {
				t.Fatalf("RunIfDue() = %v, want %v", did, tt.wantReset)
			}
			if !tt.wantReset {
				if _, err := os.Stat(r.DBPath); err != nil {
					t.Errorf("database removed without a due reset: %v", err)
				}
				return
			}
			assertWiped(t, r)
			last, ok, err := r.LastReset()
			if err != nil || !ok || !last.Equal(now) {
				t.Errorf("LastReset() = %v, %v, %v; want %v", last, ok, err, now)
			}
		})
	}
}

func TestRunMissingStorage(t *testing.T) {
	root := t.TempDir()
	r := Reset{
		DBPath:     filepath.Join(root, "dizistars.db"),
		StorageDir: filepath.Join(root, "nowhere"),
		StampDir:   filepath.Join(root, "stamps"),
	}
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok, _ := r.LastReset(); !ok {
		t.Error("stamp not written")
	}
}
