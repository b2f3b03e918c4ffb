// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves client IP addresses to countries for the audit log,
// using a MaxMind GeoLite2-Country database when one is configured.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/dizistars/dizistars/internal/util"
)

// CountryLocal is returned for loopback and private addresses.
const CountryLocal = "LOCAL"

// Lookup handles IP to country lookup. The zero value is usable and disabled.
type Lookup struct {
	mu        sync.RWMutex
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
}

type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup creates a disabled lookup. Call Init to load a database.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Init loads the database at dbPath. An empty path leaves lookups disabled.
func (g *Lookup) Init(dbPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dbPath = dbPath
	if dbPath == "" {
		return nil
	}
	return g.loadDatabase()
}

// loadDatabase opens the database unless the file is unchanged since the last load.
// Caller must hold the write lock.
func (g *Lookup) loadDatabase() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		return fmt.Errorf("stat GeoIP database %s: %w", g.dbPath, err)
	}
	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		return fmt.Errorf("opening GeoIP database: %w", err)
	}
	if g.db != nil {
		_ = g.db.Close()
	}
	g.db = db
	g.dbModTime = info.ModTime()
	return nil
}

// Reload reopens the database if the file changed. Called from the scheduler.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}
	return g.loadDatabase()
}

// LookupCountry returns the ISO country code of ip, CountryLocal for private
// addresses, or "" when the country is unknown or lookups are disabled.
func (g *Lookup) LookupCountry(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || util.IsPrivateIP(parsed) {
		return CountryLocal
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.db == nil {
		return ""
	}
	var record geoRecord
	if err := g.db.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// IsEnabled reports whether a database is loaded.
func (g *Lookup) IsEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.db != nil
}

// Close releases the database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}

// countryNames covers the countries most of the audience browses from.
var countryNames = map[string]string{
	"TR":         "Türkiye",
	"AZ":         "Azerbaijan",
	"CY":         "Cyprus",
	"DE":         "Germany",
	"NL":         "Netherlands",
	"AT":         "Austria",
	"FR":         "France",
	"GB":         "United Kingdom",
	"US":         "United States",
	"SA":         "Saudi Arabia",
	"AE":         "United Arab Emirates",
	"EG":         "Egypt",
	"IR":         "Iran",
	"GR":         "Greece",
	"BG":         "Bulgaria",
	"RU":         "Russia",
	"ES":         "Spain",
	"IT":         "Italy",
	"PK":         "Pakistan",
	"BR":         "Brazil",
	"AR":         "Argentina",
	"MX":         "Mexico",
	CountryLocal: "Local network",
}

// CountryName returns a display name for an ISO code, the code itself when
// unlisted, or "Unknown" for an empty code.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	if code == "" {
		return "Unknown"
	}
	return code
}
