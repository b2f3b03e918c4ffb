// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n translates the site chrome into the visitor's language.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// DefaultLanguage is used when nothing better matches.
const DefaultLanguage = "tr"

// SupportedLanguages lists the UI languages, default first.
var SupportedLanguages = []string{"tr", "en"}

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds all translations for all supported languages.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	matcher      language.Matcher
	supported    []language.Tag
	logger       *slog.Logger
}

var (
	catalog  *Catalog
	initOnce sync.Once
	initErr  error
)

// Init loads the embedded catalogs. Later calls are no-ops.
func Init(logger *slog.Logger) error {
	initOnce.Do(func() {
		c := &Catalog{
			translations: make(map[string]map[string]string),
			logger:       logger,
		}
		for _, lang := range SupportedLanguages {
			c.supported = append(c.supported, language.MustParse(lang))
			if err := c.loadLanguage(lang); err != nil {
				initErr = fmt.Errorf("loading language %s: %w", lang, err)
				return
			}
		}
		c.matcher = language.NewMatcher(c.supported)
		catalog = c
	})
	return initErr
}

func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.translations[lang] = make(map[string]string, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}
	if c.logger != nil {
		c.logger.Debug("loaded translations", "language", lang, "count", len(msgFile.Messages))
	}
	return nil
}

// T translates key into lang, falling back to Turkish and then to the key
// itself. args are applied with fmt.Sprintf.
func T(lang, key string, args ...any) string {
	translation := lookup(lang, key)
	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

func lookup(lang, key string) string {
	if catalog == nil {
		return key
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	if msg, ok := catalog.translations[lang][key]; ok {
		return msg
	}
	if msg, ok := catalog.translations[DefaultLanguage][key]; ok {
		if catalog.logger != nil && lang != DefaultLanguage {
			catalog.logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
		return msg
	}
	return key
}

// MatchLanguage picks the supported language closest to an Accept-Language
// header or a bare language code.
func MatchLanguage(acceptLang string) string {
	if catalog == nil || strings.TrimSpace(acceptLang) == "" {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return DefaultLanguage
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := catalog.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(SupportedLanguages) {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

// IsSupported reports whether lang is a UI language.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}

// TranslationCount returns the number of translations loaded for a language.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	return len(catalog.translations[lang])
}
