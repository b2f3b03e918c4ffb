// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the page templates and executes them with the
// shared layout data: signed-in user, unread badge, flash and breadcrumbs.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/dizistars/dizistars/internal/i18n"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/uikit"
)

// Session keys of the flash message.
const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// blankLinesRegex matches runs of blank lines left behind by template actions.
var blankLinesRegex = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)

// UnreadCounter returns the number of unread notifications for the nav badge.
type UnreadCounter func(ctx context.Context, userID int64) (int, error)

// Renderer handles template rendering with caching.
type Renderer struct {
	templatesFS    fs.FS
	sessionManager *scs.SessionManager
	unread         UnreadCounter
	isDev          bool

	mu        sync.RWMutex
	templates map[string]*template.Template
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// Unread fills the nav badge. Optional.
	Unread UnreadCounter
	// IsDev re-parses templates on every render.
	IsDev bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templatesFS:    cfg.TemplatesFS,
		sessionManager: cfg.SessionManager,
		unread:         cfg.Unread,
		isDev:          cfg.IsDev,
	}

	templates, err := r.parseTemplates()
	if err != nil {
		return nil, err
	}
	r.templates = templates
	return r, nil
}

// layoutSet describes one page directory and the layouts its pages extend.
type layoutSet struct {
	dir     string
	layouts []string
}

var layoutSets = []layoutSet{
	{dir: "pages", layouts: []string{"layouts/base.html"}},
	{dir: "auth", layouts: []string{"layouts/base.html"}},
	{dir: "admin", layouts: []string{"layouts/base.html", "layouts/admin.html"}},
}

// parseTemplates parses every page as base layout, section layout, partials, page.
func (r *Renderer) parseTemplates() (map[string]*template.Template, error) {
	partials, err := templateFiles(r.templatesFS, "partials")
	if err != nil {
		return nil, fmt.Errorf("getting partials: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, set := range layoutSets {
		pages, err := templateFiles(r.templatesFS, set.dir)
		if err != nil {
			return nil, fmt.Errorf("getting %s templates: %w", set.dir, err)
		}
		for _, tmplPath := range pages {
			name := set.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := append([]string{}, set.layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(r.templatesFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", name, err)
			}
			templates[name] = tmpl
		}
	}
	return templates, nil
}

// templateFiles returns all .html files in a directory.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// TemplateFuncs returns the generic uikit helpers plus role checks.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()
	funcs["isAdmin"] = func(user any) bool {
		return getUserRole(user) == model.RoleAdmin
	}
	funcs["isEditor"] = func(user any) bool {
		role := getUserRole(user)
		return role == model.RoleAdmin || role == model.RoleEditor
	}
	funcs["userRole"] = getUserRole
	funcs["T"] = func(lang, key string, args ...any) string {
		return i18n.T(lang, key, args...)
	}
	funcs["languages"] = func() []string { return i18n.SupportedLanguages }
	funcs["tabURL"] = func(base, tab string) string {
		return base + "?tab=" + tab
	}
	return funcs
}

// getUserRole extracts the Role field from a user struct or pointer.
func getUserRole(user any) string {
	if user == nil {
		return ""
	}
	v := reflect.ValueOf(user)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}
	f := v.FieldByName("Role")
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Description string
	Data        any
	User        *model.User
	UnreadCount int
	Path        string
	Flash       string
	FlashType   string
	Breadcrumbs []uikit.Breadcrumb
	CurrentYear int
	Lang        string
}

// Render renders a template with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}

	r.fill(w, req, &data)

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n")))
	return nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.isDev && r.templatesFS != nil {
		templates, err := r.parseTemplates()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.templates = templates
		r.mu.Unlock()
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	return tmpl, nil
}

// fill adds the layout data every page needs.
func (r *Renderer) fill(w http.ResponseWriter, req *http.Request, data *TemplateData) {
	data.CurrentYear = time.Now().Year()
	data.Path = req.URL.Path
	if data.Lang == "" {
		data.Lang = middleware.GetLanguage(req)
	}

	if data.User == nil {
		data.User = middleware.GetUser(req)
	}
	if data.User != nil && r.unread != nil {
		n, err := r.unread(req.Context(), data.User.ID)
		if err != nil {
			slog.Warn("loading unread count failed", "user_id", data.User.ID, "error", err)
		}
		data.UnreadCount = n
	}

	if r.sessionManager != nil && data.Flash == "" {
		if flash := r.sessionManager.PopString(req.Context(), flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), flashTypeKey)
		}
	}
	if msg := middleware.DemoBlockedMessage(w, req); msg != "" && data.Flash == "" {
		data.Flash = msg
		data.FlashType = FlashError
	}
	if data.Flash != "" && data.FlashType == "" {
		data.FlashType = FlashInfo
	}
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), flashKey, message)
		r.sessionManager.Put(req.Context(), flashTypeKey, flashType)
	}
}
