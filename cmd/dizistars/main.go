// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package main is the entry point for the DiziStars web application.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/dizistars/dizistars/internal/auth"
	"github.com/dizistars/dizistars/internal/cache"
	"github.com/dizistars/dizistars/internal/config"
	"github.com/dizistars/dizistars/internal/demo"
	"github.com/dizistars/dizistars/internal/features"
	"github.com/dizistars/dizistars/internal/geoip"
	"github.com/dizistars/dizistars/internal/handler"
	"github.com/dizistars/dizistars/internal/handler/api"
	"github.com/dizistars/dizistars/internal/i18n"
	"github.com/dizistars/dizistars/internal/imaging"
	"github.com/dizistars/dizistars/internal/logging"
	"github.com/dizistars/dizistars/internal/middleware"
	"github.com/dizistars/dizistars/internal/render"
	"github.com/dizistars/dizistars/internal/scheduler"
	"github.com/dizistars/dizistars/internal/seed"
	"github.com/dizistars/dizistars/internal/service"
	"github.com/dizistars/dizistars/internal/session"
	"github.com/dizistars/dizistars/internal/storage"
	"github.com/dizistars/dizistars/internal/store"
	"github.com/dizistars/dizistars/internal/upload"
	"github.com/dizistars/dizistars/internal/version"
	"github.com/dizistars/dizistars/web"
)

// JPEG quality of re-encoded uploads.
const uploadQuality = 85

// maxTrackedIPs bounds the rate limiter maps before they are cleared.
const maxTrackedIPs = 10000

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "DiziStars - Turkish TV star fan platform\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_BACKEND_URL        Public base URL of image storage (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_ANON_KEY           Key clients send in the apikey header (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_PUBLIC_URL         Site URL for links and the sitemap (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_DB_PATH            SQLite database path (default: ./data/dizistars.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_STORAGE_DIR        Directory of the storage buckets (default: ./storage)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_AUTH_MODE          Authentication: db|mock (default: db, mock is development only)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_REDIS_URL          Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_GEOIP_DB_PATH      GeoLite2-Country database for audit events (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_DO_SEED            Seed demo stars and news into an empty database\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIZI_DEMO_MODE          Block destructive admin actions and reset data daily\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("dizistars %s (built: %s)\n", info, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Demo deployments start from the seeded catalogue once a day.
	if cfg.DemoMode {
		reset := demo.Reset{DBPath: cfg.DBPath, StorageDir: cfg.StorageDir, StampDir: dbDir}
		if _, err := reset.RunIfDue(); err != nil {
			return fmt.Errorf("resetting demo data: %w", err)
		}
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	ctx := context.Background()
	applied, err := store.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready", "migrations_applied", applied)

	// Mirror WARN and ERROR records into the event log.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	if err := seed.Admin(ctx, db); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if cfg.DoSeed || cfg.DemoMode || cfg.AuthMode == config.AuthModeMock {
		if err := seed.Demo(ctx, db); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	appCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}

	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("GeoIP disabled", "error", err)
		} else {
			slog.Info("GeoIP database loaded", "path", cfg.GeoIPDBPath)
		}
	}
	defer func() { _ = geo.Close() }()

	// Services
	images := service.ImagePolicy{StorageBase: cfg.BackendURL, RemoteHosts: cfg.ImageRemoteHosts}
	eventService := service.NewEventService(db)
	eventService.SetCountryLookup(geo)
	notifier := service.NewNotificationService(db)
	starService := service.NewStarService(db, appCache, images)
	newsService := service.NewNewsService(db, appCache, images, notifier)
	commentService := service.NewCommentService(db, notifier)
	userService := service.NewUserService(db)

	userFeatures := features.New(features.Backend{
		Favorites:     service.NewFavoriteService(db),
		Notifications: notifier,
		Preferences:   service.NewPreferenceService(db),
		Comments:      commentService,
	}, appCache)
	notifier.OnCreate(userFeatures.Invalidate)
	notifier.OnPurge(userFeatures.InvalidateAll)

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	authenticator, err := newAuthenticator(ctx, cfg, db, sessionManager, loginProtection, eventService)
	if err != nil {
		return fmt.Errorf("initializing authentication: %w", err)
	}

	// Image storage
	objectStore, err := storage.NewLocal(cfg.StorageDir, cfg.BackendURL)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	uploader := upload.New(objectStore, imaging.NewProcessor(uploadQuality), images, cfg.MaxUploadMB)
	slog.Info("storage initialized", "dir", cfg.StorageDir, "max_upload_mb", cfg.MaxUploadMB)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		Unread:         userFeatures.UnreadCount,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)

	// Scheduler
	sched := scheduler.New(logger)
	jobs := scheduler.Jobs(scheduler.Deps{
		News:          newsService,
		Events:        eventService,
		Notifications: notifier,
		Resets:        store.New(db),
		GeoIP:         geo,
		Logger:        logger,
	})
	jobs = append(jobs, scheduler.Job{
		Name:        "prune-rate-limiters",
		Description: "Clears per-IP rate limiters and expired account lockouts",
		Schedule:    "*/10 * * * *",
		Run: func(context.Context) error {
			publicRateLimiter.Prune(maxTrackedIPs)
			apiRateLimiter.Prune(maxTrackedIPs)
			if n := loginProtection.Prune(maxTrackedIPs); n > 0 {
				slog.Debug("pruned login failure records", "accounts", n)
			}
			return nil
		},
	})
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("registering job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	demoGuard := middleware.Demo{Enabled: cfg.DemoMode}

	// Handlers
	homeHandler := handler.NewHomeHandler(renderer, starService, newsService, appCache, cacheTTL)
	starsHandler := handler.NewStarsHandler(renderer, starService, newsService, commentService, userFeatures)
	newsHandler := handler.NewNewsHandler(renderer, newsService, commentService)
	authHandler := handler.NewAuthHandler(renderer, authenticator)
	profileHandler := handler.NewProfileHandler(renderer, userService, userFeatures, uploader, demoGuard)
	interactionsHandler := handler.NewInteractionsHandler(renderer, userFeatures, starService)
	adminHandler := handler.NewAdminHandler(renderer, starService, newsService, userService, commentService, eventService)
	adminStarsHandler := handler.NewAdminStarsHandler(renderer, starService, eventService, uploader, demoGuard)
	adminNewsHandler := handler.NewAdminNewsHandler(renderer, newsService, starService, eventService, uploader, demoGuard, cfg.Location())
	schedulerHandler := handler.NewSchedulerHandler(renderer, sched, eventService)
	eventsHandler := handler.NewEventsHandler(renderer, eventService)
	healthHandler := handler.NewHealthHandler(db, appCache, cfg.StorageDir, cfg.AnonKey)
	seoHandler := handler.NewSEOHandler(cfg.PublicURL, cfg.DemoMode || cfg.IsDevelopment(), starService, newsService, appCache, cacheTTL)
	apiHandler := api.NewHandler(starService, newsService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(chimw.StripSlashes)

	imageOrigins := append([]string{cfg.BackendURL}, cfg.ImageRemoteHosts...)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), imageOrigins, "/api/", service.PublicObjectPath)))
	r.Use(middleware.RequestMeta)

	// Health checks sit outside the session so probes never create one.
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.LoadUser(sessionManager, authenticator))
		r.Get("/health", healthHandler.Health)
	})
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Get("/robots.txt", seoHandler.Robots)
	r.Get("/sitemap.xml", seoHandler.Sitemap)

	// Read-only JSON API, authenticated by the apikey header.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(middleware.AnonKeyAuth(cfg.AnonKey))
		apiHandler.Routes(r)
	})
	slog.Info("REST API v1 mounted at /api/v1")

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", middleware.StaticCache(365 * 24 * time.Hour)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))
	r.Handle(service.PublicObjectPath+"{bucket}/*", middleware.StaticCache(7 * 24 * time.Hour)(objectStore.Handler()))

	// HTML site
	csrf := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.PublicURL))
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrf)
		r.Use(middleware.LoadUser(sessionManager, authenticator))
		r.Use(middleware.Language(userFeatures))

		r.Get("/", homeHandler.Home)
		r.Get("/stars", starsHandler.List)
		r.Get("/stars/{id}", starsHandler.Profile)
		r.Get("/stars/{id}/news", starsHandler.News)
		r.Get("/news", newsHandler.List)
		r.Get("/news/{slug}", newsHandler.Detail)

		registerAuthRoutes(r, authHandler, publicRateLimiter, loginProtection)

		// Signed-in fans
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.NoStore)

			r.Get("/profile", profileHandler.Show)
			r.Post("/profile", profileHandler.Update)
			r.Post("/profile/avatar", profileHandler.UploadAvatar)
			r.Post("/profile/preferences", profileHandler.UpdatePreferences)
			r.Post("/profile/notifications/read-all", profileHandler.MarkAllNotificationsRead)
			r.Post("/profile/notifications/{id}/read", profileHandler.MarkNotificationRead)
			r.Post("/profile/notifications/{id}/delete", profileHandler.DeleteNotification)

			r.Post("/favorites", interactionsHandler.AddFavorite)
			r.Post("/favorites/{starID}/delete", interactionsHandler.RemoveFavorite)
			r.Post("/comments", interactionsHandler.AddComment)
			r.Post("/comments/{id}/delete", interactionsHandler.DeleteComment)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.RequireEditor(eventService))

			r.Get("/", adminHandler.Dashboard)
			r.With(demoGuard.Block(middleware.RestrictionDeleteComment)).Post("/comments/{id}/delete", adminHandler.DeleteComment)
			r.Post("/comments/{id}/approve", adminHandler.ApproveComment)
			r.Post("/comments/{id}/reject", adminHandler.RejectComment)

			r.Route("/stars", func(r chi.Router) {
				r.Use(demoGuard.BlockDelete(middleware.RestrictionDeleteStar))
				r.Get("/new", adminStarsHandler.New)
				r.Post("/", adminStarsHandler.Create)
				r.Get("/{id}/edit", adminStarsHandler.Edit)
				r.Post("/{id}", adminStarsHandler.Update)
				r.Post("/{id}/image", adminStarsHandler.UploadProfileImage)
				r.Post("/{id}/gallery", adminStarsHandler.UploadGalleryImage)
				r.Post("/{id}/gallery/delete", adminStarsHandler.RemoveGalleryImage)
				r.Post("/{id}/delete", adminStarsHandler.Delete)
			})

			r.Route("/news", func(r chi.Router) {
				r.Use(demoGuard.BlockDelete(middleware.RestrictionDeleteNews))
				r.Get("/new", adminNewsHandler.New)
				r.Post("/", adminNewsHandler.Create)
				r.Get("/{id}/edit", adminNewsHandler.Edit)
				r.Post("/{id}", adminNewsHandler.Update)
				r.Post("/{id}/cover", adminNewsHandler.UploadCover)
				r.Post("/{id}/publish", adminNewsHandler.Publish)
				r.Post("/{id}/archive", adminNewsHandler.Archive)
				r.Post("/{id}/schedule", adminNewsHandler.Schedule)
				r.Post("/{id}/delete", adminNewsHandler.Delete)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(eventService))
				r.With(demoGuard.Block(middleware.RestrictionChangeRole)).Post("/users/{id}/role", adminHandler.UpdateUserRole)
				r.Get("/jobs", schedulerHandler.List)
				r.With(demoGuard.Block(middleware.RestrictionRunJobs)).Post("/jobs/{name}/run", schedulerHandler.TriggerNow)
				r.Get("/events", eventsHandler.List)
			})
		})

		r.NotFound(handler.NotFound(renderer))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newAuthenticator returns the in-memory authenticator in mock mode and the
// database one otherwise. Mock accounts take the ids of their user rows.
func newAuthenticator(ctx context.Context, cfg *config.Config, db *sql.DB, sm *scs.SessionManager, guard auth.Guard, events *service.EventService) (auth.Authenticator, error) {
	if cfg.AuthMode == config.AuthModeMock {
		accounts := make([]auth.MemoryAccount, 0, len(seed.DemoAccounts))
		for _, a := range seed.DemoAccounts {
			accounts = append(accounts, auth.MemoryAccount{Email: a.Email, Password: a.Password, Name: a.Name, Role: a.Role})
		}
		mock := auth.NewMemoryAuthenticator(sm, nil, auth.DefaultMockDelay, accounts...)
		if err := mock.UseDirectory(ctx, auth.NewDBDirectory(db)); err != nil {
			return nil, fmt.Errorf("matching mock accounts to users: %w", err)
		}
		slog.Warn("using in-memory mock authentication", "accounts", len(accounts))
		return mock, nil
	}
	return auth.NewDBAuthenticator(db, sm, auth.DBOptions{
		Guard:     guard,
		Events:    events,
		PublicURL: cfg.PublicURL,
	}), nil
}

// registerAuthRoutes registers the sign-in pages. Form posts share the public
// rate limiter; login posts are also limited per IP and per account.
func registerAuthRoutes(r chi.Router, h *handler.AuthHandler, limiter *middleware.GlobalRateLimiter, lp *middleware.LoginProtection) {
	r.Get("/login", h.LoginForm)
	r.Get("/signup", h.SignupForm)
	r.Get("/forgot-password", h.ForgotPasswordForm)
	r.Get("/reset-password/{token}", h.ResetPasswordForm)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(limiter.HTMLMiddleware())
		r.With(lp.Middleware()).Post("/login", h.Login)
		r.Post("/signup", h.Signup)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password/{token}", h.ResetPassword)
	})
}
