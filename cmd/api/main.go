// Package main is the entrypoint for the ProjectDesk API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/cache"
	"github.com/projectdesk/projectdesk/internal/config"
	"github.com/projectdesk/projectdesk/internal/handler"
	"github.com/projectdesk/projectdesk/internal/middleware"
	"github.com/projectdesk/projectdesk/internal/repository"
	"github.com/projectdesk/projectdesk/internal/server"
	"github.com/projectdesk/projectdesk/internal/service"
	"github.com/projectdesk/projectdesk/internal/token"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Token plumbing
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL)
	blacklist := cache.NewBlacklist(cacheClient, codec, logger)

	// Services
	authenticator := auth.NewAuthenticator(repo, codec, blacklist, logger)
	userService := service.NewUserService(repo, blacklist, logger)
	projectService := service.NewProjectService(repo, cacheClient, logger)
	studentService := service.NewStudentService(repo, cacheClient, logger)
	taskService := service.NewTaskService(repo, cacheClient, logger)

	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("admin bootstrap failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authenticator, userService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	r := setupRouter(routerDeps{
		base:     h,
		health:   healthHandler,
		auth:     authHandler,
		users:    userHandler,
		projects: projectHandler,
		students: studentHandler,
		tasks:    taskHandler,
		repo:     repo,
		cache:    cacheClient,
		codec:    codec,
		revoked:  blacklist,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base     *handler.Handler
	health   *handler.HealthHandler
	auth     *handler.AuthHandler
	users    *handler.UserHandler
	projects *handler.ProjectHandler
	students *handler.StudentHandler
	tasks    *handler.TaskHandler
	repo     *repository.Repository
	cache    *cache.Cache
	codec    *token.Codec
	revoked  *cache.Blacklist
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	if origins := deps.cfg.GetCORSAllowedOrigins(); origins != nil {
		corsCfg.AllowedOrigins = origins
	}
	r.Use(middleware.CORS(corsCfg))

	// Identity is resolved once per request; routes decide whether an
	// anonymous caller is acceptable.
	r.Use(middleware.Authenticate(middleware.AuthConfig{
		Logger:    deps.logger,
		Codec:     deps.codec,
		Blacklist: deps.revoked,
		Users:     deps.repo,
	}))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	loginRateLimit := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:        deps.logger,
		Cache:         deps.cache,
		Enabled:       deps.cfg.RateLimitLoginEnabled,
		RatePerMinute: deps.cfg.RateLimitLoginPerMin,
		Burst:         deps.cfg.RateLimitLoginBurst,
	})

	// Public auth endpoints
	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginRateLimit).Post("/login", deps.auth.Login)
		r.Post("/register", deps.auth.Register)
		r.Post("/logout", deps.auth.Logout)
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Delete("/api/users/me", deps.users.DeleteMe)

		r.Route("/api/projects", func(r chi.Router) {
			r.Get("/", deps.projects.List)
			r.Post("/", deps.projects.Create)
			r.Get("/{id}", deps.projects.Get)
			r.Put("/{id}", deps.projects.Update)
			r.Delete("/{id}", deps.projects.Delete)
		})

		r.Route("/api/students", func(r chi.Router) {
			r.Get("/", deps.students.List)
			r.Post("/", deps.students.Create)
			r.Get("/search/code/{code}", deps.students.SearchByCode)
			r.Get("/search/name", deps.students.SearchByName)
			r.Get("/{id}", deps.students.Get)
			r.Put("/{id}", deps.students.Update)
			r.Delete("/{id}", deps.students.Delete)
		})

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", deps.tasks.List)
			r.Post("/", deps.tasks.Create)
			r.Get("/search/code/{code}", deps.tasks.SearchByCode)
			r.Get("/search/title", deps.tasks.SearchByTitle)
			r.Get("/{id}", deps.tasks.Get)
			r.Put("/{id}", deps.tasks.Update)
			r.Delete("/{id}", deps.tasks.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
