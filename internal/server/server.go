// Package server contains the HTTP and WebSocket handlers for the blog's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tecnopronto/internal/availability"
	"tecnopronto/internal/cache"
	"tecnopronto/internal/config"
	"tecnopronto/internal/database"
	"tecnopronto/internal/middleware"
	"tecnopronto/internal/models"
	"tecnopronto/internal/notifications"
	"tecnopronto/internal/repository"
	"tecnopronto/internal/service"
	"tecnopronto/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "tecnopronto-api"

// The HTTP collectors register on the default registry, so they are created once per process.
var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = middleware.InitMetrics(serviceName)
	})
	return prom
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	categoryRepo repository.CategoryRepository
	contactRepo  repository.ContactRepository

	sessions session.Store
	engine   *availability.Engine
	notifier *notifications.Notifier
	hub      *notifications.Hub

	engagementService *service.EngagementService
	postService       *service.PostService
	categoryService   *service.CategoryService
	contactService    *service.ContactService
	authService       *service.AuthService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional: without it caching, revocation and cross-instance fan-out are off.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve time zone: %w", err)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: metrics(),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		contactRepo:    repository.NewContactRepository(db),
		engine:         availability.NewEngine(loc, nil, cfg.AvailabilityLocale),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
	}

	if redisClient != nil {
		server.sessions = session.NewRedisStore(redisClient, cfg.SessionTTL())
	} else {
		server.sessions = session.NewMemoryStore()
	}

	server.engagementService = service.NewEngagementService(server.postRepo, server.commentRepo)
	server.postService = service.NewPostService(server.postRepo, server.commentRepo, server.categoryRepo, cfg.PostsPageSize)
	server.categoryService = service.NewCategoryService(server.categoryRepo)
	server.contactService = service.NewContactService(server.contactRepo, server.engine, cfg.SupportEmail, cfg.SupportNumber)
	server.authService = service.NewAuthService(server.userRepo, redisClient, cfg.JWTSecret)

	return server, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Tecno Pronto API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates the request ID into UserContext for logging
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(middleware.Sessions(middleware.SessionConfig{
		Store:  s.sessions,
		TTL:    s.config.SessionTTL(),
		Secure: s.config.SessionCookieSecure,
	}))
	app.Use(middleware.ResolveActor(s.config.JWTSecret, s.redis, s.authService.Username))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Tecno Pronto Metrics Dashboard",
	}))

	api.Get("/availability", s.GetAvailability)

	contact := api.Group("/contact")
	contact.Get("/", s.GetContactInfo)
	contact.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "contact"), s.SubmitContact)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", middleware.AuthRequired(), s.Logout)
	authGroup.Get("/me", middleware.AuthRequired(), s.Me)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/:slug", s.GetPost)

	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/:slug/posts", s.GetCategoryPosts)

	api.Get("/ws", s.WebSocketUpgrade(), s.WebSocketHandler())

	blog := app.Group("/blog")
	blog.Get("/posts", s.ListPostsPage)
	blog.Get("/category/:slug", s.CategoryPage)
	blog.Post("/create", middleware.AuthRequired(),
		middleware.RateLimit(s.redis, 5, 10*time.Minute, "create_post"), s.CreatePost)
	// Specific /post/:slug/:action routes before the generic detail route
	blog.Post("/post/:slug/comment", middleware.RateLimit(s.redis, 5, time.Minute, "create_comment"), s.AddComment)
	blog.Post("/post/:slug/edit", middleware.AuthRequired(), s.EditPost)
	blog.Get("/post/:slug", s.PostDetail)
	blog.Post("/like/:slug", s.ToggleLike)
	blog.Get("/comment/:id", s.CommentEdit)
	blog.Post("/comment/:id/update", s.UpdateComment)
	blog.Get("/comment-item/:id", s.CommentItem)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so an
// absent client does not fail readiness but an unreachable configured one does.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, wires realtime fan-out and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start realtime wiring", slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down websocket hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
