// Package server contains the HTTP handlers for the community API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"communityhub/internal/bootstrap"
	"communityhub/internal/config"
	"communityhub/internal/events"
	"communityhub/internal/featureflags"
	"communityhub/internal/middleware"
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/service"
	"communityhub/internal/session"
	"communityhub/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	runtime        *bootstrap.Runtime
	store          *storage.Store
	session        *session.Session
	redis          *redis.Client
	publisher      events.Publisher
	featureFlags   *featureflags.Manager
	promMiddleware *fiberprometheus.FiberPrometheus
	eventHub       *events.Hub

	authService     *service.AuthService
	userService     *service.UserService
	postService     *service.PostService
	categoryService *service.CategoryService
	statsService    *service.StatsService

	shutdownFn context.CancelFunc
}

// NewServer initializes the runtime from cfg and builds a server over it.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithRuntime(rt), nil
}

// NewServerWithRuntime creates a Server using an already-initialized runtime.
// Use this in tests or when the caller owns the runtime.
func NewServerWithRuntime(rt *bootstrap.Runtime) *Server {
	users := repository.NewUserRepository(rt.Store)
	posts := repository.NewPostRepository(rt.Store)
	categories := repository.NewCategoryRepository(rt.Store)

	// Events published through Redis reach the hub via WireEvents, so every
	// instance streams every instance's events. Other publishers feed it directly.
	hub := events.NewHub()
	publisher := rt.Publisher
	if _, relayed := rt.Publisher.(*events.RedisPublisher); !relayed {
		publisher = events.Fanout{rt.Publisher, hub}
	}

	return &Server{
		config:         rt.Config,
		runtime:        rt,
		store:          rt.Store,
		session:        rt.Session,
		redis:          rt.Redis,
		publisher:      rt.Publisher,
		eventHub:       hub,
		featureFlags:   rt.Flags,
		promMiddleware: middleware.InitMetrics("communityhub-api"),

		authService:     service.NewAuthService(users, publisher, rt.Flags),
		userService:     service.NewUserService(users, publisher),
		postService:     service.NewPostService(posts, publisher, rt.Flags),
		categoryService: service.NewCategoryService(categories, publisher),
		statsService:    service.NewStatsService(users, posts),
	}
}

// NewApp returns a Fiber app with the shared error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "Community Hub API",
		BodyLimit: 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := models.StatusFor(err)
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, status, err)
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Resolve the session user before ContextMiddleware copies IDs into the context.
	app.Use(middleware.LoadCurrentUser(s.session))
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		MaxAge:       86400,
	}))

	if s.config.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.RateLimitPerMinute,
			Expiration: time.Minute,
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
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/openapi.json", s.OpenAPISpec)
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", middleware.RequireUser, s.Me)

	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Put("/me", middleware.RequireUser, s.UpdateMyProfile)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Post("/:id/follow", middleware.RequireUser, s.FollowUser)
	users.Delete("/:id/follow", middleware.RequireUser, s.UnfollowUser)
	users.Get("/:id", s.GetUserProfile)

	posts := api.Group("/posts")
	posts.Get("/", s.GetFeed)
	posts.Post("/", middleware.RequireUser,
		middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", middleware.RequireUser, s.ToggleLike)
	posts.Post("/:id/comments", middleware.RequireUser,
		middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/share", middleware.RequireUser, s.SharePost)
	posts.Put("/:id", middleware.RequireUser, s.UpdatePost)
	posts.Get("/:id", s.GetPost)

	api.Get("/categories", s.GetCategories)

	api.Get("/ws/events", middleware.RequireUser, s.EventStreamUpgrade, s.EventStreamHandler())

	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.Get("/posts", s.GetModerationQueue)
	admin.Post("/posts/:id/approve", s.ApprovePost)
	admin.Post("/posts/:id/reject", s.RejectPost)
	admin.Delete("/posts/:id", s.DeletePost)
	admin.Post("/users/:id/suspend", s.SuspendUser)
	admin.Post("/users/:id/unsuspend", s.UnsuspendUser)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Post("/categories", s.CreateCategory)
	admin.Put("/categories/:id", s.UpdateCategory)
	admin.Delete("/categories/:id", s.DeleteCategory)
	admin.Get("/stats", s.GetStats)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the slot backend, and Redis when configured, respond.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if _, _, err := s.store.Backend().Get(ctx, s.store.Key(storage.CurrentUserSlot)); err != nil {
		storeStatus = "unhealthy"
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
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"backend": s.store.Backend().Name(),
		"time":    time.Now(),
	})
}

// WireEvents relays events received on the Redis bus to the websocket event
// stream until Shutdown. It does nothing unless events are published through Redis.
func (s *Server) WireEvents(ctx context.Context) error {
	pub, ok := s.publisher.(*events.RedisPublisher)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.shutdownFn = cancel
	return pub.Subscribe(ctx, func(e events.Event) {
		middleware.Logger.DebugContext(ctx, "event received",
			slog.String("subject", string(e.Subject)),
			slog.String("entity_id", e.EntityID),
			slog.String("actor_id", e.ActorID),
		)
		_ = s.eventHub.Publish(ctx, e)
	})
}

// Shutdown stops background work and releases the runtime.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	_ = s.eventHub.Close()
	if s.runtime == nil {
		return nil
	}
	if err := s.runtime.Close(); err != nil {
		middleware.Logger.ErrorContext(ctx, "error closing runtime", slog.String("error", err.Error()))
		return err
	}
	middleware.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
