// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"studentconnect/internal/cache"
	"studentconnect/internal/config"
	"studentconnect/internal/database"
	"studentconnect/internal/featureflags"
	"studentconnect/internal/gfg"
	"studentconnect/internal/middleware"
	"studentconnect/internal/models"
	"studentconnect/internal/repository"
	"studentconnect/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	userRepo         repository.UserRepository
	communityRepo    repository.CommunityRepository
	projectRepo      repository.ProjectRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	eventRepo        repository.EventRepository
	tutorialRepo     repository.TutorialRepository
	messageRepo      repository.MessageRepository
	skillRepo        repository.SkillRepository
	notificationRepo repository.NotificationRepository

	userService      *service.UserService
	communityService *service.CommunityService
	projectService   *service.ProjectService
	postService      *service.PostService
	commentService   *service.CommentService
	eventService     *service.EventService
	tutorialService  *service.TutorialService
	messageService   *service.MessageService
	skillService     *service.SkillService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   middleware.InitMetrics("studentconnect-api"),
		featureFlags:     featureflags.NewManager(cfg.FeatureFlags),
		userRepo:         repository.NewUserRepository(db),
		communityRepo:    repository.NewCommunityRepository(db),
		projectRepo:      repository.NewProjectRepository(db),
		postRepo:         repository.NewPostRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		eventRepo:        repository.NewEventRepository(db),
		tutorialRepo:     repository.NewTutorialRepository(db),
		messageRepo:      repository.NewMessageRepository(db),
		skillRepo:        repository.NewSkillRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
	}

	scraper, err := gfg.NewScraper(cfg.GfGBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GFG_BASE_URL: %w", err)
	}

	server.userService = service.NewUserService(server.userRepo)
	server.communityService = service.NewCommunityService(server.communityRepo, server.isAdminByUserID)
	server.projectService = service.NewProjectService(server.projectRepo, server.notificationRepo, server.isAdminByUserID)
	server.postService = service.NewPostService(server.postRepo, server.communityRepo, server.isAdminByUserID)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, server.isAdminByUserID)
	server.eventService = service.NewEventService(server.eventRepo, server.notificationRepo, server.isAdminByUserID)
	server.tutorialService = service.NewTutorialService(server.tutorialRepo, scraper, server.featureFlags, server.isAdminByUserID)
	server.messageService = service.NewMessageService(server.messageRepo, server.userRepo)
	server.skillService = service.NewSkillService(server.skillRepo, server.userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate request, trace and user IDs
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "StudentConnect Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Public community routes
	publicCommunities := api.Group("/communities")
	publicCommunities.Get("/", s.GetCommunities)
	publicCommunities.Get("/featured", s.GetFeaturedCommunities)
	publicCommunities.Get("/stats", s.GetCommunityStats)
	publicCommunities.Get("/:id/members", s.GetCommunityMembers)
	publicCommunities.Get("/:id", s.GetCommunity)

	// Public project routes
	publicProjects := api.Group("/projects")
	publicProjects.Get("/", s.GetProjects)
	publicProjects.Get("/featured", s.GetFeaturedProjects)
	publicProjects.Get("/stats", s.GetProjectStats)
	publicProjects.Get("/types", s.GetProjectTypes)
	publicProjects.Get("/technologies", s.GetProjectTechnologies)
	publicProjects.Get("/:id/roles", s.GetProjectRoles)
	publicProjects.Get("/:id/members", s.GetProjectMembers)
	publicProjects.Get("/:id", s.GetProject)

	// Public post routes
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Get("/:id", s.GetPost)

	// Public event routes
	publicEvents := api.Group("/events")
	publicEvents.Get("/", s.GetEvents)
	publicEvents.Get("/upcoming", s.GetUpcomingEvents)
	publicEvents.Get("/featured", s.GetFeaturedEvents)
	publicEvents.Get("/stats", s.GetEventStats)
	publicEvents.Get("/:id/attendees", s.GetEventAttendees)
	publicEvents.Get("/:id", s.GetEvent)

	// Public tutorial routes
	publicTutorials := api.Group("/tutorials")
	publicTutorials.Get("/", s.GetTutorials)
	publicTutorials.Get("/popular", s.GetPopularTutorials)
	publicTutorials.Get("/recent", s.GetRecentTutorials)
	publicTutorials.Get("/categories", s.GetTutorialCategories)
	publicTutorials.Get("/stats", s.GetTutorialStats)
	publicTutorials.Get("/:id", s.GetTutorial)

	// Public skill routes
	publicSkills := api.Group("/skills")
	publicSkills.Get("/", s.GetSkillCatalog)
	publicSkills.Get("/categories", s.GetSkillCategories)
	publicSkills.Get("/popular", s.GetPopularSkills)
	publicSkills.Get("/stats", s.GetSkillStats)
	publicSkills.Get("/:id/users", s.SearchUsersBySkill)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Delete("/me", s.DeactivateMyAccount)
	users.Get("/", s.GetAllUsers)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/skills", s.GetUserSkills)
	users.Get("/:id/endorsements", s.GetUserEndorsements)
	users.Get("/:id/communities", s.GetUserCommunities)
	users.Get("/:id/projects", s.GetUserProjects)
	users.Get("/:id/events", s.GetUserEvents)
	users.Post("/:id/promote-admin", s.AdminRequired(), s.PromoteToAdmin)
	users.Post("/:id/demote-admin", s.AdminRequired(), s.DemoteFromAdmin)
	users.Get("/:id", s.GetUserProfile)

	// Protected community routes
	communities := protected.Group("/communities")
	communities.Post("/", s.CreateCommunity)
	communities.Get("/mine", s.GetMyCommunities)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	communities.Post("/:id/join", s.JoinCommunity)
	communities.Delete("/:id/join", s.LeaveCommunity)
	communities.Post("/:id/moderators/:userId", s.PromoteModerator)
	communities.Delete("/:id/moderators/:userId", s.DemoteModerator)
	communities.Put("/:id", s.UpdateCommunity)
	communities.Delete("/:id", s.DeleteCommunity)

	// Protected project routes
	projects := protected.Group("/projects")
	projects.Post("/", s.CreateProject)
	projects.Get("/mine", s.GetMyProjects)
	projects.Get("/applications/mine", s.GetMyApplications)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	projects.Post("/:id/roles", s.AddProjectRole)
	projects.Delete("/:id/roles/:roleId", s.DeleteProjectRole)
	projects.Post("/:id/apply", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "project_apply"), s.ApplyToProject)
	projects.Get("/:id/applications", s.GetProjectApplications)
	projects.Post("/:id/applications/:applicationId/accept", s.AcceptApplication)
	projects.Post("/:id/applications/:applicationId/reject", s.RejectApplication)
	projects.Delete("/:id/members/me", s.LeaveProject)
	projects.Put("/:id", s.UpdateProject)
	projects.Delete("/:id", s.DeleteProject)

	// Protected post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id/comments/:commentId", s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Protected event routes
	events := protected.Group("/events")
	events.Post("/", s.CreateEvent)
	events.Get("/mine", s.GetMyEvents)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	events.Post("/:id/register", s.RegisterForEvent)
	events.Delete("/:id/register", s.UnregisterFromEvent)
	events.Get("/:id/registrations", s.GetEventRegistrations)
	events.Post("/:id/checkin/:userId", s.CheckInAttendee)
	events.Put("/:id", s.UpdateEvent)
	events.Delete("/:id", s.DeleteEvent)

	// Protected tutorial routes
	tutorials := protected.Group("/tutorials")
	tutorials.Post("/", s.CreateTutorial)
	tutorials.Post("/import", middleware.RateLimit(
		s.redis, 5, time.Minute, "tutorial_import"), s.ImportTutorial)
	tutorials.Get("/progress/mine", s.GetMyTutorialProgress)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	tutorials.Put("/:id/progress", s.UpdateTutorialProgress)
	tutorials.Post("/:id/bookmark", s.ToggleTutorialBookmark)
	tutorials.Put("/:id", s.UpdateTutorial)
	tutorials.Delete("/:id", s.DeleteTutorial)

	// Message routes (all protected)
	messages := protected.Group("/messages")
	messages.Post("/", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/conversations", s.GetConversations)
	messages.Get("/conversations/:userId", s.GetConversationWith)
	messages.Get("/unread-count", s.GetUnreadMessageCount)
	messages.Delete("/:id", s.DeleteMessage)

	// Chat room routes (all protected)
	rooms := protected.Group("/rooms")
	rooms.Post("/", s.CreateRoom)
	rooms.Get("/mine", s.GetMyRooms)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	rooms.Get("/:id/messages", s.GetRoomMessages)
	rooms.Post("/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_room_message"), s.SendRoomMessage)
	rooms.Post("/:id/participants/:userId", s.AddRoomParticipant)
	rooms.Delete("/:id/participants/:userId", s.RemoveRoomParticipant)
	rooms.Get("/:id", s.GetRoom)

	// Protected skill routes
	skills := protected.Group("/skills")
	skills.Post("/mine", s.AddMySkill)
	skills.Put("/mine/:skillId", s.UpdateMySkillProficiency)
	skills.Delete("/mine/:skillId", s.RemoveMySkill)
	skills.Post("/:skillId/endorse/:userId", middleware.RateLimit(
		s.redis, 10, time.Minute, "endorse"), s.EndorseSkill)
	skills.Delete("/:skillId/endorse/:userId", s.RemoveEndorsement)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadNotificationCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdmin(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "studentconnect-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "studentconnect-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// Store user ID in context
		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "StudentConnect API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
