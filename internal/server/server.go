package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-app/stackit/backend/internal/config"
	"github.com/stackit-app/stackit/backend/internal/database"
	"github.com/stackit-app/stackit/backend/internal/handlers"
	"github.com/stackit-app/stackit/backend/internal/middleware"
)

type Server struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      database.Service
	handler *handlers.Handler
}

// New creates and configures a new server
func New() *http.Server {
	cfg := config.Load()
	log := newLogger(cfg.Env)

	db := database.New()
	handler := handlers.NewHandler(db.GetDB(), log, cfg)

	newServer := &Server{
		cfg:     cfg,
		log:     log,
		db:      db,
		handler: handler,
	}

	router := newServer.RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.WithField("port", cfg.Port).Info("server starting")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.RequestID())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	gormDB := s.db.GetDB()
	secret := []byte(s.cfg.JWT.Secret)
	auth := middleware.Auth(gormDB, secret)
	optionalAuth := middleware.OptionalAuth(gormDB, secret)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/register", s.handler.Auth.Register)
		api.POST("/auth/login", s.handler.Auth.Login)

		// Question routes (public reads)
		api.GET("/questions", optionalAuth, s.handler.Question.GetQuestions)
		api.GET("/questions/:id", optionalAuth, s.handler.Question.GetQuestion)
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswersByQuestion)

		// Comment routes (public reads)
		api.GET("/answers/:id/comments", s.handler.Answer.GetComments)

		// Vote listing (public)
		api.GET("/votes", s.handler.Vote.GetVotes)

		// Tag routes (public)
		api.GET("/tags", s.handler.Tag.GetTags)
		api.GET("/tags/search", s.handler.Tag.SearchTags)

		// User routes (public reads)
		api.GET("/users", s.handler.User.SearchUsers)
		api.GET("/users/:username", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(auth)
		{
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.PUT("/me", s.handler.User.UpdateProfile)

			// Question protected routes
			protected.POST("/questions", s.handler.Question.CreateQuestion)
			protected.PUT("/questions/:id", s.handler.Question.UpdateQuestion)
			protected.DELETE("/questions/:id", s.handler.Question.DeleteQuestion)

			// Answer protected routes
			protected.POST("/answers", s.handler.Answer.CreateAnswer)
			protected.PUT("/answers/:id", s.handler.Answer.UpdateAnswer)
			protected.PATCH("/answers/:id/accept", s.handler.Answer.AcceptAnswer)
			protected.DELETE("/answers/:id", s.handler.Answer.DeleteAnswer)
			protected.POST("/answers/:id/comments", s.handler.Answer.CreateComment)

			// Vote protected routes
			protected.POST("/votes/questions/:id", s.handler.Vote.VoteQuestion)
			protected.POST("/votes/answers/:id", s.handler.Vote.VoteAnswer)

			// Notification routes
			protected.GET("/notifications", s.handler.Notification.GetNotifications)
			protected.PATCH("/notifications", s.handler.Notification.MarkAllRead)
			protected.PATCH("/notifications/:id/read", s.handler.Notification.MarkRead)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(auth, middleware.RequireAdmin())
		{
			admin.GET("/stats", s.handler.Admin.GetStats)
			admin.GET("/users", s.handler.Admin.GetUsers)
			admin.PATCH("/users/:id/role", s.handler.Admin.UpdateUserRole)
			admin.PATCH("/users/:id/ban", s.handler.Admin.BanUser)
			admin.GET("/questions", s.handler.Admin.GetQuestions)
			admin.GET("/answers", s.handler.Admin.GetAnswers)
			admin.DELETE("/questions/:id", s.handler.Admin.DeleteQuestion)
			admin.DELETE("/answers/:id", s.handler.Admin.DeleteAnswer)
			admin.GET("/analytics", s.handler.Admin.GetAnalytics)
		}
	}

	return r
}

func newLogger(env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if env == "development" {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
