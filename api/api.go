package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jvre/memberd/account"
	"github.com/jvre/memberd/api/handler"
	"github.com/jvre/memberd/config"
	"github.com/jvre/memberd/database"
	"github.com/jvre/memberd/locale"
	"github.com/jvre/memberd/scheduler"
)

// Server is the HTTP surface of memberd.
type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	svc       *account.Service
	db        database.DB
	sched     *scheduler.Scheduler
}

// New creates a new API server. sched may be nil, the job endpoints then
// report an empty list.
func New(cfg *config.Config, db database.DB, svc *account.Service, sched *scheduler.Scheduler, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.Default(),
		svc:       svc,
		db:        db,
		sched:     sched,
	}
	s.setupRoutes()

	return s, nil
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("memberd_session", store))
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()
	s.ginEngine.Use(requestID())

	h := handler.New(s.svc, s.db, s.sched, locale.NewPrinter(s.cfg.Locale))

	s.ginEngine.GET("/healthz", h.Health)
	s.ginEngine.POST("/api/account/register", h.Register)
	s.ginEngine.GET("/account/confirm-register/:username/:code", h.ConfirmRegister)

	admin := s.ginEngine.Group("/api/admin")
	admin.Use(s.requireAPIKey())
	admin.GET("/settings", h.ListSettings)
	admin.PUT("/settings", h.UpdateSettings)
	admin.POST("/purge", h.PurgeUnconfirmed)
	admin.GET("/jobs", h.ListJobs)
	admin.POST("/jobs/:id/run", h.RunJob)
}

// requestID tags every request with a unique ID for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requireAPIKey guards the admin endpoints with the configured API key.
func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.APIKey == "" || c.GetHeader("X-API-Key") != s.cfg.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	return s.ginEngine.Run(s.cfg.Listen)
}
