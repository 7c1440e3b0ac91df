package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"farmpulse/internal/auth"
	"farmpulse/internal/models"
	"farmpulse/internal/scheduler"
	"farmpulse/internal/store"
)

// Server exposes the scheduler's operational surface: status, start/stop,
// manual runs, and read-only views of schedules, history and analytics.
// Schedule CRUD belongs to the administration API and is deliberately
// absent here.
type Server struct {
	sched     *scheduler.Scheduler
	schedules *store.ScheduleStore
	history   *store.HistoryStore
	analytics *store.AnalyticsStore
	tokens    *auth.Tokens
	db        *gorm.DB
	router    *gin.Engine
}

func NewServer(sched *scheduler.Scheduler, schedules *store.ScheduleStore, history *store.HistoryStore, analytics *store.AnalyticsStore, tokens *auth.Tokens, db *gorm.DB) *Server {
	s := &Server{
		sched:     sched,
		schedules: schedules,
		history:   history,
		analytics: analytics,
		tokens:    tokens,
		db:        db,
		router:    gin.Default(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/api/v1/auth/login", s.login)

	api := s.router.Group("/api/v1")
	api.Use(s.tokens.Middleware())

	api.GET("/scheduler/status", s.schedulerStatus)
	api.POST("/scheduler/start", auth.RequireRole(models.RoleAdmin), s.schedulerStart)
	api.POST("/scheduler/stop", auth.RequireRole(models.RoleAdmin), s.schedulerStop)
	api.POST("/scheduler/run/:id", auth.RequireRole(models.RoleAdmin, models.RoleUser), s.runSchedule)

	api.GET("/schedules", s.listSchedules)
	api.GET("/schedules/:id/history", s.scheduleHistory)
	api.GET("/schedules/:id/analytics", s.scheduleAnalytics)
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Router is exposed for tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.tokens.Generate(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) schedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Status())
}

func (s *Server) schedulerStart(c *gin.Context) {
	s.sched.Start()
	c.JSON(http.StatusOK, s.sched.Status())
}

func (s *Server) schedulerStop(c *gin.Context) {
	s.sched.Stop()
	c.JSON(http.StatusOK, s.sched.Status())
}

func (s *Server) runSchedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule ID"})
		return
	}

	res, err := s.sched.RunNow(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listSchedules(c *gin.Context) {
	scheds, err := s.schedules.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scheds)
}

func (s *Server) scheduleHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule ID"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil {
			limit = l
		}
	}

	entries, err := s.history.ListBySchedule(c.Request.Context(), uint(id), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) scheduleAnalytics(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule ID"})
		return
	}

	snap, err := s.analytics.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, scheduler.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no analytics recorded for this schedule yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}
