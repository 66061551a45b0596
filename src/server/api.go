package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"stock-screener/src/engine"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// ScreenerServer
// -----------------------------------------------------------------------------

// ScreenerServer serves the published table to the filter/display layer and
// pushes a publish event to WebSocket clients after each compute run. It
// never writes the computed table itself; POST /api/compute delegates to the
// engine.
type ScreenerServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Engine  *engine.Engine
	Factory interfaces.StoreFactory
	engine  *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MPublishEvent
	register   chan *Client
	unregister chan *Client

	// Local cache of the last publish event
	latestState models.MPublishEvent
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewScreenerServer(cfg *models.MConfig, eng *engine.Engine, factory interfaces.StoreFactory, log *logger.Logger) *ScreenerServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &ScreenerServer{
		Config:  cfg,
		Logger:  log,
		Engine:  eng,
		Factory: factory,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered so a slow hub never blocks the engine's publish path
		broadcast:   make(chan models.MPublishEvent, 16),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		latestState: models.MPublishEvent{Type: "INITIAL"},
	}

	// CORS middleware for local dashboards
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ScreenerServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/screener", s.getScreener)
	s.engine.GET("/api/snapshot/:ticker", s.getSnapshot)
	s.engine.POST("/api/compute", s.postCompute)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *ScreenerServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// NotifyPublished implements interfaces.IPublishNotifier.
func (s *ScreenerServer) NotifyPublished(event models.MPublishEvent) {
	s.stateMutex.Lock()
	s.latestState = event
	s.stateMutex.Unlock()

	select {
	case s.broadcast <- event:
	default:
		s.Logger.Warning("Publish event dropped: broadcast queue full")
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *ScreenerServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	latest := s.latestState
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":         "ok",
		"connections":    connections,
		"latest_publish": latest.PublishedAt,
		"rows":           latest.Rows,
	})
}

// -----------------------------------------------------------------------------

// getScreener returns the published rows matching the requested column
// comparisons. Rows with a Missing value in any filtered column are
// excluded, never treated as zero.
func (s *ScreenerServer) getScreener(c *gin.Context) {
	filter, err := ParseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snaps, err := s.loadSnapshots()
	if err != nil {
		s.Logger.Error("Failed to load computed table: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "computed table unavailable"})
		return
	}

	matched := filter.Apply(snaps)
	c.JSON(200, gin.H{
		"total":   len(snaps),
		"matched": len(matched),
		"rows":    matched,
	})
}

// -----------------------------------------------------------------------------

func (s *ScreenerServer) getSnapshot(c *gin.Context) {
	ticker := c.Param("ticker")

	snaps, err := s.loadSnapshots()
	if err != nil {
		s.Logger.Error("Failed to load computed table: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "computed table unavailable"})
		return
	}

	for i := range snaps {
		if snaps[i].Ticker == ticker {
			c.JSON(200, snaps[i])
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no snapshot for %s", ticker)})
}

// -----------------------------------------------------------------------------

func (s *ScreenerServer) postCompute(c *gin.Context) {
	if err := s.Engine.EnsureComputedTable(); err != nil {
		s.Logger.Error("Compute run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.stateMutex.RLock()
	latest := s.latestState
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{"status": "ok", "rows": latest.Rows})
}

// -----------------------------------------------------------------------------

// loadSnapshots opens a fresh store handle per request; the working file may
// have been replaced by a sync since the last read.
func (s *ScreenerServer) loadSnapshots() ([]models.MSnapshot, error) {
	store, err := s.Factory()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.QuerySnapshots()
}
