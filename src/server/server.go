package server

import (
	"fmt"
	"strings"
	"sync"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Query-side collaborators. The server never computes domain values; it only
// serves what the pipeline last published.
// -----------------------------------------------------------------------------

type HealthSource interface {
	Health() []models.MSourceHealth
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

type Server struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Sources HealthSource
	engine  *gin.Engine

	// WebSocket subscribers
	subscribers map[*Subscriber]struct{}
	broadcast   chan *models.MMarketUpdate
	register    chan *Subscriber
	unregister  chan *Subscriber
	done        chan struct{}

	// Latest published snapshot per symbol
	latest     map[string]models.MSnapshot
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewServer(cfg *models.MConfig, sources HealthSource, logger *logger.Logger) *Server {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Config:  cfg,
		Logger:  logger,
		Sources: sources,
		engine:  gin.Default(),

		subscribers: make(map[*Subscriber]struct{}),
		// Buffered channel to prevent lock/blocking
		broadcast:  make(chan *models.MMarketUpdate, 256),
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		done:       make(chan struct{}),

		latest: make(map[string]models.MSnapshot),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

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

func (s *Server) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/snapshot", s.getSnapshot)
	s.engine.GET("/api/price", s.getPrice)
	s.engine.GET("/api/indicators", s.getIndicators)
	s.engine.GET("/api/sentiment", s.getSentiment)
	s.engine.GET("/api/signal", s.getSignal)
	s.engine.GET("/api/risk", s.getRisk)
	s.engine.GET("/api/sources", s.getSources)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *Server) Stop() error {
	close(s.done)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// symbolSnapshot resolves the ?symbol= query (default: first configured
// symbol) against the latest published state. Missing data is 404, never a
// zero-valued snapshot.
func (s *Server) symbolSnapshot(c *gin.Context) (models.MSnapshot, bool) {
	symbol := c.Query("symbol")
	if symbol == "" && len(s.Config.Symbols) > 0 {
		symbol = s.Config.Symbols[0]
	}

	s.stateMutex.RLock()
	snap, ok := s.latest[symbol]
	s.stateMutex.RUnlock()

	if !ok {
		c.JSON(404, gin.H{"error": "no snapshot published yet", "symbol": symbol})
		return models.MSnapshot{}, false
	}
	return snap, true
}

// -----------------------------------------------------------------------------

func (s *Server) getSnapshot(c *gin.Context) {
	snap, ok := s.symbolSnapshot(c)
	if !ok {
		return
	}
	c.JSON(200, snap)
}

// -----------------------------------------------------------------------------

func (s *Server) getPrice(c *gin.Context) {
	snap, ok := s.symbolSnapshot(c)
	if !ok {
		return
	}
	c.JSON(200, gin.H{
		"symbol":    snap.Symbol,
		"price":     snap.Price,
		"stale":     snap.Stale,
		"timestamp": snap.GeneratedAt.Unix(),
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getIndicators(c *gin.Context) {
	snap, ok := s.symbolSnapshot(c)
	if !ok {
		return
	}
	c.JSON(200, snap.Indicators)
}

// -----------------------------------------------------------------------------

func (s *Server) getSentiment(c *gin.Context) {
	snap, ok := s.symbolSnapshot(c)
	if !ok {
		return
	}
	c.JSON(200, snap.Sentiment)
}

// -----------------------------------------------------------------------------

func (s *Server) getSignal(c *gin.Context) {
	snap, ok := s.symbolSnapshot(c)
	if !ok {
		return
	}
	c.JSON(200, snap.Signal)
}

// -----------------------------------------------------------------------------

func (s *Server) getRisk(c *gin.Context) {
	snap, ok := s.symbolSnapshot(c)
	if !ok {
		return
	}
	c.JSON(200, snap.Risk)
}

// -----------------------------------------------------------------------------

func (s *Server) getSources(c *gin.Context) {
	if s.Sources == nil {
		c.JSON(200, []models.MSourceHealth{})
		return
	}
	c.JSON(200, s.Sources.Health())
}

// -----------------------------------------------------------------------------

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"symbols":          s.Config.Symbols,
		"interval_seconds": s.Config.Aggregator.IntervalSeconds,
		"history_size":     s.Config.History.Size,
		"indicator_period": s.Config.Indicators.Period,
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.subscribers)
	var latestUpdate int64
	for _, snap := range s.latest {
		if ts := snap.GeneratedAt.Unix(); ts > latestUpdate {
			latestUpdate = ts
		}
	}
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": latestUpdate,
	})
}
