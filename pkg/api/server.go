// Package api provides the REST API server for acidstep
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/acidstep/pkg/control"
	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/converter/devices"
)

// @title acidstep API
// @version 1.0
// @description API for editing and playing a 32-step acid pattern and converting it between MIDI and Behringer formats
// @host localhost:8080
// @BasePath /api/v1

// errInvalid marks requests that are well formed but name an invalid step or value
var errInvalid = errors.New("invalid value")

// Server exposes one sequencer over HTTP
type Server struct {
	seq    *control.Sequencer
	conv   *converter.Converter
	logger *slog.Logger
	router *gin.Engine

	mu    sync.Mutex
	name  string
	tempo float64
}

// NewServer wires the routes around seq. Patterns and uploads are encoded
// with conv, whose device is the default for conversions.
func NewServer(seq *control.Sequencer, conv *converter.Converter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		seq:    seq,
		conv:   conv,
		logger: logger,
		name:   "Untitled",
		tempo:  converter.DefaultTempo,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetMeta sets the pattern name and tempo reported and exported by the server
func (s *Server) SetMeta(name string, tempo float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		s.name = name
	}
	if tempo > 0 {
		s.tempo = tempo
	}
}

func (s *Server) meta() (string, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.tempo
}

// Run listens on port until the server fails
func (s *Server) Run(port int) error {
	s.logger.Info("api: listening", "port", port)
	return s.router.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) routes() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.GET("/devices", listDevices)

		v1.POST("/convert/midi2seq", s.handleMIDIToSeq)
		v1.POST("/convert/seq2midi", s.handleSeqToMIDI)
		v1.POST("/convert/midi2syx", s.handleMIDIToSyx)
		v1.POST("/convert/syx2midi", s.handleSyxToMIDI)
		v1.POST("/convert/seq2syx", s.handleSeqToSyx)
		v1.POST("/convert/syx2seq", s.handleSyxToSeq)

		v1.GET("/pattern", s.getPattern)
		v1.DELETE("/pattern", s.clearPattern)
		v1.GET("/pattern/export", s.exportPattern)
		v1.POST("/pattern/import", s.importPattern)

		v1.GET("/steps/:index", s.getStep)
		v1.PATCH("/steps/:index", s.patchStep)
		v1.PUT("/cursor", s.setCursor)

		v1.GET("/settings", s.getSettings)
		v1.PUT("/settings", s.putSettings)

		v1.POST("/transport/start", s.start)
		v1.POST("/transport/stop", s.stop)
		v1.POST("/transport/clock", s.clock)
		v1.POST("/transport/reset", s.reset)
		v1.POST("/transport/page", s.jumpPage)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// fail writes an error body; errInvalid maps to 422
func (s *Server) fail(c *gin.Context, status int, err error) {
	if errors.Is(err, errInvalid) {
		status = http.StatusUnprocessableEntity
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("api: request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "acidstep",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []converter.Format{converter.FormatMIDI, converter.FormatSeq, converter.FormatSyx},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listDevices godoc
// @Summary List supported devices
// @Description Returns a list of supported Behringer devices
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]devices.Info
// @Router /api/v1/devices [get]
func listDevices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"devices": devices.List(),
	})
}
