// Package server exposes the training use-cases over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/training"
)

// Server serves the JSON API.
type Server struct {
	svc    *training.Service
	log    zerolog.Logger
	router *gin.Engine
}

// New builds a Server and its routes.
func New(svc *training.Service, log zerolog.Logger) *Server {
	s := &Server{svc: svc, log: log}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", Health)

	api := router.Group("/api")
	api.POST("/bestmove", s.BestMove)
	api.POST("/evaluate", s.Evaluate)
	api.POST("/legal-moves", s.LegalMoves)
	api.POST("/hint", s.Hint)
	api.POST("/status", s.Status)
	api.POST("/cct", s.CCT)
	api.POST("/threats", s.Threats)

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("http listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "http shutdown")
		}
		return nil
	})
	return g.Wait()
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// Health reports that the process is up.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
