// Package server exposes the exchange over HTTP. It is the serialization
// host: concurrent requests against the same pool are linearized by the
// pool's own lock, so handlers stay thin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nthExchange/internal/exchange"
)

// Server wraps the gin engine and the HTTP listener.
type Server struct {
	exchange *exchange.Exchange
	logger   *zap.Logger
	http     *http.Server
}

// New builds the server and its routes. gatherer may be nil to disable the
// metrics endpoint.
func New(addr string, ex *exchange.Exchange, logger *zap.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		exchange: ex,
		logger:   logger,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/v1")
	v1.POST("/quote", s.handleQuote)
	v1.POST("/swap", s.handleSwap)
	v1.POST("/liquidity/add", s.handleAddLiquidity)
	v1.POST("/liquidity/remove", s.handleRemoveLiquidity)
	v1.GET("/stats", s.handleStats)

	return s
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
