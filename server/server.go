// Package server exposes the reservation agent over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	catalogx "github.com/tanpawarit/goodfoods-agent/agent/catalog"
	reservationx "github.com/tanpawarit/goodfoods-agent/agent/reservation"
)

type MessageHandler interface {
	HandleMessage(ctx context.Context, text string) string
}

type ReservationLister interface {
	List(ctx context.Context, limit int) ([]reservationx.Reservation, error)
}

type RestaurantLister interface {
	All() []catalogx.Restaurant
}

type Config struct {
	Addr            string        `envconfig:"HTTP_ADDR" split_words:"true" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

type Server struct {
	engine *gin.Engine
	cfg    Config
}

// New registers every route on a fresh gin engine.
func New(cfg Config, messages MessageHandler, reservations ReservationLister, restaurants RestaurantLister) (*Server, error) {
	if messages == nil {
		return nil, errors.New("message handler is required")
	}
	if reservations == nil {
		return nil, errors.New("reservation lister is required")
	}
	if restaurants == nil {
		return nil, errors.New("restaurant lister is required")
	}

	e := gin.New()
	e.Use(RequestLogger(), Recovery())

	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rs := &resource{messages: messages, reservations: reservations, restaurants: restaurants}
	rs.register(e.Group("/api/v1"))

	return &Server{engine: e, cfg: cfg}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("http_server_started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info().Msg("http_server_stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
