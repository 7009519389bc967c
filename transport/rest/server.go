package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(logger *slog.Logger, port string, router http.Handler) *Server {
	return &Server{
		logger: logger.With("component", "http_server"),
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// Start - blocks until the server stops. A graceful Shutdown is not reported as an error.
func (that *Server) Start() error {
	that.logger.Info("starting HTTP server", "addr", that.srv.Addr)

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

type metricsProvider interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

// NewRouter - every route of the league API. metrics may be nil.
func NewRouter(logger *slog.Logger, manager gameManager, metrics metricsProvider) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	if metrics != nil {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	h := newHandlers(logger, manager)

	router.GET("/ping", pingHandler)

	players := router.Group("/players")
	players.POST("", h.registerPlayer)
	players.GET("/:name", h.getPlayer)
	players.GET("/:name/games", h.listActiveGames)

	games := router.Group("/games")
	games.POST("", h.createGame)
	games.GET("/average-moves", h.averageMoves)
	games.GET("/:id", h.getGame)
	games.PUT("/:id", h.makeMove)
	games.DELETE("/:id", h.cancelGame)
	games.POST("/:id/draw", h.declareDraw)
	games.GET("/:id/history", h.getHistory)

	scores := router.Group("/scores")
	scores.GET("", h.listScores)
	scores.GET("/high", h.leaderboard)
	scores.GET("/players/:name", h.listPlayerScores)

	router.GET("/rankings", h.rankings)

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	log := logger.With("component", "http")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
