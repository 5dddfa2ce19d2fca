package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/expectr"
	"github.com/GriffinCanCode/expectr/internal/config"
	"github.com/GriffinCanCode/expectr/internal/daemon"
	apihttp "github.com/GriffinCanCode/expectr/internal/http"
	"github.com/GriffinCanCode/expectr/internal/logging"
	"github.com/GriffinCanCode/expectr/internal/metrics"
	"github.com/GriffinCanCode/expectr/internal/middleware"
	"github.com/GriffinCanCode/expectr/internal/ws"
)

// Version is the expectrd release version.
const Version = "0.1.0"

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	manager *daemon.Manager
	logger  *logging.Logger
	config  *config.Config
}

// New creates a server from configuration.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		var err error
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Initializing expectrd",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Int("session_timeout_s", cfg.Session.TimeoutSeconds),
		zap.Int("buffer_size", cfg.Session.BufferSize),
		zap.Bool("constrain", cfg.Session.Constrain),
	)

	// Each server carries its own registry so repeated construction never
	// collides on metric registration.
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	base := expectr.Config{
		Timeout:    cfg.Session.Timeout(),
		BufferSize: cfg.Session.BufferSize,
		Constrain:  cfg.Session.Constrain,
	}
	manager := daemon.NewManager(base, logger.Logger, m)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Logger))
	router.Use(metrics.Middleware(m))
	router.Use(cors.Default())

	handlers := apihttp.NewHandlers(manager, Version)
	wsHandler := ws.NewHandler(manager, logger.Logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Session management
	router.POST("/sessions", handlers.CreateSession)
	router.GET("/sessions", handlers.ListSessions)
	router.GET("/sessions/:id", handlers.GetSession)
	router.DELETE("/sessions/:id", handlers.KillSession)

	// Session I/O
	router.POST("/sessions/:id/send", handlers.Send)
	router.POST("/sessions/:id/expect", handlers.Expect)
	router.GET("/sessions/:id/buffer", handlers.Buffer)
	router.POST("/sessions/:id/clear", handlers.Clear)
	router.POST("/sessions/:id/resize", handlers.Resize)

	// Live terminal stream
	router.GET("/sessions/:id/stream", wsHandler.HandleConnection)

	// Prometheus
	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{
		router:  router,
		manager: manager,
		logger:  logger,
		config:  cfg,
	}, nil
}

// Router exposes the gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the server and blocks.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting expectrd", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close kills all sessions and flushes the logger.
func (s *Server) Close() error {
	s.manager.Shutdown()
	return s.logger.Sync()
}
