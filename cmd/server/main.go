package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/leafscan/backend/internal/api"
	"github.com/leafscan/backend/internal/config"
	"github.com/leafscan/backend/internal/controller"
	"github.com/leafscan/backend/internal/logging"
	"github.com/leafscan/backend/internal/predict"
	"github.com/leafscan/backend/internal/session"
	"github.com/leafscan/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	configPath := flag.String("config", filepath.Join(filepath.Dir(exePath), "LeafScan.config.xml"), "Path to the XML configuration file")
	flag.Parse()

	// Load XML configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if !logging.SetLogLevel(cfg.Advanced.LogLevel) {
		fmt.Printf("Unknown log level %q, using info\n", cfg.Advanced.LogLevel)
	}

	policy, err := controller.ParsePolicy(cfg.Session.SubmitPolicy)
	if err != nil {
		fmt.Printf("Invalid submit policy: %v\n", err)
		os.Exit(1)
	}

	// Prediction client shared by all sessions
	client := predict.NewClient(cfg.Predict.Endpoint,
		predict.WithTimeout(cfg.PredictTimeout()),
		predict.WithFieldName(cfg.Predict.FieldName),
	)

	// One controller per browser session
	sessionMgr := session.NewManager(func() *controller.Controller {
		return controller.New(client, controller.WithPolicy(policy))
	}, cfg.Session.MaxSessions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessionMgr.CleanupOldSessions(cfg.SessionTimeout())
			case <-ctx.Done():
				return
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/state" ||
				path == "/api/health" ||
				strings.HasPrefix(path, "/static/")
		},
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/api/submit" || strings.HasPrefix(path, "/api/ws/")
		},
		ErrorMessage: "Request timeout",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
		},
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			AllowCredentials: origins[0] != "*",
		}))
	}

	// Routes
	api.ShowErrorDetails = cfg.Advanced.ShowErrorDetails
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Sessions:        sessionMgr,
		Version:         Version,
		PredictEndpoint: cfg.Predict.Endpoint,
		FieldName:       cfg.Predict.FieldName,
		StreamBufferKB:  cfg.Advanced.StateStreamBufferKB,
		BaseContext:     ctx,
	}))

	if !web.HasEmbeddedFiles() {
		fmt.Println("Warning: page template not embedded, rebuild the binary")
	}
	if err := web.RegisterStaticRoutes(e); err != nil {
		fmt.Printf("Warning: failed to register static routes: %v\n", err)
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           LeafScan Web UI                                 ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Policy:     %-45s║\n", policy)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Predict:   %-46s║\n", cfg.Predict.Endpoint)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	logging.Infof("[Server] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("[Server] shutdown: %v", err)
	}
	sessionMgr.CloseAll()
}
