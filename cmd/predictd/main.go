package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/leafscan/backend/internal/backend"
	"github.com/leafscan/backend/internal/catalog"
	"github.com/leafscan/backend/internal/classifier"
	"github.com/leafscan/backend/internal/config"
	"github.com/leafscan/backend/internal/logging"
	"github.com/leafscan/backend/internal/storage"
)

// Version info (set during build)
var Version = "dev"

func main() {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	configPath := flag.String("config", filepath.Join(filepath.Dir(exePath), "LeafScan.config.xml"), "Path to the XML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogLevel(cfg.Advanced.LogLevel)

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.Backend.CatalogFile)
	if err != nil {
		fmt.Printf("Failed to load disease catalog: %v\n", err)
		os.Exit(1)
	}

	model, err := classifier.NewCentroidModel(cat)
	if err != nil {
		fmt.Printf("Failed to build classifier: %v\n", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.Advanced.EnableRequestLogging || c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Backend.BodyLimit))

	backend.RegisterRoutes(e, backend.NewPredictHandler(store, model, cat, cfg.Storage.KeepUploads))

	logging.Infof("[predictd] %s serving %d labels on http://%s/predict", Version, len(cat.Labels()), cfg.GetBackendAddr())
	logging.Infof("[predictd] data: %s, uploads: %s", cfg.GetDataDir(), cfg.GetUploadDir())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if retention := cfg.UploadRetention(); cfg.Storage.KeepUploads && retention > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n := store.Prune(retention); n > 0 {
						logging.Infof("[predictd] pruned %d uploads older than %s", n, retention)
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		if err := e.Start(cfg.GetBackendAddr()); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("[predictd] shutdown: %v", err)
	}
}
