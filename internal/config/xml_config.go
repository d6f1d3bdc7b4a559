// Package config provides XML-based configuration management for the leaf scan services.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"LeafScan"`

	// Web UI server configuration
	Server ServerConfig `xml:"Server"`

	// Prediction client configuration
	Predict PredictConfig `xml:"Predict"`

	// Prediction backend configuration
	Backend BackendConfig `xml:"Backend"`

	// UI session configuration
	Session SessionConfig `xml:"Session"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// PredictConfig describes how the UI reaches the prediction service
type PredictConfig struct {
	Endpoint       string `xml:"Endpoint"`
	FieldName      string `xml:"FieldName"`
	TimeoutSeconds int    `xml:"TimeoutSeconds"`
}

// BackendConfig contains settings of the prediction backend
type BackendConfig struct {
	Port        int    `xml:"Port"`
	BindAddress string `xml:"BindAddress"`
	// CatalogFile overrides the built-in disease catalog when set.
	CatalogFile string `xml:"CatalogFile"`
	BodyLimit   string `xml:"BodyLimit"`
}

// SessionConfig contains UI session settings
type SessionConfig struct {
	TimeoutMinutes         int    `xml:"TimeoutMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
	MaxSessions            int    `xml:"MaxSessions"`
	SubmitPolicy           string `xml:"SubmitPolicy"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
	KeepUploads      bool   `xml:"KeepUploads"`
	// RetentionHours deletes kept uploads older than this; 0 keeps them.
	RetentionHours int `xml:"RetentionHours"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	StateStreamBufferKB  int    `xml:"StateStreamBufferKB"`
	ShowErrorDetails     bool   `xml:"ShowErrorDetails"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 90,
			IdleTimeout:  120,
			BodyLimit:    "32M",
		},
		Predict: PredictConfig{
			Endpoint:       "http://localhost:5000/predict",
			FieldName:      "file",
			TimeoutSeconds: 60,
		},
		Backend: BackendConfig{
			Port:        5000,
			BindAddress: "0.0.0.0",
			BodyLimit:   "32M",
		},
		Session: SessionConfig{
			TimeoutMinutes:         30,
			CleanupIntervalMinutes: 5,
			MaxSessions:            1000,
			SubmitPolicy:           "cancel-previous",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			KeepUploads:      true,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			StateStreamBufferKB:  64,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- LeafScan Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if port := os.Getenv("BACKEND_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Backend.Port = p
		}
	}

	if endpoint := os.Getenv("PREDICT_URL"); endpoint != "" {
		c.Predict.Endpoint = endpoint
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.UploadsDirectory)
	resolve(&c.Backend.CatalogFile)
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the UI server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetBackendAddr returns the prediction backend bind address
func (c *AppConfig) GetBackendAddr() string {
	return fmt.Sprintf("%s:%d", c.Backend.BindAddress, c.Backend.Port)
}

// PredictTimeout returns the prediction request timeout
func (c *AppConfig) PredictTimeout() time.Duration {
	if c.Predict.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Predict.TimeoutSeconds) * time.Second
}

// SessionTimeout returns how long an idle UI session is kept
func (c *AppConfig) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

// CleanupInterval returns the idle session sweep interval
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Session.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Session.CleanupIntervalMinutes) * time.Minute
}

// UploadRetention returns how long kept uploads live, or 0 for forever
func (c *AppConfig) UploadRetention() time.Duration {
	if c.Storage.RetentionHours <= 0 {
		return 0
	}
	return time.Duration(c.Storage.RetentionHours) * time.Hour
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
