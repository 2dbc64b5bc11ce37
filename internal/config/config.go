package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort string `yaml:"server_port"`
	DataDir    string `yaml:"data_dir"`
	LogDir     string `yaml:"log_dir"`
	LogLevel   string `yaml:"log_level"`

	// APIBaseURL is the membership backend, e.g. https://wash.example.com
	APIBaseURL    string        `yaml:"api_base_url"`
	VerifyTimeout time.Duration `yaml:"verify_timeout"`

	// DefaultLocationID is selected at startup when it exists on the backend.
	DefaultLocationID string `yaml:"default_location_id"`

	Camera CameraConfig `yaml:"camera"`

	// DemoMode enables the simulated scan endpoint.
	DemoMode bool `yaml:"demo_mode"`
}

// CameraConfig describes how frames are pulled from the capture device.
type CameraConfig struct {
	SysfsRoot  string `yaml:"sysfs_root"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	FPS        int    `yaml:"fps"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	// TorchLED is a /sys/class/leds brightness file; empty means no torch.
	TorchLED string `yaml:"torch_led"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		ServerPort:    "3000",
		DataDir:       "data",
		LogDir:        "logs",
		LogLevel:      "info",
		APIBaseURL:    "http://localhost:8080",
		VerifyTimeout: 10 * time.Second,
		Camera: CameraConfig{
			SysfsRoot:  "/sys/class/video4linux",
			FFmpegPath: "ffmpeg",
			FPS:        10,
			Width:      640,
			Height:     480,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if
// non-empty), then WASHGATE_* environment variables.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"WASHGATE_PORT":             &c.ServerPort,
		"WASHGATE_DATA_DIR":         &c.DataDir,
		"WASHGATE_LOG_DIR":          &c.LogDir,
		"WASHGATE_LOG_LEVEL":        &c.LogLevel,
		"WASHGATE_API_URL":          &c.APIBaseURL,
		"WASHGATE_LOCATION":         &c.DefaultLocationID,
		"WASHGATE_FFMPEG":           &c.Camera.FFmpegPath,
		"WASHGATE_TORCH_LED":        &c.Camera.TorchLED,
		"WASHGATE_VIDEO_SYSFS_ROOT": &c.Camera.SysfsRoot,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("WASHGATE_VERIFY_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WASHGATE_VERIFY_TIMEOUT: %w", err)
		}
		c.VerifyTimeout = d
	}
	if v, ok := lookup("WASHGATE_CAMERA_FPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WASHGATE_CAMERA_FPS: %w", err)
		}
		c.Camera.FPS = n
	}
	if v, ok := lookup("WASHGATE_DEMO"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WASHGATE_DEMO: %w", err)
		}
		c.DemoMode = b
	}
	return nil
}

// Validate rejects settings the scanner cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.VerifyTimeout <= 0 {
		return fmt.Errorf("verify_timeout must be positive, got %s", c.VerifyTimeout)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("camera fps must be positive, got %d", c.Camera.FPS)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera frame size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	}
	return nil
}

// EnsureDataDir ensures the data directory exists
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// GetCorsConfig returns CORS configuration for the application
func (c *Config) GetCorsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}
