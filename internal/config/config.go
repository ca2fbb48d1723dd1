package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Download DownloadConfig `yaml:"download"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	APIKey       string        `yaml:"api_key"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type DownloadConfig struct {
	// WorkDir holds one scratch directory per in-flight request.
	WorkDir   string   `yaml:"work_dir"`
	Format    string   `yaml:"format"`
	YTDLPPath string   `yaml:"ytdlp_path"`
	ExtraArgs []string `yaml:"extra_args"`

	Timeout time.Duration `yaml:"timeout"`
	// MaxConcurrent bounds parallel fetches; a negative value removes the bound.
	MaxConcurrent int `yaml:"max_concurrent"`

	// RateLimit is requests per second across both download routes; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	SweepInterval time.Duration `yaml:"sweep_interval"`
	OrphanMaxAge  time.Duration `yaml:"orphan_max_age"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
// A .env file in the working directory, if present, is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	// Write timeout covers the whole fetch plus streaming the file back.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Minute
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Download.WorkDir == "" {
		cfg.Download.WorkDir = filepath.Join(os.TempDir(), "vdl")
	}
	if cfg.Download.Format == "" {
		cfg.Download.Format = "best"
	}
	if cfg.Download.YTDLPPath == "" {
		cfg.Download.YTDLPPath = "yt-dlp"
	}
	if cfg.Download.Timeout == 0 {
		cfg.Download.Timeout = 10 * time.Minute
	}
	if cfg.Download.MaxConcurrent == 0 {
		cfg.Download.MaxConcurrent = 4
	}
	if cfg.Download.RateLimit > 0 && cfg.Download.RateBurst == 0 {
		cfg.Download.RateBurst = 1
	}
	if cfg.Download.SweepInterval == 0 {
		cfg.Download.SweepInterval = 5 * time.Minute
	}
	if cfg.Download.OrphanMaxAge == 0 {
		cfg.Download.OrphanMaxAge = time.Hour
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VDL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VDL_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("VDL_WORK_DIR"); v != "" {
		cfg.Download.WorkDir = v
	}
	if v := os.Getenv("VDL_FORMAT"); v != "" {
		cfg.Download.Format = v
	}
	if v := os.Getenv("VDL_YTDLP_PATH"); v != "" {
		cfg.Download.YTDLPPath = v
	}
	if v := os.Getenv("VDL_YTDLP_EXTRA_ARGS"); v != "" {
		cfg.Download.ExtraArgs = strings.Fields(v)
	}
	if v := os.Getenv("VDL_DOWNLOAD_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Download.Timeout = d
		}
	}
	if v := os.Getenv("VDL_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Download.MaxConcurrent = n
		}
	}
	if v := os.Getenv("VDL_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Download.RateLimit = f
		}
	}
	if v := os.Getenv("VDL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VDL_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
