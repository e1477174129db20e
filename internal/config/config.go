package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the gateway
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration. An empty path runs the
// gateway with in-memory transcripts and no admin surface.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UpstreamConfig holds analysis backend configuration
type UpstreamConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Protocol string        `mapstructure:"protocol"` // query or chat
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AudioConfig holds speech configuration. Capture and playback commands are
// only used in kiosk deployments where the gateway host owns the audio
// devices; leaving them empty disables local audio.
type AudioConfig struct {
	Voice           string `mapstructure:"voice"`
	CaptureCommand  string `mapstructure:"capture_command"`
	PlaybackCommand string `mapstructure:"playback_command"`
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	// Pick up a local .env if present
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CHATDECK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", "./data/chatdeck.db")

	v.SetDefault("upstream.base_url", "http://localhost:5000")
	v.SetDefault("upstream.protocol", "query")
	v.SetDefault("upstream.timeout", "30s")

	v.SetDefault("audio.voice", "alloy")
	v.SetDefault("audio.capture_command", "")
	v.SetDefault("audio.playback_command", "")

	v.SetDefault("upload.max_size_bytes", 10<<20)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
