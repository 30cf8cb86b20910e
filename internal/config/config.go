// Package config loads settings from defaults, an optional YAML file, .env
// and LIVETS_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "LIVETS"

type HTTP struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	CloneRate   float64  `mapstructure:"clone_rate"`
	CloneBurst  int      `mapstructure:"clone_burst"`

	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type Store struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type Audio struct {
	Dir         string `mapstructure:"dir"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

type Auth struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type Jobs struct {
	PurgeSchedule string `mapstructure:"purge_schedule"`
}

type Transcribe struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

type Insight struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

type ElevenLabs struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type TTS struct {
	Type      string  `mapstructure:"type"`
	Voice     string  `mapstructure:"voice"`
	Speed     float64 `mapstructure:"speed"`
	Volume    float64 `mapstructure:"volume"`
	CachePath string  `mapstructure:"cache_path"`
}

type Prompts struct {
	File string `mapstructure:"file"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	DataDir    string     `mapstructure:"data_dir"`
	HTTP       HTTP       `mapstructure:"http"`
	Store      Store      `mapstructure:"store"`
	Audio      Audio      `mapstructure:"audio"`
	Auth       Auth       `mapstructure:"auth"`
	Jobs       Jobs       `mapstructure:"jobs"`
	Transcribe Transcribe `mapstructure:"transcribe"`
	Insight    Insight    `mapstructure:"insight"`
	ElevenLabs ElevenLabs `mapstructure:"elevenlabs"`
	TTS        TTS        `mapstructure:"tts"`
	Prompts    Prompts    `mapstructure:"prompts"`
	Log        Log        `mapstructure:"log"`
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".livetsstemme")
	}
	return ".livetsstemme"
}

// SetDefaults registers every key so env overrides work without a file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("http.clone_rate", 1.0)
	v.SetDefault("http.clone_burst", 3)
	v.SetDefault("http.trusted_proxies", []string{})

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.dsn", "")

	v.SetDefault("audio.dir", "")
	v.SetDefault("audio.max_upload_mb", 50)

	v.SetDefault("auth.session_ttl", 720*time.Hour)
	v.SetDefault("jobs.purge_schedule", "@hourly")

	v.SetDefault("transcribe.provider", "mock")
	v.SetDefault("transcribe.base_url", "")
	v.SetDefault("transcribe.model", "whisper-1")

	v.SetDefault("insight.provider", "static")
	v.SetDefault("insight.model", "gemini-2.5-flash")

	v.SetDefault("elevenlabs.base_url", "https://api.elevenlabs.io")

	v.SetDefault("tts.type", "auto") // Auto-select best engine
	v.SetDefault("tts.voice", "default")
	v.SetDefault("tts.speed", 1.0)
	v.SetDefault("tts.volume", 0.8)
	v.SetDefault("tts.cache_path", "")

	v.SetDefault("prompts.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance with defaults, search paths and env binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("livetsstemme")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.livetsstemme")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Vendor keys keep their conventional names.
	_ = v.BindEnv("elevenlabs.api_key", "ELEVENLABS_API_KEY", EnvPrefix+"_ELEVENLABS_API_KEY")
	_ = v.BindEnv("transcribe.api_key", "OPENAI_API_KEY", EnvPrefix+"_TRANSCRIBE_API_KEY")
	_ = v.BindEnv("insight.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY", EnvPrefix+"_INSIGHT_API_KEY")
	return v
}

// LoadDotEnv reads .env files into the process environment. Missing files
// are ignored and existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the config file (explicit path or search paths) and decodes
// everything into a Config.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Debug("Loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.resolvePaths()
	return cfg, cfg.Validate()
}

func (c *Config) resolvePaths() {
	if c.Audio.Dir == "" {
		c.Audio.Dir = filepath.Join(c.DataDir, "audio")
	}
	if c.TTS.CachePath == "" {
		c.TTS.CachePath = filepath.Join(c.DataDir, "tts-cache")
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		c.Store.DSN = filepath.Join(c.DataDir, "livetsstemme.db")
	}
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "file", "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be positive")
	}
	if c.Audio.MaxUploadMB <= 0 {
		return errors.New("audio.max_upload_mb must be positive")
	}
	return nil
}

// SessionFile is where the CLI keeps its signed in token.
func (c Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session")
}

// SetupLogging applies log.level and log.format to the standard logger.
func SetupLogging(l Log) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)

	switch l.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	return nil
}
