// Package config loads application settings from an optional factdeck.yaml
// layered under FACTDECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds everything the CLI wires at startup. Completion backend
// selection lives in llm.Discover; this covers paths and pipeline knobs.
type Config struct {
	// DBPath is the SQLite database file. Empty means the default XDG
	// location.
	DBPath string `mapstructure:"db_path"`

	// ModelsDir is where model artifacts are staged.
	ModelsDir string `mapstructure:"models_dir"`

	// TopicsDir holds <topic>.txt source files.
	TopicsDir string `mapstructure:"topics_dir"`

	// AssetsDir optionally holds bundled model seeds. Empty disables
	// asset seeding.
	AssetsDir string `mapstructure:"assets_dir"`

	// ArtifactBaseURL is the mirror model artifacts are acquired from.
	ArtifactBaseURL string `mapstructure:"artifact_base_url"`

	// ChunkSize is the extraction chunk length in runes.
	ChunkSize int `mapstructure:"chunk_size"`

	// MaxFacts caps facts per run in model mode.
	MaxFacts int `mapstructure:"max_facts"`

	// MaxFactsFallback caps facts per run in degraded mode.
	MaxFactsFallback int `mapstructure:"max_facts_fallback"`

	// QuizInterval is the facts-per-quiz ratio.
	QuizInterval int `mapstructure:"quiz_interval"`

	// Verbose enables development logging.
	Verbose bool `mapstructure:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ModelsDir:        defaultDir("models"),
		TopicsDir:        "topics",
		ArtifactBaseURL:  "https://huggingface.co/factdeck/models/resolve/main",
		ChunkSize:        6000,
		MaxFacts:         120,
		MaxFactsFallback: 60,
		QuizInterval:     8,
	}
}

// Load reads configuration from path (or the standard search paths when
// path is empty) and the environment. A missing config file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("factdeck")
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if cfgHome, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(cfgHome, "factdeck"))
		}
	}

	v.SetEnvPrefix("FACTDECK")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("models_dir", def.ModelsDir)
	v.SetDefault("topics_dir", def.TopicsDir)
	v.SetDefault("assets_dir", def.AssetsDir)
	v.SetDefault("artifact_base_url", def.ArtifactBaseURL)
	v.SetDefault("chunk_size", def.ChunkSize)
	v.SetDefault("max_facts", def.MaxFacts)
	v.SetDefault("max_facts_fallback", def.MaxFactsFallback)
	v.SetDefault("quiz_interval", def.QuizInterval)
	v.SetDefault("verbose", def.Verbose)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func defaultDir(sub string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return sub
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "factdeck", sub)
}
