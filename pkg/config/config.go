/*
Package config manages TOML config for suggestd.

The file is created with defaults the first time it is looked up. Sections
that fail to decode fall back to defaults individually, so a typo in one
table does not discard the rest of the file.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/suggestd/internal/utils"
	"github.com/charmbracelet/log"
)

// Index backends.
const (
	BackendLocal   = "local"
	BackendElastic = "elastic"
)

// Document source kinds.
const (
	SourceArticle = "article"
	SourceFinder  = "finder"
)

// Config holds the entire config structure
type Config struct {
	Log      LogConfig      `toml:"log"`
	Index    IndexConfig    `toml:"index"`
	Elastic  ElasticConfig  `toml:"elastic"`
	Source   SourceConfig   `toml:"source"`
	Extract  ExtractConfig  `toml:"extract"`
	Server   ServerConfig   `toml:"server"`
	Populate PopulateConfig `toml:"populate"`
}

// LogConfig selects the global log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// IndexConfig selects the completion index backend.
type IndexConfig struct {
	Backend      string `toml:"backend"`
	SuggestIndex string `toml:"suggest_index"`
	LocalPath    string `toml:"local_path"`
}

// ElasticConfig holds the Elasticsearch connection.
type ElasticConfig struct {
	Addresses     []string `toml:"addresses"`
	Username      string   `toml:"username"`
	Password      string   `toml:"password"`
	ArticlesIndex string   `toml:"articles_index"`
}

// SourceConfig describes where documents come from.
type SourceConfig struct {
	Kind            string   `toml:"kind"`
	DBPath          string   `toml:"db_path"`
	TranslationsDir string   `toml:"translations_dir"`
	Locales         []string `toml:"locales"`
	PageSize        int      `toml:"page_size"`
}

// ExtractConfig tunes keyword extraction.
type ExtractConfig struct {
	Locale      string `toml:"locale"`
	Concurrency int    `toml:"concurrency"`
}

// ServerConfig has query server options.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	QueryTimeoutMS int    `toml:"query_timeout_ms"`
}

// PopulateConfig has batch rebuild options. A zero timeout means no deadline.
type PopulateConfig struct {
	TimeoutMS int `toml:"timeout_ms"`
}

// QueryTimeout returns the per-request deadline for suggestion queries.
func (s ServerConfig) QueryTimeout() time.Duration {
	return time.Duration(s.QueryTimeoutMS) * time.Millisecond
}

// Timeout returns the deadline for a whole populate run.
func (p PopulateConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/suggestd
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "suggestd")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/suggestd/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		customConfigPath = utils.ExpandPath(customConfigPath)
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Index: IndexConfig{
			Backend:      BackendLocal,
			SuggestIndex: "suggest",
			LocalPath:    "~/.config/suggestd/suggest.db",
		},
		Elastic: ElasticConfig{
			Addresses:     []string{"http://localhost:9200"},
			ArticlesIndex: "articles",
		},
		Source: SourceConfig{
			Kind:            SourceArticle,
			DBPath:          "data/articles.db",
			TranslationsDir: "translations",
			Locales:         []string{"en", "fr"},
			PageSize:        100,
		},
		Extract: ExtractConfig{
			Locale:      "fr",
			Concurrency: 1,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			QueryTimeoutMS: 2000,
		},
		Populate: PopulateConfig{TimeoutMS: 0},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		if val, ok := utils.ExtractString(section, "level"); ok {
			config.Log.Level = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "elastic"); ok {
		extractElasticConfig(section, &config.Elastic)
	}
	if section, ok := utils.ExtractSection(tempConfig, "source"); ok {
		extractSourceConfig(section, &config.Source)
	}
	if section, ok := utils.ExtractSection(tempConfig, "extract"); ok {
		if val, ok := utils.ExtractString(section, "locale"); ok {
			config.Extract.Locale = val
		}
		if val, ok := utils.ExtractInt64(section, "concurrency"); ok {
			config.Extract.Concurrency = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		if val, ok := utils.ExtractString(section, "addr"); ok {
			config.Server.Addr = val
		}
		if val, ok := utils.ExtractInt64(section, "query_timeout_ms"); ok {
			config.Server.QueryTimeoutMS = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "populate"); ok {
		if val, ok := utils.ExtractInt64(section, "timeout_ms"); ok {
			config.Populate.TimeoutMS = val
		}
	}
	return config, nil
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractString(data, "backend"); ok {
		index.Backend = val
	}
	if val, ok := utils.ExtractString(data, "suggest_index"); ok {
		index.SuggestIndex = val
	}
	if val, ok := utils.ExtractString(data, "local_path"); ok {
		index.LocalPath = val
	}
}

func extractElasticConfig(data map[string]any, es *ElasticConfig) {
	if val, ok := utils.ExtractStrings(data, "addresses"); ok {
		es.Addresses = val
	}
	if val, ok := utils.ExtractString(data, "username"); ok {
		es.Username = val
	}
	if val, ok := utils.ExtractString(data, "password"); ok {
		es.Password = val
	}
	if val, ok := utils.ExtractString(data, "articles_index"); ok {
		es.ArticlesIndex = val
	}
}

func extractSourceConfig(data map[string]any, source *SourceConfig) {
	if val, ok := utils.ExtractString(data, "kind"); ok {
		source.Kind = val
	}
	if val, ok := utils.ExtractString(data, "db_path"); ok {
		source.DBPath = val
	}
	if val, ok := utils.ExtractString(data, "translations_dir"); ok {
		source.TranslationsDir = val
	}
	if val, ok := utils.ExtractStrings(data, "locales"); ok {
		source.Locales = val
	}
	if val, ok := utils.ExtractInt64(data, "page_size"); ok {
		source.PageSize = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
