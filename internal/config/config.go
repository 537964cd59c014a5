package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// legacyEnv maps config keys to the environment variable names the tool
// has always honoured. They take precedence over MOCKEXAM_* names.
var legacyEnv = map[string]string{
	"library.past_tests_db": "PAST_TESTS_DB",
	"library.problem_sets":  "PROBLEM_SETS_DIR",
	"library.output":        "OUTPUT_DIR",
	"ocr.enabled":           "OCR_ENABLED",
	"ocr.tesseract_cmd":     "TESSERACT_CMD",
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults, environment bindings and config file.
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	setDefaults(v, DefaultConfig())

	// Environment variables with MOCKEXAM_ prefix, e.g. MOCKEXAM_OCR_ENGINE
	v.SetEnvPrefix("MOCKEXAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "MOCKEXAM_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, legacy, prefixed); err != nil {
			return fmt.Errorf("failed to bind %s: %w", legacy, err)
		}
	}

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mockexam")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("library.past_tests_db", d.Library.PastTestsDB)
	v.SetDefault("library.problem_sets", d.Library.ProblemSets)
	v.SetDefault("library.output", d.Library.Output)

	v.SetDefault("ocr.enabled", d.OCR.Enabled)
	v.SetDefault("ocr.engine", d.OCR.Engine)
	v.SetDefault("ocr.tesseract_cmd", d.OCR.TesseractCmd)
	v.SetDefault("ocr.languages", d.OCR.Languages)
	v.SetDefault("ocr.dpi", d.OCR.DPI)
	v.SetDefault("ocr.page_timeout", d.OCR.PageTimeout)
	v.SetDefault("ocr.workers", d.OCR.Workers)
	v.SetDefault("ocr.max_retries", d.OCR.MaxRetries)
	v.SetDefault("ocr.prefer_text_layer", d.OCR.PreferTextLayer)
	v.SetDefault("ocr.min_text_ratio", d.OCR.MinTextRatio)
	v.SetDefault("ocr.renderer", d.OCR.Renderer)
	v.SetDefault("ocr.pdftoppm_cmd", d.OCR.PdftoppmCmd)
	v.SetDefault("ocr.openai.model", d.OCR.OpenAI.Model)
	v.SetDefault("ocr.openai.api_key", d.OCR.OpenAI.APIKey)
	v.SetDefault("ocr.openai.base_url", d.OCR.OpenAI.BaseURL)

	v.SetDefault("page_map.duplicate_policy", d.PageMap.DuplicatePolicy)
	v.SetDefault("page_map.marker_policy", d.PageMap.MarkerPolicy)
}

// load parses the current viper state into a validated Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
// Invalid edits are ignored and the previous config stays active.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// OpenAIKey returns the vision engine API key with ${ENV_VAR} references resolved.
func (c *Config) OpenAIKey() string {
	return ResolveEnvVars(c.OCR.OpenAI.APIKey)
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# mockexam configuration
# Legacy environment variables override these values:
#   PAST_TESTS_DB, PROBLEM_SETS_DIR, OUTPUT_DIR, OCR_ENABLED, TESSERACT_CMD
# Every other key can be set as MOCKEXAM_<SECTION>_<KEY>, e.g. MOCKEXAM_OCR_ENGINE=gosseract

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
