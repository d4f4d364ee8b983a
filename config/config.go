package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "COLLAB"

var (
	config *Config
	path   string
	mu     sync.Mutex
	v      *viper.Viper
)

// Config represents the configuration implementation.
type Config struct {
	AppName    string
	RunMode    string
	Logger     *Logger
	Data       *Data
	Queue      *Queue
	Validation *Validation
	Delivery   *Delivery
	Deletion   *Deletion
	Observes   *Observes
	Messaging  *Messaging
	Viper      *viper.Viper
}

// IsProd reports whether the application runs in release mode.
func (c *Config) IsProd() bool {
	return c.RunMode == "release"
}

// Init loads the configuration from configPath and sets it globally.
func Init(configPath string) (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	path = configPath
	config = cfg
	return cfg, nil
}

// GetConfig returns the configuration loaded by Init.
func GetConfig() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	return config, nil
}

// LoadConfig loads the configuration from the file.
// An empty configPath searches the default locations; a missing file there is not an
// error and yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	nv := viper.New()
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if configPath != "" {
		nv.SetConfigFile(configPath)
		if err := nv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		nv.SetConfigName("config")
		nv.AddConfigPath("/etc/collab")
		nv.AddConfigPath("$HOME/.collab")
		nv.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			nv.AddConfigPath(filepath.Dir(ex))
		}
		if err := nv.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v = nv
	return fromViper(nv), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:    stringSetting(v, "app_name", "collab"),
		RunMode:    stringSetting(v, "run_mode", "debug"),
		Logger:     getLoggerConfig(v),
		Data:       getDataConfig(v),
		Queue:      getQueueConfig(v),
		Validation: getValidationConfig(v),
		Delivery:   getDeliveryConfig(v),
		Deletion:   getDeletionConfig(v),
		Observes:   getObservesConfig(v),
		Messaging:  getMessagingConfig(v),
		Viper:      v,
	}
}

// Reload reloads the configuration from the file.
func Reload() error {
	mu.Lock()
	defer mu.Unlock()

	newConfig, err := LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	config = newConfig
	return nil
}

// Watch watches the configuration file and reloads it when it changes.
func Watch(callback func(*Config)) {
	mu.Lock()
	wv := v
	mu.Unlock()
	if wv == nil {
		return
	}
	wv.OnConfigChange(func(e fsnotify.Event) {
		if err := Reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
			return
		}
		cfg, err := GetConfig()
		if err == nil {
			callback(cfg)
		}
	})
	wv.WatchConfig()
}
