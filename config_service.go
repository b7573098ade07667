package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"slidedeck/config"
)

// ConfigProvider reads the configuration.
type ConfigProvider interface {
	GetConfig() (config.Config, error)
	GetEffectiveConfig() (config.Config, error)
}

// ConfigPersister writes the configuration.
type ConfigPersister interface {
	SaveConfig(cfg config.Config) error
}

// ConfigNotifier announces saved configurations.
type ConfigNotifier interface {
	OnConfigChanged(callback func(config.Config))
}

const (
	configFileName = "config.json"
	envFileName    = ".env"
)

// ConfigService loads config.json from the storage directory and layers
// .env and process environment overrides on top of it.
type ConfigService struct {
	storageDir string
	logger     func(string)
	callbacks  []func(config.Config)
	environ    func() []string
	mu         sync.RWMutex
}

// NewConfigService creates a ConfigService reading the process environment.
func NewConfigService(logger func(string)) *ConfigService {
	return &ConfigService{
		logger:    logger,
		callbacks: make([]func(config.Config), 0),
		environ:   os.Environ,
	}
}

func (cs *ConfigService) Name() string {
	return serviceConfig
}

// Initialize makes sure the storage directory exists.
func (cs *ConfigService) Initialize(ctx context.Context) error {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return WrapError(serviceConfig, "Initialize", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return WrapError(serviceConfig, "Initialize", fmt.Errorf("failed to create storage dir: %w", err))
	}
	cs.log(fmt.Sprintf("ConfigService initialized, storage dir: %s", dir))
	return nil
}

func (cs *ConfigService) Shutdown() error {
	return nil
}

// GetStorageDir returns the storage directory, ~/SlideDeck unless set.
func (cs *ConfigService) GetStorageDir() (string, error) {
	cs.mu.RLock()
	sd := cs.storageDir
	cs.mu.RUnlock()

	if sd != "" {
		return sd, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError(serviceConfig, "GetStorageDir", err)
	}
	return filepath.Join(home, "SlideDeck"), nil
}

// SetStorageDir overrides the storage directory.
func (cs *ConfigService) SetStorageDir(dir string) {
	cs.mu.Lock()
	cs.storageDir = dir
	cs.mu.Unlock()
}

// GetConfigPath returns the path of config.json.
func (cs *ConfigService) GetConfigPath() (string, error) {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetConfig loads config.json. A missing file yields the defaults. Keys
// absent from the file keep their default values.
func (cs *ConfigService) GetConfig() (config.Config, error) {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return config.Config{}, err
	}
	cfg := config.Default()

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return config.Config{}, WrapError(serviceConfig, "GetConfig", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return config.Config{}, WrapError(serviceConfig, "GetConfig", err)
		}
	}

	cfg.ApplyDefaults()
	if cfg.DataDir == "" {
		cfg.DataDir = dir
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, "logs")
	}
	return cfg, nil
}

// GetEffectiveConfig is GetConfig with environment overrides applied. The
// process environment wins over the .env file in the storage directory.
func (cs *ConfigService) GetEffectiveConfig() (config.Config, error) {
	cfg, err := cs.GetConfig()
	if err != nil {
		return config.Config{}, err
	}
	env, err := cs.overrides()
	if err != nil {
		return config.Config{}, WrapError(serviceConfig, "GetEffectiveConfig", err)
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return config.Config{}, WrapError(serviceConfig, "GetEffectiveConfig", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapError(serviceConfig, "GetEffectiveConfig", err)
	}
	return cfg, nil
}

func (cs *ConfigService) overrides() (map[string]string, error) {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	fileEnv, err := godotenv.Read(filepath.Join(dir, envFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", envFileName, err)
	default:
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	for _, kv := range cs.environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, config.EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// SaveConfig validates cfg, writes it atomically and runs the change
// callbacks.
func (cs *ConfigService) SaveConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return WrapError(serviceConfig, "SaveConfig", err)
	}
	dir, err := cs.GetStorageDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return WrapError(serviceConfig, "SaveConfig", fmt.Errorf("failed to create storage dir: %w", err))
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return WrapError(serviceConfig, "SaveConfig", fmt.Errorf("failed to marshal config: %w", err))
	}
	if err := writeFileAtomic(filepath.Join(dir, configFileName), data, 0644); err != nil {
		return WrapError(serviceConfig, "SaveConfig", err)
	}

	cs.log("Configuration saved to disk")
	cs.NotifyConfigChanged(cfg)
	return nil
}

// writeFileAtomic writes to a temporary file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, perm); err != nil {
		return err
	}
	return os.Rename(name, path)
}

// OnConfigChanged registers a callback run after every successful save.
func (cs *ConfigService) OnConfigChanged(callback func(config.Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.callbacks = append(cs.callbacks, callback)
}

// NotifyConfigChanged runs the registered callbacks with cfg.
func (cs *ConfigService) NotifyConfigChanged(cfg config.Config) {
	cs.mu.RLock()
	cbs := make([]func(config.Config), len(cs.callbacks))
	copy(cbs, cs.callbacks)
	cs.mu.RUnlock()

	for _, cb := range cbs {
		cb(cfg)
	}
}

func (cs *ConfigService) log(msg string) {
	if cs.logger != nil {
		cs.logger(msg)
	}
}
