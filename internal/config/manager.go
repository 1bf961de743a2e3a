package config

import (
	"sync"

	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/errors"
)

// ConfigManager holds the loaded configuration behind a lock so the API
// server and CLI can share one instance.
// ConfigManager 以加锁方式持有已加载的配置，供 API 服务和 CLI 共享。
type ConfigManager struct {
	configPath string
	mutex      sync.RWMutex
	config     *GlobalConfig
}

// NewConfigManager creates a new configuration manager instance
// NewConfigManager 创建新的配置管理器实例
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig loads the configuration from the manager's path. A missing file
// falls back to defaults.
// LoadConfig 从指定路径加载配置，文件不存在时使用默认值。
func (cm *ConfigManager) LoadConfig() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cfg, err := LoadGlobalConfig(cm.configPath)
	if errors.Is(err, errors.ErrConfigNotFound) {
		logger.Get(nil).Debugf("[CONFIG] %s not found, using defaults", cm.configPath)
		cm.config = DefaultGlobalConfig()
		return nil
	}
	if err != nil {
		return err
	}

	cm.config = cfg
	return nil
}

// SaveConfig saves the current configuration to the manager's path
// SaveConfig 将当前配置保存到指定路径
func (cm *ConfigManager) SaveConfig() error {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	if cm.config == nil {
		return nil
	}
	if err := cm.config.Validate(); err != nil {
		return err
	}
	return SaveGlobalConfig(cm.configPath, cm.config)
}

// GetConfig returns a copy of the current configuration
// GetConfig 返回当前配置的副本
func (cm *ConfigManager) GetConfig() *GlobalConfig {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	if cm.config == nil {
		return nil
	}

	cfgCopy := *cm.config
	return &cfgCopy
}

// UpdateConfig updates the current configuration
// UpdateConfig 更新当前配置
func (cm *ConfigManager) UpdateConfig(newConfig *GlobalConfig) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.config = newConfig
}

func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}
