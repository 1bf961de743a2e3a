// Package common holds the state and helpers shared by netxconf commands.
// Package common 包含各命令共享的状态和辅助函数。
package common

import (
	"sync"

	"github.com/livp123/netxconf/internal/config"
	"github.com/livp123/netxconf/internal/ruleset"
	"github.com/livp123/netxconf/pkg/storage"
)

var (
	// MockStore allows tests to inject a store
	// MockStore 允许测试注入存储
	MockStore storage.Store

	mu        sync.RWMutex
	globalCfg *config.GlobalConfig
)

// SetConfig records the configuration loaded by the root command.
// SetConfig 保存根命令加载的配置。
func SetConfig(cfg *config.GlobalConfig) {
	mu.Lock()
	defer mu.Unlock()
	globalCfg = cfg
}

// Config returns the loaded configuration, or the defaults before loading.
// Config 返回已加载的配置，未加载时返回默认配置。
func Config() *config.GlobalConfig {
	mu.RLock()
	defer mu.RUnlock()
	if globalCfg == nil {
		return config.DefaultGlobalConfig()
	}
	return globalCfg
}

// GetStore returns the configured store.
// GetStore 返回配置的存储。
func GetStore() (storage.Store, error) {
	if MockStore != nil {
		return MockStore, nil
	}
	cfg := Config()
	return storage.NewStore(cfg.Storage.Backend, cfg.Storage.Root)
}

// GetRules returns a ruleset service over the configured rule key.
// GetRules 返回基于配置规则键的 ruleset 服务。
func GetRules() (*ruleset.Service, error) {
	store, err := GetStore()
	if err != nil {
		return nil, err
	}
	return ruleset.NewService(store, Config().Keys.Rules), nil
}
