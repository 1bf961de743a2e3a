package config

import (
	"github.com/livp123/netxconf/internal/runtime"
)

/**
 * GetConfigPath resolves the configuration file path.
 * It prioritizes the CLI flag (runtime.ConfigPath) over the default.
 * GetConfigPath 解析配置文件路径。
 * 优先使用 CLI 标志 (runtime.ConfigPath)，其次是默认值。
 */
func GetConfigPath() string {
	if runtime.ConfigPath != "" {
		return runtime.ConfigPath
	}
	return DefaultConfigPath
}

// InterfaceKey returns the store key holding the config of one interface.
// InterfaceKey 返回某个网卡配置所在的存储键。
func (k KeysConfig) InterfaceKey(ifName string) string {
	return k.InterfacePrefix + ifName
}
