package config

import (
	"github.com/livp123/netxconf/internal/utils/logger"
)

// GlobalConfig is the top-level configuration file layout.
// GlobalConfig 是配置文件的顶层结构。
type GlobalConfig struct {
	Storage StorageConfig        `yaml:"storage"`
	Keys    KeysConfig           `yaml:"keys"`
	Web     WebConfig            `yaml:"web"`
	Metrics MetricsConfig        `yaml:"metrics"`
	Logging logger.LoggingConfig `yaml:"logging"`
}

// StorageConfig selects the key/value backend.
// StorageConfig 选择键值存储后端。
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=file memory"`
	// Backend: 存储后端（file, memory）
	Root string `yaml:"root" validate:"required_if=Backend file"`
	// Root: 文件后端的根目录
}

// KeysConfig names the store keys every component reads and writes.
// KeysConfig 定义各组件读写的存储键。
type KeysConfig struct {
	Rules           string `yaml:"rules" validate:"required,storekey"`
	Messages        string `yaml:"messages" validate:"required,storekey"`
	Iptstate        string `yaml:"iptstate" validate:"required,storekey"`
	InterfacePrefix string `yaml:"interface_prefix" validate:"required"`
	Leases          string `yaml:"leases" validate:"required,storekey"`
	Nmap            string `yaml:"nmap" validate:"required,storekey"`
	System          string `yaml:"system" validate:"required,storekey"`
	Users           string `yaml:"users" validate:"required,storekey"`
	AuthSettings    string `yaml:"auth_settings" validate:"required,storekey"`
}

// WebConfig configures the HTTP API server.
// WebConfig 配置 HTTP API 服务。
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen" validate:"omitempty,hostname_port"`
	// Listen: 监听地址，例如 127.0.0.1:11811
}

// MetricsConfig configures the Prometheus endpoint on the API server.
// MetricsConfig 配置 API 服务上的 Prometheus 端点。
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}
