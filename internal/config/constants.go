package config

const (
	// DefaultConfigPath is the standard location for the netxconf configuration file.
	// DefaultConfigPath 是 netxconf 配置文件的标准位置。
	DefaultConfigPath = "/etc/netxconf/config.yaml"

	// DefaultStorageRoot is where the file backend keeps its keys.
	// DefaultStorageRoot 是文件存储后端保存数据的目录。
	DefaultStorageRoot = "/var/lib/netxconf"

	// Store keys. The rule document key is fixed at configuration time.
	// 存储键名，规则文档的键在配置时确定。
	KeyRules           = "iptables/rules"
	KeyMessages        = "logs/messages"
	KeyIptstate        = "status/iptstate"
	KeyInterfacePrefix = "config/interface/"
	KeyLeases          = "status/dhcpd.leases"
	KeyNmap            = "status/nmap.xml"
	KeySystem          = "status/system-data.json"
	KeyUsers           = "auth/users.json"
	KeyAuthSettings    = "auth/settings.json"
)
