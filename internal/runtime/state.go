package runtime

// ConfigPath stores the path to the configuration file provided via CLI flags.
// ConfigPath 存储通过 CLI 标志提供的配置文件路径。
var ConfigPath string

// StoreBackend overrides storage.backend from the CLI when set.
// StoreBackend 非空时覆盖配置中的 storage.backend。
var StoreBackend string
