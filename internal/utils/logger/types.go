package logger

// LoggingConfig defines the configuration for logging.
// LoggingConfig 定义日志配置。
type LoggingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Enabled: 是否写入日志文件（否则输出到 stderr）
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Level: 日志级别（debug, info, warn, error）
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	// Format: 输出格式（console, json）
	Path string `yaml:"path" validate:"required_if=Enabled true"`
	// Path: 日志文件路径
	MaxSize int `yaml:"max_size" validate:"gte=0"`
	// MaxSize: 轮转前的最大大小（MB）
	MaxBackups int `yaml:"max_backups" validate:"gte=0"`
	// MaxBackups: 保留的旧文件最大数量
	MaxAge int `yaml:"max_age" validate:"gte=0"`
	// MaxAge: 保留旧文件的最大天数
	Compress bool `yaml:"compress"`
	// Compress: 是否压缩旧文件
}
