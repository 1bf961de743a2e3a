package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/livp123/netxconf/internal/utils/fileutil"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/livp123/netxconf/pkg/storage"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("storekey", func(fl validator.FieldLevel) bool {
		_, err := storage.CleanKey(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	// Report yaml field names in validation errors
	// 校验错误中使用 yaml 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// DefaultGlobalConfig returns the configuration used when no file overrides it.
// DefaultGlobalConfig 返回默认配置。
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Root:    DefaultStorageRoot,
		},
		Keys: KeysConfig{
			Rules:           KeyRules,
			Messages:        KeyMessages,
			Iptstate:        KeyIptstate,
			InterfacePrefix: KeyInterfacePrefix,
			Leases:          KeyLeases,
			Nmap:            KeyNmap,
			System:          KeySystem,
			Users:           KeyUsers,
			AuthSettings:    KeyAuthSettings,
		},
		Web: WebConfig{
			Enabled: false,
			Listen:  "127.0.0.1:11811",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: logger.LoggingConfig{
			Enabled:    false,
			Level:      "info",
			Format:     "console",
			Path:       "/var/log/netxconf/netxconf.log",
			MaxSize:    10, // 10MB
			MaxBackups: 3,
			MaxAge:     30, // 30 days
			Compress:   true,
		},
	}
}

// LoadGlobalConfig reads path over the defaults and validates the result.
// A missing file yields errors.ErrConfigNotFound.
// LoadGlobalConfig 在默认值之上读取配置文件并校验。
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	data, ok, err := fileutil.ReadOptional(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigNotFound, path)
	}
	return ParseGlobalConfig(data)
}

// ParseGlobalConfig decodes YAML over the defaults and validates the result.
func ParseGlobalConfig(data []byte) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and reports the first failing field.
// Validate 校验结构体标签，返回第一个失败的字段。
func (c *GlobalConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		ns := strings.TrimPrefix(fe.Namespace(), "GlobalConfig.")
		return fmt.Errorf("%w (%s)", errors.NewConfigError(ns, fe.Value()), fe.Tag())
	}
	return fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
}

// SaveGlobalConfig writes cfg to path atomically. When the file already
// exists, its comments and unknown keys are kept.
// SaveGlobalConfig 原子写入配置，保留已有文件中的注释和未知键。
func SaveGlobalConfig(path string, cfg *GlobalConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	existing, ok, readErr := fileutil.ReadOptional(path)
	if readErr == nil && ok {
		var fileNode, newNode yaml.Node
		if yaml.Unmarshal(existing, &fileNode) == nil && yaml.Unmarshal(data, &newNode) == nil && len(fileNode.Content) > 0 {
			MergeYamlNodes(&fileNode, &newNode)

			var buf bytes.Buffer
			enc := yaml.NewEncoder(&buf)
			enc.SetIndent(2)
			if err := enc.Encode(&fileNode); err != nil {
				return err
			}
			return fileutil.AtomicWriteFile(path, buf.Bytes(), 0600)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(path, data, 0600)
}

// MergeYamlNodes updates target (existing file) with source (new config),
// keeping target's comments and key order. Keys only in source are appended.
// MergeYamlNodes 用 source 更新 target，保留 target 的注释和键顺序。
func MergeYamlNodes(target, source *yaml.Node) {
	if target.Kind == yaml.DocumentNode {
		if source.Kind == yaml.DocumentNode && len(target.Content) > 0 && len(source.Content) > 0 {
			MergeYamlNodes(target.Content[0], source.Content[0])
		}
		return
	}

	if target.Kind != yaml.MappingNode || source.Kind != yaml.MappingNode {
		if source.HeadComment == "" {
			source.HeadComment = target.HeadComment
		}
		if source.LineComment == "" {
			source.LineComment = target.LineComment
		}
		if source.FootComment == "" {
			source.FootComment = target.FootComment
		}
		*target = *source
		return
	}

	sourceMap := make(map[string]int)
	for i := 0; i+1 < len(source.Content); i += 2 {
		sourceMap[source.Content[i].Value] = i
	}

	var newContent []*yaml.Node
	seen := make(map[string]bool)
	for i := 0; i+1 < len(target.Content); i += 2 {
		tKey, tVal := target.Content[i], target.Content[i+1]
		if sIdx, ok := sourceMap[tKey.Value]; ok {
			MergeYamlNodes(tVal, source.Content[sIdx+1])
			seen[tKey.Value] = true
		}
		newContent = append(newContent, tKey, tVal)
	}
	for i := 0; i+1 < len(source.Content); i += 2 {
		if !seen[source.Content[i].Value] {
			newContent = append(newContent, source.Content[i], source.Content[i+1])
		}
	}
	target.Content = newContent
}
