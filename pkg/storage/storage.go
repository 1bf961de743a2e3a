package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/livp123/netxconf/pkg/errors"
)

// Backend names accepted by NewStore.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Store is an opaque key/value blob store. Keys are slash separated paths
// such as "iptables/rules". The rule codec only ever sees text.
// Store 是一个不透明的键值文本存储。
type Store interface {
	// Get returns the text stored under key, or an error wrapping
	// errors.ErrNotFound when the key is absent.
	// Get 返回 key 下的文本；不存在时返回包装了 ErrNotFound 的错误。
	Get(ctx context.Context, key string) (string, error)
	// Put replaces the text under key.
	// Put 替换 key 下的文本。
	Put(ctx context.Context, key, text string) error
}

// NewStore builds the store selected by backend. root is only used by the
// file backend.
// NewStore 根据后端名称创建存储。
func NewStore(backend, root string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(root), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unsupported storage backend: %s", backend)
}

// CleanKey validates a key and returns it in canonical form. Absolute keys,
// empty keys and keys that climb out of the root are rejected.
// CleanKey 校验键并返回规范形式，拒绝绝对路径和目录穿越。
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", errors.NewKeyError(key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.NewKeyError(key)
	}
	return clean, nil
}
