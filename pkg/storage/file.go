package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/livp123/netxconf/internal/utils/fileutil"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/errors"
)

// FileStore keeps every key as one file below a root directory.
// FileStore 将每个键保存为根目录下的一个文件。
type FileStore struct {
	root string
}

// NewFileStore creates a file-backed store rooted at root.
// NewFileStore 创建一个以 root 为根目录的文件存储。
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the directory keys are resolved against.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) path(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Get reads the file for key.
// Get 读取 key 对应的文件。
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(p) // #nosec G304 // path is validated by CleanKey
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError(key)
		}
		logger.Get(ctx).Warnf("[STORE] Failed to read %s: %v", key, err)
		return "", errors.NewStorageError("get", key, err)
	}
	return string(content), nil
}

// Put writes text for key atomically, creating parent directories.
// Put 原子写入 key 对应的文件，必要时创建父目录。
func (s *FileStore) Put(ctx context.Context, key, text string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
		return errors.NewStorageError("put", key, err)
	}
	if err := fileutil.AtomicWriteFile(p, []byte(text), 0600); err != nil {
		logger.Get(ctx).Warnf("[STORE] Failed to write %s: %v", key, err)
		return errors.NewStorageError("put", key, err)
	}
	logger.Get(ctx).Debugf("[STORE] Wrote %s (%d bytes)", key, len(text))
	return nil
}
