package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/livp123/netxconf/pkg/storage"
)

// Keys locates the auth documents in the store.
type Keys struct {
	Users    string
	Settings string
}

// LoadUsers reads the users document. A missing document is an empty set.
// LoadUsers 读取用户文档，文档不存在时返回空集合。
func LoadUsers(ctx context.Context, store storage.Store, key string) (map[string]User, error) {
	text, err := store.Get(ctx, key)
	if errors.Is(err, errors.ErrNotFound) {
		return map[string]User{}, nil
	}
	if err != nil {
		return nil, err
	}
	users := map[string]User{}
	if err := json.Unmarshal([]byte(text), &users); err != nil {
		return nil, errors.NewFormatError(fmt.Sprintf("%s: %v", key, err))
	}
	return users, nil
}

// LoadSettings reads the auth settings document.
// LoadSettings 读取认证设置文档。
func LoadSettings(ctx context.Context, store storage.Store, key string) (Settings, error) {
	var settings Settings
	text, err := store.Get(ctx, key)
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal([]byte(text), &settings); err != nil {
		return settings, errors.NewFormatError(fmt.Sprintf("%s: %v", key, err))
	}
	return settings, nil
}

// Load builds a TokenManager from the documents under keys.
// Load 根据存储中的文档创建 TokenManager。
func Load(ctx context.Context, store storage.Store, keys Keys) (*TokenManager, error) {
	users, err := LoadUsers(ctx, store, keys.Users)
	if err != nil {
		return nil, err
	}
	settings, err := LoadSettings(ctx, store, keys.Settings)
	if err != nil {
		return nil, err
	}
	logger.Get(ctx).Debugf("[AUTH] Loaded %d users", len(users))
	return NewTokenManager(settings, users)
}

// SetPassword creates or updates subject in the users document.
// SetPassword 在用户文档中创建或更新 subject 的密码。
func SetPassword(ctx context.Context, store storage.Store, key, subject, password string) error {
	if subject == "" || password == "" {
		return fmt.Errorf("%w: subject and password are required", errors.ErrConfigInvalid)
	}
	users, err := LoadUsers(ctx, store, key)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	users[subject] = User{PasswordHash: hash}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, string(data)+"\n"); err != nil {
		return err
	}
	logger.Get(ctx).Infof("[AUTH] Password set for %s", subject)
	return nil
}

// WriteSettings stores settings as JSON.
func WriteSettings(ctx context.Context, store storage.Store, key string, settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return store.Put(ctx, key, string(data)+"\n")
}
