package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFormat           = errors.New("invalid document format")
	ErrDuplicateTable   = errors.New("duplicate table")
	ErrNotFound         = errors.New("key not found")
	ErrStorage          = errors.New("storage operation failed")
	ErrInvalidKey       = errors.New("invalid storage key")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrConfigNotFound   = errors.New("config not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInvalidQuery     = errors.New("invalid rule query")
	ErrNotImplemented   = errors.New("not implemented")
)

// NewFormatError reports input text that cannot be parsed.
// NewFormatError 报告无法解析的输入文本。
func NewFormatError(reason string) error {
	return fmt.Errorf("%w: %s", ErrFormat, reason)
}

func NewDuplicateTableError(name string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateTable, name)
}

// NewNotFoundError reports a missing key in a store.
// NewNotFoundError 报告存储中缺失的键。
func NewNotFoundError(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

// NewStorageError wraps a backend failure. The cause stays in the chain so
// errors.Is(err, ErrNotFound) keeps working on the wrapped value.
// NewStorageError 包装后端故障，原始错误保留在错误链中。
func NewStorageError(op, key string, cause error) error {
	return fmt.Errorf("%w: op=%s key=%s: %w", ErrStorage, op, key, cause)
}

func NewKeyError(key string) error {
	return fmt.Errorf("%w: %q", ErrInvalidKey, key)
}

func NewQueryError(query string, cause error) error {
	return fmt.Errorf("%w: %q: %v", ErrInvalidQuery, query, cause)
}

func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
