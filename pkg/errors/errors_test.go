package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	sentinelErrors := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrFormat", ErrFormat, "invalid document format"},
		{"ErrDuplicateTable", ErrDuplicateTable, "duplicate table"},
		{"ErrNotFound", ErrNotFound, "key not found"},
		{"ErrStorage", ErrStorage, "storage operation failed"},
		{"ErrInvalidKey", ErrInvalidKey, "invalid storage key"},
		{"ErrPermissionDenied", ErrPermissionDenied, "permission denied"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrTokenExpired", ErrTokenExpired, "token expired"},
		{"ErrConfigNotFound", ErrConfigNotFound, "config not found"},
		{"ErrConfigInvalid", ErrConfigInvalid, "invalid configuration"},
		{"ErrInvalidQuery", ErrInvalidQuery, "invalid rule query"},
		{"ErrNotImplemented", ErrNotImplemented, "not implemented"},
	}

	for _, tc := range sentinelErrors {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err == nil {
				t.Errorf("%s is nil", tc.name)
				return
			}
			if tc.err.Error() != tc.msg {
				t.Errorf("%s: got %q, want %q", tc.name, tc.err.Error(), tc.msg)
			}
		})
	}
}

func TestNewFormatError(t *testing.T) {
	err := NewFormatError("no table marker")
	assert.True(t, errors.Is(err, ErrFormat))
	assert.Equal(t, "invalid document format: no table marker", err.Error())
}

// TestNewStorageError_KeepsCause checks both sentinels stay reachable
// TestNewStorageError_KeepsCause 检查两个哨兵错误都可以被匹配
func TestNewStorageError_KeepsCause(t *testing.T) {
	err := NewStorageError("get", "rules/iptables", NewNotFoundError("rules/iptables"))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "op=get")

	err = NewStorageError("put", "a", fs.ErrPermission)
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestOtherConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate table", NewDuplicateTableError("filter"), ErrDuplicateTable},
		{"key", NewKeyError("../etc/passwd"), ErrInvalidKey},
		{"query", NewQueryError("protocol ==", errors.New("unexpected EOF")), ErrInvalidQuery},
		{"config", NewConfigError("web.port", -1), ErrConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
		})
	}
}
