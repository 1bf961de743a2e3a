package auth

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/livp123/netxconf/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newManager(t *testing.T, expiresIn string) *TokenManager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	settings := Settings{JWT: JWTSettings{Password: "signing-key", Algorithm: "HS256"}}
	if expiresIn != "" {
		settings.JWT.ExpiresIn = json.RawMessage(expiresIn)
	}
	m, err := NewTokenManager(settings, map[string]User{"admin": {PasswordHash: string(hash)}})
	require.NoError(t, err)
	return m
}

// TestTokenManager_RoundTrip tests create then verify
// TestTokenManager_RoundTrip 测试签发后校验
func TestTokenManager_RoundTrip(t *testing.T) {
	m := newManager(t, `"1h"`)
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	token, err := m.CreateToken("admin")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := newManager(t, "")
	token, err := m.CreateToken("admin")
	require.NoError(t, err)

	other := newManager(t, "")
	other.secret = []byte("different")
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	ghost, err := m.CreateToken("ghost")
	require.NoError(t, err)
	_, err = m.VerifyToken(ghost)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	parts := strings.Split(token, ".")
	_, err = m.VerifyToken(parts[0] + "." + parts[1] + ".AAAA")
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	_, err = m.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Subject: "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.VerifyToken(unsigned)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}

// TestClaims_PayloadShape tests the payload field names tokens carry
// TestClaims_PayloadShape 测试令牌负载的字段名
func TestClaims_PayloadShape(t *testing.T) {
	m := newManager(t, "60")
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	token, err := m.CreateToken("admin")
	require.NoError(t, err)

	payload, err := jwt.NewParser().DecodeSegment(strings.Split(token, ".")[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject":"admin","iat":1700000000,"exp":1700000060}`, string(payload))
}

func TestTokenManager_CheckPassword(t *testing.T) {
	m := newManager(t, "")
	assert.True(t, m.CheckPassword("admin", "s3cret"))
	assert.False(t, m.CheckPassword("admin", "wrong"))
	assert.False(t, m.CheckPassword("nobody", "s3cret"))
}

func TestNewTokenManager_Settings(t *testing.T) {
	users := map[string]User{}
	tests := []struct {
		name      string
		settings  Settings
		users     map[string]User
		wantErr   bool
		expiresIn time.Duration
	}{
		{"defaults", Settings{JWT: JWTSettings{Password: "k"}}, users, false, 0},
		{"seconds", Settings{JWT: JWTSettings{Password: "k", ExpiresIn: json.RawMessage(`3600`)}}, users, false, time.Hour},
		{"seconds string", Settings{JWT: JWTSettings{Password: "k", ExpiresIn: json.RawMessage(`"60"`)}}, users, false, time.Minute},
		{"days", Settings{JWT: JWTSettings{Password: "k", ExpiresIn: json.RawMessage(`"7d"`)}}, users, false, 7 * 24 * time.Hour},
		{"bad duration", Settings{JWT: JWTSettings{Password: "k", ExpiresIn: json.RawMessage(`"soon"`)}}, users, true, 0},
		{"no password", Settings{}, users, true, 0},
		{"rs256", Settings{JWT: JWTSettings{Password: "k", Algorithm: "RS256"}}, users, true, 0},
		{"no users", Settings{JWT: JWTSettings{Password: "k"}}, nil, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewTokenManager(tt.settings, tt.users)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expiresIn, m.expiresIn)
		})
	}
}

func TestLoadFromStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	keys := Keys{Users: "auth/users.json", Settings: "auth/settings.json"}

	_, err := Load(ctx, store, keys)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, WriteSettings(ctx, store, keys.Settings, Settings{JWT: JWTSettings{Password: "k", Algorithm: "HS256"}}))
	require.NoError(t, SetPassword(ctx, store, keys.Users, "admin", "s3cret"))

	m, err := Load(ctx, store, keys)
	require.NoError(t, err)
	assert.True(t, m.CheckPassword("admin", "s3cret"))

	text, err := store.Get(ctx, keys.Users)
	require.NoError(t, err)
	assert.Contains(t, text, `"passwordHash": "$2a$`)

	require.NoError(t, store.Put(ctx, keys.Users, "{not json"))
	_, err = Load(ctx, store, keys)
	assert.ErrorIs(t, err, errors.ErrFormat)

	assert.ErrorIs(t, SetPassword(ctx, store, keys.Users, "", "x"), errors.ErrConfigInvalid)
}
