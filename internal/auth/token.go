// Package auth issues and verifies API tokens for the users kept in the store.
// Package auth 为存储中的用户签发和校验 API 令牌。
package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/livp123/netxconf/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// AlgorithmHS256 is the only signing algorithm supported.
const AlgorithmHS256 = "HS256"

// User is one entry of the users document.
// User 是用户文档中的一项。
type User struct {
	PasswordHash string `json:"passwordHash"`
}

// Settings is the auth settings document.
// Settings 是认证设置文档。
type Settings struct {
	JWT JWTSettings `json:"jwt"`
}

// JWTSettings configures token signing. ExpiresIn is either a number of
// seconds or a duration string such as "12h" or "7d".
// JWTSettings 配置令牌签名。
type JWTSettings struct {
	Password  string          `json:"password"`
	Algorithm string          `json:"algorithm"`
	ExpiresIn json.RawMessage `json:"expiresIn,omitempty"`
}

// Claims is the token payload: the user name under "subject" plus the
// registered iat and exp claims.
// Claims 是令牌负载。
type Claims struct {
	Subject string `json:"subject"`
	jwt.RegisteredClaims
}

// TokenManager checks passwords and signs tokens for a fixed user set.
// TokenManager 针对固定的用户集合校验密码并签发令牌。
type TokenManager struct {
	secret    []byte
	expiresIn time.Duration
	users     map[string]User
	now       func() time.Time
}

// NewTokenManager validates settings and returns a manager for users.
// NewTokenManager 校验设置并创建令牌管理器。
func NewTokenManager(settings Settings, users map[string]User) (*TokenManager, error) {
	if settings.JWT.Password == "" {
		return nil, errors.NewConfigError("jwt.password", "")
	}
	alg := settings.JWT.Algorithm
	if alg == "" {
		alg = AlgorithmHS256
	}
	if alg != AlgorithmHS256 {
		return nil, errors.NewConfigError("jwt.algorithm", alg)
	}
	if users == nil {
		return nil, errors.NewConfigError("users", nil)
	}
	expiresIn, err := parseExpiresIn(settings.JWT.ExpiresIn)
	if err != nil {
		return nil, err
	}
	return &TokenManager{
		secret:    []byte(settings.JWT.Password),
		expiresIn: expiresIn,
		users:     users,
		now:       time.Now,
	}, nil
}

func parseExpiresIn(raw json.RawMessage) (time.Duration, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var seconds int64
	if err := json.Unmarshal(raw, &seconds); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.NewConfigError("jwt.expiresIn", string(raw))
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, errors.NewConfigError("jwt.expiresIn", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.NewConfigError("jwt.expiresIn", s)
	}
	return d, nil
}

// CheckPassword reports whether password matches subject's bcrypt hash.
// Unknown subjects never match.
// CheckPassword 检查密码是否与用户的 bcrypt 哈希匹配。
func (m *TokenManager) CheckPassword(subject, password string) bool {
	user, ok := m.users[subject]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CreateToken signs a token for subject.
// CreateToken 为 subject 签发令牌。
func (m *TokenManager) CreateToken(subject string) (string, error) {
	now := m.now()
	claims := Claims{
		Subject:          subject,
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
	}
	if m.expiresIn > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.expiresIn))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyToken checks the signature, the expiry and that the subject still
// exists. Failures wrap errors.ErrUnauthorized or errors.ErrTokenExpired.
// VerifyToken 校验签名、过期时间以及用户是否仍然存在。
func (m *TokenManager) VerifyToken(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{AlgorithmHS256}),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errors.ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", errors.ErrUnauthorized, err)
	}

	if _, ok := m.users[claims.Subject]; !ok {
		return nil, fmt.Errorf("%w: user %q does not exist", errors.ErrUnauthorized, claims.Subject)
	}
	return &claims, nil
}

// HashPassword returns a bcrypt hash suitable for User.PasswordHash.
// HashPassword 返回可用于 User.PasswordHash 的 bcrypt 哈希。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
