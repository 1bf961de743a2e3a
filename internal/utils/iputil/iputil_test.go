package iputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIPv6(t *testing.T) {
	assert.True(t, IsIPv6("2001:db8::1"))
	assert.True(t, IsIPv6("2001:db8::/32"))
	assert.False(t, IsIPv6("192.168.1.1"))
	assert.False(t, IsIPv6("10.0.0.0/8"))
	assert.False(t, IsIPv6("invalid"))
}

// TestParseAddress tests -s/-d argument parsing
// TestParseAddress 测试 -s/-d 参数解析
func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.0.0.1", "10.0.0.1/32"},
		{"192.168.1.0/24", "192.168.1.0/24"},
		{"10.0.0.0/255.0.0.0", "10.0.0.0/8"},
		{"2001:db8::1", "2001:db8::1/128"},
		{"2001:db8::/32", "2001:db8::/32"},
		{"0.0.0.0/0", "0.0.0.0/0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParseAddress(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}

	for _, bad := range []string{"", "example.com", "10.0.0.1/33", "10.0.0.1/-1", "10.0.0.0/255.0.255.0", "2001:db8::/255.0.0.0", "10.0.0.1/abc"} {
		t.Run("bad "+bad, func(t *testing.T) {
			_, err := ParseAddress(bad)
			assert.Error(t, err)
		})
	}
}

func TestValidPort(t *testing.T) {
	for _, ok := range []string{"22", "0", "65535", "1024:65535", "ssh", "http-alt"} {
		assert.NoError(t, ValidPort(ok), ok)
	}
	for _, bad := range []string{"", "SSH", "65536", "-1", "100:10", "1:", ":1", "ssh:http"} {
		assert.Error(t, ValidPort(bad), bad)
	}
}

func TestValidNATTarget(t *testing.T) {
	for _, ok := range []string{
		"192.168.1.5",
		"192.168.1.5:80",
		"192.168.1.5:8000-8080",
		"192.168.1.5-192.168.1.9",
		"192.168.1.5-192.168.1.9:80",
		":8080",
		"[2001:db8::1]:443",
		"2001:db8::1",
	} {
		assert.NoError(t, ValidNATTarget(ok), ok)
	}
	for _, bad := range []string{"", "host:80", "192.168.1.5:http", "[2001:db8::1", "[2001:db8::1]443", "1.2.3.4-x"} {
		assert.Error(t, ValidNATTarget(bad), bad)
	}
}
