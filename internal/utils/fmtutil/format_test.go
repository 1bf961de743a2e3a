package fmtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestFormatCount tests thousand separators
// TestFormatCount 测试千位分隔符
func TestFormatCount(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatCount(tt.input))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{500 * time.Millisecond, "500ms"},
		{time.Second, "1s"},
		{90 * time.Second, "1m 30s"},
		{time.Hour, "1h"},
		{26*time.Hour + 5*time.Second, "1d 2h 5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.input))
	}
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "never", FormatRemaining(time.Time{}, now))
	assert.Equal(t, "expired", FormatRemaining(now, now))
	assert.Equal(t, "expired", FormatRemaining(now.Add(-time.Hour), now))
	assert.Equal(t, "2h 30m", FormatRemaining(now.Add(150*time.Minute+300*time.Millisecond), now))
}
