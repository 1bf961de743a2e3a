// Package fmtutil provides formatting utilities for human-readable output.
// Package fmtutil 提供用于人类可读输出的格式化工具。
package fmtutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatCount formats a count with thousand separators.
// FormatCount 格式化数字，添加千位分隔符。
func FormatCount(n int) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := strconv.Itoa(n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// FormatDuration formats a duration as "1d 2h 3m 4s", dropping zero units.
// FormatDuration 将持续时间格式化为可读格式。
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}

// FormatRemaining describes how long is left until ends. A zero ends means
// no expiry.
// FormatRemaining 描述距离 ends 的剩余时间，零值表示永不过期。
func FormatRemaining(ends, now time.Time) string {
	switch {
	case ends.IsZero():
		return "never"
	case !ends.After(now):
		return "expired"
	default:
		return FormatDuration(ends.Sub(now).Truncate(time.Second))
	}
}
