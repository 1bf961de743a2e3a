package status

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/nxadm/tail"
)

// Follow tails a local kernel log and streams blocked-packet events until
// ctx is done. Rotated files are reopened. With fromStart false only lines
// written after the call are reported.
// Follow 跟踪本地内核日志并持续输出被拦截的数据包事件。
func Follow(ctx context.Context, path string, fromStart bool) (<-chan BlockEvent, error) {
	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if fromStart {
		location = nil
	}

	t, err := tail.TailFile(path, tail.Config{
		Location:  location,
		Follow:    true,
		ReOpen:    true, // Handle log rotation
		MustExist: false,
		Poll:      true, // Fallback if inotify fails
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, err
	}

	events := make(chan BlockEvent, 64)
	go func() {
		defer close(events)
		defer t.Cleanup()
		defer func() { _ = t.Stop() }()

		log := logger.Get(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-t.Lines:
				if !ok {
					return
				}
				if line.Err != nil {
					log.Warnf("[STATUS] Error reading %s: %v", path, line.Err)
					continue
				}
				if !strings.Contains(line.Text, BlockedMarker) {
					continue
				}
				year := line.Time.Year()
				if line.Time.IsZero() {
					year = time.Now().Year()
				}
				select {
				case events <- ParseBlockMessage(strings.TrimSpace(line.Text), year):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
