package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messages = `Jan 15 10:30:45 gw kernel: IPTables Blocked: IN=eth0 OUT= MAC=00:11 SRC=203.0.113.7 DST=198.51.100.1 LEN=60 TOS=0x00 PREC=0x00 TTL=49 ID=0 DF PROTO=TCP SPT=51234 DPT=23 WINDOW=29200 RES=0x00 SYN URGP=0
Jan 15 10:30:46 gw dhcpd: DHCPACK on 192.168.1.20
Jan  5 08:01:02 gw kernel: IPTables Blocked: IN=eth0 OUT= SRC=203.0.113.9 DST=198.51.100.1 LEN=84 TTL=57 PROTO=ICMP TYPE=8 CODE=0 ID=1 SEQ=1
`

// TestParseBlocked tests filtering and field extraction
// TestParseBlocked 测试过滤和字段提取
func TestParseBlocked(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	events := ParseBlocked(messages, now)
	require.Len(t, events, 2)

	tcp := events[0]
	require.NotNil(t, tcp.Timestamp)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 45, 0, time.Local), *tcp.Timestamp)
	assert.Equal(t, "203.0.113.7", *tcp.Source)
	assert.Equal(t, "198.51.100.1", *tcp.Destination)
	assert.Equal(t, "TCP", *tcp.Protocol)
	assert.Equal(t, 49, *tcp.TTL)
	assert.Equal(t, 51234, *tcp.SourcePort)
	assert.Equal(t, 23, *tcp.DestPort)
	assert.Nil(t, tcp.Type)

	icmp := events[1]
	assert.Equal(t, time.Date(2024, 1, 5, 8, 1, 2, 0, time.Local), *icmp.Timestamp)
	assert.Equal(t, "ICMP", *icmp.Protocol)
	assert.Equal(t, "8", *icmp.Type)
	assert.Nil(t, icmp.SourcePort)
	assert.Nil(t, icmp.DestPort)
}

func TestParseBlockMessage_MissingFields(t *testing.T) {
	ev := ParseBlockMessage("IPTables Blocked: SRC= TTL=abc", 2024)
	assert.Nil(t, ev.Timestamp)
	assert.Nil(t, ev.Source)
	assert.Nil(t, ev.TTL)
	assert.Nil(t, ev.Protocol)
	assert.Equal(t, "IPTables Blocked: SRC= TTL=abc", ev.Line)
}

func TestFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages")
	require.NoError(t, os.WriteFile(path, []byte(messages), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := Follow(ctx, path, true)
	require.NoError(t, err)

	var got []BlockEvent
	timeout := time.After(10 * time.Second)
	for len(got) < 2 {
		select {
		case ev, ok := <-events:
			require.True(t, ok)
			got = append(got, ev)
		case <-timeout:
			t.Fatal("timed out waiting for events")
		}
	}
	assert.Equal(t, "203.0.113.7", *got[0].Source)
	assert.Equal(t, "ICMP", *got[1].Protocol)

	cancel()
	for range events {
	}
}
