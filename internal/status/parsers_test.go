package status

import (
	"testing"
	"time"

	"github.com/livp123/netxconf/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iptstateOutput = `IP Tables State Top -- Sort by: SrcIP
Source                Destination           Prt  State        TTL
192.168.1.20:51000    93.184.216.34:443     tcp  ESTABLISHED  119:59:59
192.168.1.21:5353     224.0.0.251:5353      udp  0:00:29
`

func TestParseIptstate(t *testing.T) {
	conns := ParseIptstate(iptstateOutput)
	require.Len(t, conns, 2)

	assert.Equal(t, Connection{
		"Source":      "192.168.1.20:51000",
		"Destination": "93.184.216.34:443",
		"Prt":         "tcp",
		"State":       "ESTABLISHED",
		"TTL":         "119:59:59",
	}, conns[0])

	assert.Equal(t, Connection{
		"Source":      "192.168.1.21:5353",
		"Destination": "224.0.0.251:5353",
		"Prt":         "udp",
		"TTL":         "0:00:29",
	}, conns[1])

	assert.Nil(t, ParseIptstate("banner only\n"))
}

// TestParseInterface tests ifcfg parsing and its strict line format
// TestParseInterface 测试 ifcfg 解析及其严格的行格式
func TestParseInterface(t *testing.T) {
	cfg, err := ParseInterface("DEVICE=eth0\n\n  BOOTPROTO=dhcp  \nONBOOT=yes\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DEVICE": "eth0", "BOOTPROTO": "dhcp", "ONBOOT": "yes"}, cfg)

	for _, bad := range []string{"DEVICE", "A=b=c", "ok=1\n# comment"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseInterface(bad)
			assert.ErrorIs(t, err, errors.ErrFormat)
		})
	}
}

func TestEncodeInterface(t *testing.T) {
	text, err := EncodeInterface(map[string]string{"ONBOOT": "yes", "DEVICE": "eth0"})
	require.NoError(t, err)
	assert.Equal(t, "DEVICE=eth0\nONBOOT=yes\n", text)

	back, err := ParseInterface(text)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ONBOOT": "yes", "DEVICE": "eth0"}, back)

	_, err = EncodeInterface(map[string]string{"IPADDR": "a=b"})
	assert.ErrorIs(t, err, errors.ErrFormat)
}

const leasesFile = `# The format of this file is documented in the dhcpd.leases(5) manual page.
lease 192.168.1.20 {
  starts 1 2024/01/15 10:00:00;
  ends 1 2024/01/15 22:00:00;
  binding state active;
  hardware ethernet AA:BB:CC:00:00:01;
  uid "\001\252\273\314\000\000\001";
  client-hostname "laptop";
}
lease 192.168.1.21 {
  starts 1 2024/01/15 09:00:00;
  ends 1 2024/01/15 21:00:00;
  binding state free;
  hardware ethernet aa:bb:cc:00:00:02;
}
lease 192.168.1.22 {
  starts 1 2024/01/15 08:00:00;
  ends 1 2024/01/15 09:00:00;
  binding state free;
  hardware ethernet aa:bb:cc:00:00:01;
}
lease 192.168.1.23 {
  starts 1 2024/01/15 11:00:00;
  binding state active;
  hardware ethernet aa:bb:cc:00:00:02;
}
`

func TestParseLeases(t *testing.T) {
	leases, err := ParseLeases(leasesFile)
	require.NoError(t, err)
	require.Len(t, leases, 4)

	first := leases[0]
	assert.Equal(t, "192.168.1.20", first.IP)
	assert.Equal(t, "aa:bb:cc:00:00:01", first.MAC)
	assert.Equal(t, "laptop", first.Hostname)
	assert.Equal(t, "active", first.BindingState)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), first.Starts)
	assert.Equal(t, time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC), first.Ends)
	assert.NotEmpty(t, first.ClientID)
	assert.True(t, leases[3].Ends.IsZero())
}

// TestLatestPerMAC tests grouping leases by MAC and keeping the newest
// TestLatestPerMAC 测试按 MAC 分组并保留最新租约
func TestLatestPerMAC(t *testing.T) {
	leases, err := ParseLeases(leasesFile)
	require.NoError(t, err)

	latest := LatestPerMAC(leases)
	require.Len(t, latest, 2)
	assert.Equal(t, "192.168.1.20", latest[0].IP)
	assert.Equal(t, "192.168.1.23", latest[1].IP)

	online := Online(leases)
	assert.Len(t, online, 2)

	assert.True(t, StatusForMAC(leases, "AA:BB:CC:00:00:02"))
	assert.False(t, StatusForMAC(leases, "aa:bb:cc:ff:ff:ff"))

	leases[3].BindingState = "expired"
	assert.False(t, StatusForMAC(leases, "aa:bb:cc:00:00:02"))
	assert.Len(t, Online(leases), 1)
}

const nmapXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE nmaprun>
<nmaprun scanner="nmap" args="nmap -oX - 192.168.1.0/24">
<host><status state="up" reason="arp-response" reason_ttl="0"/>
<address addr="192.168.1.20" addrtype="ipv4"/>
<address addr="AA:BB:CC:00:00:01" addrtype="mac" vendor="Acme"/>
<ports><port protocol="tcp" portid="22"><state state="open" reason="syn-ack"/><service name="ssh"/></port></ports>
</host>
<host><status state="down" reason="no-response"/>
<address addr="192.168.1.30" addrtype="ipv4"/>
</host>
`

func TestParseNmap(t *testing.T) {
	hosts, err := ParseNmap(nmapXML)
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	assert.Equal(t, "up", hosts[0].Status.State)
	assert.Equal(t, map[string]string{"ipv4": "192.168.1.20", "mac": "AA:BB:CC:00:00:01"}, hosts[0].Address)
	assert.Equal(t, []Port{{Protocol: "tcp", PortID: "22", State: "open", Service: "ssh"}}, hosts[0].Ports)

	assert.Equal(t, "down", hosts[1].Status.State)
	assert.Empty(t, hosts[1].Ports)

	_, err = ParseNmap("")
	assert.ErrorIs(t, err, errors.ErrFormat)
	_, err = ParseNmap("<nmaprun><host>")
	assert.ErrorIs(t, err, errors.ErrFormat)
}
