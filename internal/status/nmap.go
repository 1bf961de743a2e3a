package status

import (
	"encoding/xml"
	"strings"

	"github.com/livp123/netxconf/pkg/errors"
)

// Host is one host element of an nmap XML scan.
// Host 是 nmap XML 扫描结果中的一个主机。
type Host struct {
	Status  HostStatus        `json:"status"`
	Address map[string]string `json:"address"`
	Ports   []Port            `json:"ports"`
}

type HostStatus struct {
	State     string `xml:"state,attr" json:"state"`
	Reason    string `xml:"reason,attr" json:"reason,omitempty"`
	ReasonTTL string `xml:"reason_ttl,attr" json:"reason_ttl,omitempty"`
}

type Port struct {
	Protocol string `xml:"protocol,attr" json:"protocol"`
	PortID   string `xml:"portid,attr" json:"portid"`
	State    string `json:"state,omitempty"`
	Service  string `json:"service,omitempty"`
}

type nmapRun struct {
	Hosts []struct {
		Status    []HostStatus `xml:"status"`
		Addresses []struct {
			Addr     string `xml:"addr,attr"`
			AddrType string `xml:"addrtype,attr"`
		} `xml:"address"`
		Ports []struct {
			Port []struct {
				Protocol string `xml:"protocol,attr"`
				PortID   string `xml:"portid,attr"`
				State    struct {
					State string `xml:"state,attr"`
				} `xml:"state"`
				Service struct {
					Name string `xml:"name,attr"`
				} `xml:"service"`
			} `xml:"port"`
		} `xml:"ports"`
	} `xml:"host"`
}

// ParseNmap parses nmap -oX output. A scan still running has no closing
// </nmaprun> tag; it is added before decoding.
// ParseNmap 解析 nmap -oX 输出，缺失的 </nmaprun> 结束标签会被补上。
func ParseNmap(text string) ([]Host, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewFormatError("empty nmap document")
	}
	if !strings.HasSuffix(text, "</nmaprun>") {
		text += "</nmaprun>"
	}

	var run nmapRun
	if err := xml.Unmarshal([]byte(text), &run); err != nil {
		return nil, errors.NewFormatError("nmap xml: " + err.Error())
	}

	hosts := make([]Host, 0, len(run.Hosts))
	for _, h := range run.Hosts {
		host := Host{Address: make(map[string]string), Ports: []Port{}}
		if n := len(h.Status); n > 0 {
			host.Status = h.Status[n-1]
		}
		for _, a := range h.Addresses {
			host.Address[a.AddrType] = a.Addr
		}
		for _, group := range h.Ports {
			for _, p := range group.Port {
				host.Ports = append(host.Ports, Port{
					Protocol: p.Protocol,
					PortID:   p.PortID,
					State:    p.State.State,
					Service:  p.Service.Name,
				})
			}
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}
