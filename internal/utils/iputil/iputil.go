// Package iputil validates the address and port arguments iptables accepts.
// Package iputil 校验 iptables 接受的地址和端口参数。
package iputil

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// IsIPv6 checks if the given IP string (or CIDR) is IPv6.
// IsIPv6 检查给定的 IP 字符串（或 CIDR）是否为 IPv6。
func IsIPv6(s string) bool {
	addr, _, _ := strings.Cut(s, "/")
	ip, err := netip.ParseAddr(addr)
	return err == nil && ip.Is6() && !ip.Is4In6()
}

// ParseAddress parses an -s/-d argument: an address, a CIDR, or an
// address with a dotted netmask such as 10.0.0.0/255.0.0.0. A hostname is
// not accepted.
// ParseAddress 解析 -s/-d 参数：地址、CIDR 或带点分掩码的地址。
func ParseAddress(s string) (netip.Prefix, error) {
	addrPart, maskPart, hasMask := strings.Cut(s, "/")
	addr, err := netip.ParseAddr(addrPart)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid address %q", s)
	}
	if !hasMask {
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	bits, err := strconv.Atoi(maskPart)
	if err != nil {
		// Dotted netmask, IPv4 only
		// 点分掩码，仅支持 IPv4
		mask := net.ParseIP(maskPart).To4()
		if mask == nil || !addr.Is4() {
			return netip.Prefix{}, fmt.Errorf("invalid netmask in %q", s)
		}
		ones, total := net.IPMask(mask).Size()
		if total == 0 {
			return netip.Prefix{}, fmt.Errorf("non-contiguous netmask in %q", s)
		}
		bits = ones
	}
	if bits < 0 || bits > addr.BitLen() {
		return netip.Prefix{}, fmt.Errorf("prefix length out of range in %q", s)
	}
	return netip.PrefixFrom(addr, bits), nil
}

// ValidPort checks a --sport/--dport argument: a port number, a service
// name, or a first:last range of numbers.
// ValidPort 校验端口或 first:last 端口范围。
func ValidPort(s string) error {
	if isServiceName(s) {
		return nil
	}
	return validPortRange(s, ":")
}

// validPortRange checks a number or a numeric range joined by sep.
func validPortRange(s, sep string) error {
	first, last, isRange := strings.Cut(s, sep)
	lo, err := parsePort(first)
	if err != nil {
		return err
	}
	if !isRange {
		return nil
	}
	hi, err := parsePort(last)
	if err != nil {
		return err
	}
	if lo > hi {
		return fmt.Errorf("invalid port range %q", s)
	}
	return nil
}

// isServiceName matches /etc/services style names such as "ssh" or "http-alt".
func isServiceName(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return n, nil
}

// ValidNATTarget checks a --to-destination argument of the form
// addr[-addr][:port[-port]]. IPv6 addresses are written in brackets when a
// port follows.
// ValidNATTarget 校验 --to-destination 参数。
func ValidNATTarget(s string) error {
	addrs, ports := s, ""
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return fmt.Errorf("invalid NAT target %q", s)
		}
		addrs = s[1:end]
		rest := s[end+1:]
		if rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return fmt.Errorf("invalid NAT target %q", s)
			}
			ports = rest[1:]
		}
	} else if strings.Count(s, ":") == 1 {
		addrs, ports, _ = strings.Cut(s, ":")
	}

	if addrs != "" {
		first, last, isRange := strings.Cut(addrs, "-")
		if _, err := netip.ParseAddr(first); err != nil {
			return fmt.Errorf("invalid NAT address %q", first)
		}
		if isRange {
			if _, err := netip.ParseAddr(last); err != nil {
				return fmt.Errorf("invalid NAT address %q", last)
			}
		}
	}
	if ports != "" {
		return validPortRange(ports, "-")
	}
	if addrs == "" {
		return fmt.Errorf("empty NAT target")
	}
	return nil
}
