package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1(:\d{1,5})?$`)
)

func IPIsLocal(ipAddr string) bool {
	if strings.HasPrefix(ipAddr, "127.0.0.1") || strings.HasPrefix(ipAddr, "[::1]") || ipAddr == "::1" {
		return true
	}

	// behind the docker bridge
	return localDockerIpRegex.MatchString(ipAddr)
}

// TrustedProxies are the peers whose forwarding headers are believed.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies accepts CIDR ranges and single addresses.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy address: %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy range %q: %w", entry, err)
		}
		proxies = append(proxies, ipNet)
	}
	return proxies, nil
}

func (tp TrustedProxies) Contains(ipAddr string) bool {
	ip := net.ParseIP(ipAddr)
	if ip == nil {
		return false
	}
	for _, ipNet := range tp {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// ReadUserIP returns the client address of the request. X-Real-Ip and X-Forwarded-For
// are honored only when the direct peer is one of the trusted proxies.
// Local development and docker bridge addresses are all reported as "localhost".
func ReadUserIP(r *http.Request, trusted TrustedProxies) (string, error) {
	ipAddr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}

	if trusted.Contains(ipAddr) {
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
			ipAddr = realIP
		} else if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			// client, proxy1, proxy2: the closest address not added by our own proxies
			hops := strings.Split(forwarded, ",")
			for i := len(hops) - 1; i >= 0; i-- {
				ipAddr = strings.TrimSpace(hops[i])
				if !trusted.Contains(ipAddr) {
					break
				}
			}
		}
	}

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	if ip := net.ParseIP(ipAddr); ip == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}

	return ipAddr, nil
}
