package net

import (
	"net"

	"go.uber.org/zap"
)

// OutgoingIP finds the local address other machines on the LAN can reach.
func OutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return localIPFallback(), nil
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// localIPFallback picks the first IPv4 address of an up, non-loopback
// interface for networks without a default route.
func localIPFallback() string {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4().String()
			}
		}
	}
	zap.L().Named("viewer").Warn("no LAN address found, share link uses loopback")
	return "127.0.0.1"
}
