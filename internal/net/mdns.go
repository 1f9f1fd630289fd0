package net

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service viewers browse for.
const ServiceType = "_markupboard._tcp"

func advertise(instance string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("viewer: hostname: %w", err)
	}
	if instance == "" {
		instance = host
	}

	info := []string{"MarkupBoard", "path=/ws"}
	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("viewer: mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("viewer: mDNS server: %w", err)
	}
	return server, nil
}

// Board is one advertised preview found on the network.
type Board struct {
	Name string
	Addr string
}

// URL is the websocket endpoint of b.
func (b Board) URL() string {
	return "ws://" + b.Addr + "/ws"
}

// Browse looks for advertised boards for timeout and reports each one.
func Browse(timeout time.Duration, found func(Board)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(Board{Name: e.Name, Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))})
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	return err
}
