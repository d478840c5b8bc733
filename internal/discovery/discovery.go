// Package discovery advertises this controller over mDNS and finds other controllers.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	ServiceType   = "_lightstream._tcp"
	ServiceDomain = "local."

	DefaultScanTimeout = 5 * time.Second
)

// Peer is a controller found on the network.
type Peer struct {
	Instance string            `json:"instance"`
	Hostname string            `json:"hostname"`
	IP       string            `json:"ip"`
	Port     int               `json:"port"`
	Pixels   int               `json:"pixels,omitempty"`
	Device   string            `json:"device,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Announcement is what this controller advertises in its TXT record.
type Announcement struct {
	Instance string
	Port     int
	DeviceID string
	Device   string
	Pixels   int
	Version  string
}

func (a Announcement) txt() []string {
	return []string{
		"id=" + a.DeviceID,
		"device=" + a.Device,
		"pixels=" + strconv.Itoa(a.Pixels),
		"version=" + a.Version,
	}
}

// Advertiser keeps a service registration alive until Shutdown.
type Advertiser interface {
	Shutdown()
}

// Advertise registers a on all interfaces.
func Advertise(a Announcement) (Advertiser, error) {
	srv, err := zeroconf.Register(a.Instance, ServiceType, ServiceDomain, a.Port, a.txt(), nil)
	if err != nil {
		return nil, fmt.Errorf("register mDNS service: %w", err)
	}
	return srv, nil
}

type Scanner struct {
	Timeout time.Duration
	Service string
}

func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout, Service: ServiceType}
}

// Scan browses until the timeout or ctx ends and returns every peer seen.
func (s *Scanner) Scan(ctx context.Context) ([]Peer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var mu sync.Mutex
	var peers []Peer
	seen := map[string]bool{}
	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-entries:
				if !ok {
					return
				}
				p, ok := parseEntry(e)
				if !ok {
					continue
				}
				mu.Lock()
				if !seen[p.Instance] {
					seen[p.Instance] = true
					peers = append(peers, p)
				}
				mu.Unlock()
			}
		}
	}()

	if err := resolver.Browse(ctx, s.Service, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	<-ctx.Done()
	<-done

	mu.Lock()
	defer mu.Unlock()
	return peers, nil
}

func parseEntry(e *zeroconf.ServiceEntry) (Peer, bool) {
	if e == nil {
		return Peer{}, false
	}
	var ip net.IP
	if len(e.AddrIPv4) > 0 {
		ip = e.AddrIPv4[0]
	} else if len(e.AddrIPv6) > 0 {
		ip = e.AddrIPv6[0]
	}
	if ip == nil {
		return Peer{}, false
	}

	meta := map[string]string{}
	for _, txt := range e.Text {
		k, v, _ := strings.Cut(txt, "=")
		meta[k] = v
	}
	p := Peer{
		Instance: e.Instance,
		Hostname: e.HostName,
		IP:       ip.String(),
		Port:     e.Port,
		Device:   meta["device"],
		Metadata: meta,
	}
	if n, err := strconv.Atoi(meta["pixels"]); err == nil {
		p.Pixels = n
	}
	return p, true
}
