// Package discovery advertises the HTTP front end on the local network over
// mDNS, so phones and tablets in the room can find the timer.
package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the DNS-SD service type of the timer.
	ServiceType = "_intervals._tcp"
	// Domain is the mDNS domain.
	Domain = "local."
	// DefaultTTL is the record TTL announced.
	DefaultTTL = 2 * time.Minute
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

var ErrInvalidPort = errors.New("invalid port")

// Config configures an advertisement.
type Config struct {
	Instance  string
	Port      int
	Interface string // empty means all interfaces
	TTL       time.Duration
	Text      map[string]string
}

// Registration is the part of *zeroconf.Server the advertiser uses.
type Registration interface {
	Shutdown()
}

// RegisterFunc registers a service instance.
type RegisterFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface, ttl time.Duration) (Registration, error)

// Advertiser announces the timer service until stopped.
type Advertiser struct {
	register RegisterFunc

	mu     sync.Mutex
	server Registration
}

// NewAdvertiser creates an advertiser backed by zeroconf.
func NewAdvertiser() *Advertiser {
	return &Advertiser{register: zeroconfRegister}
}

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface, ttl time.Duration) (Registration, error) {
	var opts []zeroconf.ServerOption
	if ttl > 0 {
		opts = append(opts, zeroconf.TTL(uint32(ttl.Seconds())))
	}

	return zeroconf.Register(instance, service, domain, port, text, ifaces, opts...)
}

// Advertise starts announcing cfg, replacing any earlier announcement.
func (a *Advertiser) Advertise(cfg Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}

	instance := cfg.Instance
	if instance == "" {
		instance = "intervals"
	}
	if len(instance) > MaxInstanceNameLen {
		instance = instance[:MaxInstanceNameLen]
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	server, err := a.register(instance, ServiceType, Domain, cfg.Port, EncodeTXT(cfg.Text), interfaces(cfg.Interface), ttl)
	if err != nil {
		return fmt.Errorf("failed to register mdns service: %w", err)
	}

	a.server = server
	slog.Info("advertising timer over mdns", "instance", instance, "service", ServiceType, "port", cfg.Port)

	return nil
}

// Stop withdraws the announcement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// ParsePort converts the server's configured port.
func ParsePort(port string) (int, error) {
	p, err := strconv.Atoi(port)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, port)
	}

	return p, nil
}

// interfaces returns the network interfaces to advertise on; nil means all.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}

	iface, err := net.InterfaceByName(name)
	if err != nil {
		slog.Warn("unknown network interface, advertising on all", "interface", name, "error", err)
		return nil
	}

	return []net.Interface{*iface}
}
