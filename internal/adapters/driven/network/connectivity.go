// Package network reports network reachability.
package network

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/custodia-labs/chat-login/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Connectivity = (*Probe)(nil)

const (
	// DefaultProbeAddr is a well-known public DNS resolver
	DefaultProbeAddr = "8.8.8.8:53"

	// DefaultProbeTimeout bounds a single reachability check
	DefaultProbeTimeout = 1500 * time.Millisecond
)

// ProbeConfig holds probe configuration
type ProbeConfig struct {
	Addr    string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Probe checks reachability by opening a TCP connection to a known address
type Probe struct {
	addr   string
	dialer *net.Dialer
	logger *slog.Logger
}

// NewProbe creates a reachability probe
func NewProbe(cfg ProbeConfig) *Probe {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultProbeAddr
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{
		addr:   addr,
		dialer: &net.Dialer{Timeout: timeout},
		logger: logger,
	}
}

// HasInternetAccess reports whether the probe address accepts a connection
func (p *Probe) HasInternetAccess(ctx context.Context) bool {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		p.logger.Debug("connectivity probe failed", "addr", p.addr, "error", err)
		return false
	}
	_ = conn.Close()
	return true
}

// Always is a Connectivity that always reports access, for callers that
// skip the probe.
type Always struct{}

// HasInternetAccess always returns true
func (Always) HasInternetAccess(context.Context) bool { return true }
