package network

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestProbe_Reachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	probe := NewProbe(ProbeConfig{Addr: ln.Addr().String(), Timeout: time.Second})
	if !probe.HasInternetAccess(context.Background()) {
		t.Error("expected reachable")
	}
}

func TestProbe_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	probe := NewProbe(ProbeConfig{Addr: addr, Timeout: time.Second})
	if probe.HasInternetAccess(context.Background()) {
		t.Error("expected unreachable")
	}
}

func TestProbe_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := NewProbe(ProbeConfig{Addr: "127.0.0.1:1"})
	if probe.HasInternetAccess(ctx) {
		t.Error("expected false for cancelled context")
	}
}

func TestNewProbe_Defaults(t *testing.T) {
	probe := NewProbe(ProbeConfig{})
	if probe.addr != DefaultProbeAddr {
		t.Errorf("addr: got %q", probe.addr)
	}
	if probe.dialer.Timeout != DefaultProbeTimeout {
		t.Errorf("timeout: got %v", probe.dialer.Timeout)
	}
}

func TestAlways(t *testing.T) {
	if !(Always{}).HasInternetAccess(context.Background()) {
		t.Error("expected true")
	}
}
