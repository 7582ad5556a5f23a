// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager defaults, entry parsing and de-duplication
package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Feed", Port: 8928})
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	if mgr.config.Path != "/notecast" {
		t.Errorf("expected default path /notecast, got %s", mgr.config.Path)
	}
	mgr.Stop()
}

func TestEntryToServer(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "Stage Left._notecast._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       8928,
		InfoFields: []string{"path=/feed"},
	}

	server := entryToServer(entry)
	if server == nil {
		t.Fatal("expected server from entry")
	}
	if server.Name != "Stage Left" {
		t.Errorf("expected name Stage Left, got %q", server.Name)
	}
	if server.Addr() != "192.168.1.20:8928" {
		t.Errorf("expected addr 192.168.1.20:8928, got %s", server.Addr())
	}
	if server.Path != "/feed" {
		t.Errorf("expected path /feed, got %s", server.Path)
	}
}

func TestEntryToServer_NoIPv4(t *testing.T) {
	if s := entryToServer(&mdns.ServiceEntry{Name: "x", Port: 1}); s != nil {
		t.Errorf("expected nil for entry without IPv4, got %+v", s)
	}
}

func TestMarkSeen(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "x", Port: 1})
	defer mgr.Stop()

	s := &ServerInfo{Host: "10.0.0.1", Port: 8928, Path: "/notecast"}
	if !mgr.markSeen(s) {
		t.Error("expected first sighting to be new")
	}
	if mgr.markSeen(s) {
		t.Error("expected second sighting to be a duplicate")
	}
}
