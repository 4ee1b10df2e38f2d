// Package mdns advertises the guestbook on the local network through the
// Avahi daemon.
package mdns

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is advertised so browsers and service browsers can find
	// the HTML pages.
	ServiceType = "_http._tcp"

	// APIPath is advertised in TXT records for JSON clients.
	APIPath = "/api/v1"
)

// Service manages a single Avahi entry group for the server.
type Service struct {
	logger *slog.Logger

	mu     sync.Mutex
	conn   *dbus.Conn
	server *avahi.Server
	group  *avahi.EntryGroup
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// Start publishes the server under name on port. Calling Start again
// replaces the previous advertisement.
//
// Errors are typically non-fatal: containers and CI rarely run Avahi.
func (s *Service) Start(name, version string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}

	server, err := avahi.ServerNew(conn)
	if err != nil {
		return fmt.Errorf("connect to avahi: %w", err)
	}

	group, err := server.EntryGroupNew()
	if err != nil {
		server.Close()
		return fmt.Errorf("create entry group: %w", err)
	}

	err = group.AddService(
		avahi.InterfaceUnspec,
		avahi.ProtoUnspec,
		0,
		name,
		ServiceType,
		"local",
		"",
		uint16(port),
		TXTRecords(name, version),
	)
	if err != nil {
		server.EntryGroupFree(group)
		server.Close()
		return fmt.Errorf("add service: %w", err)
	}

	if err := group.Commit(); err != nil {
		server.EntryGroupFree(group)
		server.Close()
		return fmt.Errorf("commit entry group: %w", err)
	}

	s.conn = conn
	s.server = server
	s.group = group

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"name", name,
		"port", port,
	)

	return nil
}

// Stop withdraws the advertisement.
// Safe to call multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopLocked() {
		s.logger.Info("mDNS advertisement stopped")
	}
}

// Running reports whether an advertisement is published.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group != nil
}

func (s *Service) stopLocked() bool {
	if s.server == nil {
		return false
	}

	if s.group != nil {
		if err := s.group.Reset(); err != nil {
			s.logger.Debug("reset entry group", "error", err)
		}
		s.server.EntryGroupFree(s.group)
	}
	s.server.Close()

	s.conn = nil
	s.server = nil
	s.group = nil
	return true
}

// TXTRecords builds the DNS-SD TXT records for an advertisement.
func TXTRecords(name, version string) [][]byte {
	records := []string{
		"path=/",
		"api=" + APIPath,
		"name=" + name,
	}
	if version != "" {
		records = append(records, "version="+version)
	}

	txt := make([][]byte, len(records))
	for i, r := range records {
		txt[i] = []byte(r)
	}
	return txt
}
