package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// ControlBusName is owned by the running menu, independently of the
	// notification name so the menu stays reachable in monitor mode.
	ControlBusName = "io.github.jmylchreest.cliv"
	// ControlInterface is the menu control interface name.
	ControlInterface = "io.github.jmylchreest.cliv.Menu"
	// ControlPath is the menu control object path.
	ControlPath = "/io/github/jmylchreest/cliv/Menu"
)

// ErrMenuRunning is returned by ControlService.Start when another menu
// already owns ControlBusName.
var ErrMenuRunning = errors.New("another cliv menu is already running")

// Controller is the menu surface remotely driven over D-Bus.
type Controller interface {
	Toggle()
	MusicPlay() error
	MusicPause()
	MusicStop()
	MusicToggleLoop() bool
	MusicSetVolume(volume float64)
	MusicStatus() string
}

// controlObject adapts a Controller to godbus method signatures.
type controlObject struct {
	c      Controller
	logger *slog.Logger
}

func (o *controlObject) Toggle() *dbus.Error {
	o.logger.Debug("Toggle called")
	o.c.Toggle()
	return nil
}

func (o *controlObject) MusicPlay() *dbus.Error {
	if err := o.c.MusicPlay(); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (o *controlObject) MusicPause() *dbus.Error {
	o.c.MusicPause()
	return nil
}

func (o *controlObject) MusicStop() *dbus.Error {
	o.c.MusicStop()
	return nil
}

func (o *controlObject) MusicToggleLoop() (bool, *dbus.Error) {
	return o.c.MusicToggleLoop(), nil
}

func (o *controlObject) MusicSetVolume(volume float64) *dbus.Error {
	o.c.MusicSetVolume(volume)
	return nil
}

func (o *controlObject) MusicStatus() (string, *dbus.Error) {
	return o.c.MusicStatus(), nil
}

func exportController(conn *dbus.Conn, c Controller, logger *slog.Logger) error {
	obj := &controlObject{c: c, logger: logger}
	if err := conn.Export(obj, ControlPath, ControlInterface); err != nil {
		return fmt.Errorf("failed to export menu controller: %w", err)
	}

	node := &introspect.Node{
		Name: ControlPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ControlInterface,
				Methods: introspect.Methods(obj),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ControlPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export controller introspectable: %w", err)
	}
	return nil
}

func unexportController(conn *dbus.Conn) {
	_ = conn.Export(nil, ControlPath, ControlInterface)
	_ = conn.Export(nil, ControlPath, "org.freedesktop.DBus.Introspectable")
}

// ControlService owns ControlBusName and exports a Controller on it.
type ControlService struct {
	controller Controller
	logger     *slog.Logger

	mu      sync.Mutex
	conn    *dbus.Conn
	running bool
}

// NewControlService creates a service for c.
func NewControlService(c Controller, logger *slog.Logger) *ControlService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlService{controller: c, logger: logger}
}

// Start claims the control bus name and exports the controller.
func (s *ControlService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("control service already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	reply, err := conn.RequestName(ControlBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return ErrMenuRunning
	}

	if err := exportController(conn, s.controller, s.logger); err != nil {
		_, _ = conn.ReleaseName(ControlBusName)
		return err
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus control service started", "name", ControlBusName, "path", ControlPath)
	return nil
}

// Stop unexports the controller and releases the name.
func (s *ControlService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	unexportController(s.conn)
	if _, err := s.conn.ReleaseName(ControlBusName); err != nil {
		s.logger.Warn("failed to release bus name", "name", ControlBusName, "error", err)
	}
	return nil
}
