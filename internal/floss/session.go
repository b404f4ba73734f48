package floss

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/flossctl/internal/callbacks"
	"github.com/srg/flossctl/internal/client"
)

// Bus selectors accepted by Connect.
const (
	BusSystem  = "system"
	BusSession = "session"
)

// ErrUnknownBus indicates a bus selector outside system/session.
var ErrUnknownBus = errors.New("unknown bus")

// Session is one client's presence on the bus: the daemon proxies, the
// exported callback objects and their registrations with the daemon.
type Session struct {
	conn   *dbus.Conn
	logger *logrus.Logger
	log    *logrus.Entry

	clientID string
	paths    CallbackPaths
	exports  *ExportRegistry

	manager *ManagerClient
	adapter *AdapterClient
	gatt    *GattClient

	cleanup   []func()
	closeOnce sync.Once
}

// Connect opens the chosen bus and builds a session against the
// adapter behind the given hci index.
func Connect(bus string, hci int32, cctx *client.Context, logger *logrus.Logger) (*Session, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	switch bus {
	case "", BusSystem:
		conn, err = dbus.SystemBus()
	case BusSession:
		conn, err = dbus.SessionBus()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBus, bus)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s bus: %w", bus, err)
	}
	return NewSession(conn, hci, cctx, logger)
}

// NewSession exports the callback objects on conn, registers them with
// the daemon and binds the adapter collaborators into cctx. The caller
// keeps ownership of cctx; the session owns conn.
func NewSession(conn *dbus.Conn, hci int32, cctx *client.Context, logger *logrus.Logger) (*Session, error) {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Session{
		conn:     conn,
		logger:   logger,
		log:      logger.WithField("component", "floss"),
		clientID: NewClientID(),
		exports:  NewExportRegistry(),
		manager:  NewManagerClient(conn),
		adapter:  NewAdapterClient(conn, hci),
	}
	s.paths = NewCallbackPaths(s.clientID)
	s.gatt = NewGattClient(conn, hci, s.paths.Gatt)

	if err := s.exportAll(cctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.registerAll(); err != nil {
		_ = s.Close()
		return nil, err
	}
	cctx.BindAdapter(s.adapter, s.adapter)
	s.seed(cctx)

	s.log.WithFields(logrus.Fields{
		"client_id": s.clientID,
		"hci":       hci,
	}).Info("Session established")
	return s, nil
}

func (s *Session) exportAll(cctx *client.Context) error {
	manager := &managerEvents{
		h: callbacks.NewManager(string(s.paths.Manager), cctx, s.logger),
	}
	if err := s.export(manager, s.paths.Manager, ManagerCallbackInterface); err != nil {
		return err
	}

	adapter := &adapterEvents{
		h:   callbacks.NewAdapter(string(s.paths.Adapter), cctx, s.logger),
		log: s.log,
	}
	if err := s.export(adapter, s.paths.Adapter, AdapterCallbackInterface); err != nil {
		return err
	}

	connection := &connectionEvents{
		h:   callbacks.NewConnection(string(s.paths.Connection), cctx, s.logger),
		log: s.log,
	}
	if err := s.export(connection, s.paths.Connection, ConnectionCallbackInterface); err != nil {
		return err
	}

	gatt := &gattEvents{
		h: callbacks.NewGatt(string(s.paths.Gatt), cctx, s.logger),
	}
	return s.export(gatt, s.paths.Gatt, GattCallbackInterface)
}

// export places one callback object on the bus and queues its removal.
func (s *Session) export(v interface{}, path dbus.ObjectPath, iface string) error {
	if err := s.conn.Export(v, path, iface); err != nil {
		return fmt.Errorf("export %s: %w", iface, err)
	}
	token := s.exports.Add(path, iface)
	s.cleanup = append(s.cleanup, func() {
		_ = s.conn.Export(nil, path, iface)
		s.exports.Remove(token)
	})
	s.log.WithFields(logrus.Fields{
		"path":      path,
		"interface": iface,
	}).Debug("Exported callback object")
	return nil
}

func (s *Session) registerAll() error {
	if err := s.manager.RegisterCallback(s.paths.Manager); err != nil {
		return err
	}
	if err := s.adapter.RegisterCallback(s.paths.Adapter); err != nil {
		return err
	}
	return s.adapter.RegisterConnectionCallback(s.paths.Connection)
}

// seed primes the session state with the adapters the daemon already
// knows, so the console has them before the first presence event.
func (s *Session) seed(cctx *client.Context) {
	adapters, err := s.manager.AvailableAdapters()
	if err != nil {
		s.log.WithError(err).Warn("Could not list available adapters")
		return
	}
	for _, a := range adapters {
		cctx.TrackAdapter(a.HCI)
		cctx.SetAdapterEnabled(a.HCI, a.Enabled)
	}
}

// Manager exposes the daemon's manager interface.
func (s *Session) Manager() *ManagerClient { return s.manager }

// Adapter exposes the bound adapter interface.
func (s *Session) Adapter() *AdapterClient { return s.adapter }

// Gatt exposes the bound GATT interface.
func (s *Session) Gatt() *GattClient { return s.gatt }

// ClientID returns the unique path element under which this session's
// callback objects live.
func (s *Session) ClientID() string { return s.clientID }

// Close removes the exported callback objects and drops the bus
// connection. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for i := len(s.cleanup) - 1; i >= 0; i-- {
			s.cleanup[i]()
		}
		s.cleanup = nil
		err = s.conn.Close()
	})
	return err
}
