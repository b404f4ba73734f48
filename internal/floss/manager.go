package floss

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/srg/flossctl/internal/bt"
)

var _ bt.Manager = (*ManagerClient)(nil)

// ManagerClient drives the daemon's Manager interface over the bus.
type ManagerClient struct {
	obj dbus.BusObject
}

// NewManagerClient wraps the daemon's manager object.
func NewManagerClient(conn *dbus.Conn) *ManagerClient {
	return &ManagerClient{obj: conn.Object(ManagerService, ManagerObject)}
}

// Start powers up the adapter behind the given hci index.
func (m *ManagerClient) Start(hci int32) error {
	if call := m.obj.Call(ManagerInterface+".Start", 0, hci); call.Err != nil {
		return fmt.Errorf("start hci%d: %w", hci, call.Err)
	}
	return nil
}

// Stop powers down the adapter behind the given hci index.
func (m *ManagerClient) Stop(hci int32) error {
	if call := m.obj.Call(ManagerInterface+".Stop", 0, hci); call.Err != nil {
		return fmt.Errorf("stop hci%d: %w", hci, call.Err)
	}
	return nil
}

// AdapterEnabled reports whether the daemon considers the adapter
// behind the given hci index powered.
func (m *ManagerClient) AdapterEnabled(hci int32) (bool, error) {
	call := m.obj.Call(ManagerInterface+".GetAdapterEnabled", 0, hci)
	if call.Err != nil {
		return false, fmt.Errorf("get adapter enabled: %w", call.Err)
	}
	var enabled bool
	if err := call.Store(&enabled); err != nil {
		return false, fmt.Errorf("decode adapter enabled reply: %w", err)
	}
	return enabled, nil
}

// AvailableAdapters lists the hci interfaces the daemon knows about.
func (m *ManagerClient) AvailableAdapters() ([]bt.HciAdapter, error) {
	call := m.obj.Call(ManagerInterface+".GetAvailableAdapters", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("get available adapters: %w", call.Err)
	}
	var dicts []map[string]dbus.Variant
	if err := call.Store(&dicts); err != nil {
		return nil, fmt.Errorf("decode available adapters reply: %w", err)
	}
	adapters := make([]bt.HciAdapter, 0, len(dicts))
	for _, dict := range dicts {
		adapters = append(adapters, decodeHciAdapter(dict))
	}
	return adapters, nil
}

// RegisterCallback subscribes an exported manager callback object to
// presence and power events.
func (m *ManagerClient) RegisterCallback(path dbus.ObjectPath) error {
	if call := m.obj.Call(ManagerInterface+".RegisterCallback", 0, path); call.Err != nil {
		return fmt.Errorf("register manager callback: %w", call.Err)
	}
	return nil
}
