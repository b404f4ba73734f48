package floss

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/srg/flossctl/internal/bt"
)

// ErrRefused indicates a request the daemon acknowledged but declined.
var ErrRefused = errors.New("refused by daemon")

var _ bt.Adapter = (*AdapterClient)(nil)

// AdapterClient drives one adapter's Bluetooth interface over the bus.
type AdapterClient struct {
	obj dbus.BusObject
}

// NewAdapterClient wraps the adapter object of the given hci index.
func NewAdapterClient(conn *dbus.Conn, hci int32) *AdapterClient {
	return &AdapterClient{obj: conn.Object(AdapterService, AdapterObject(hci))}
}

// boolCall invokes a method whose reply is a single accepted flag.
func (a *AdapterClient) boolCall(member string, args ...interface{}) (bool, error) {
	call := a.obj.Call(AdapterInterface+"."+member, 0, args...)
	if call.Err != nil {
		return false, fmt.Errorf("%s: %w", member, call.Err)
	}
	var accepted bool
	if err := call.Store(&accepted); err != nil {
		return false, fmt.Errorf("decode %s reply: %w", member, err)
	}
	return accepted, nil
}

// Address returns the public address of the adapter.
func (a *AdapterClient) Address() (string, error) {
	call := a.obj.Call(AdapterInterface+".GetAddress", 0)
	if call.Err != nil {
		return "", fmt.Errorf("get address: %w", call.Err)
	}
	var address string
	if err := call.Store(&address); err != nil {
		return "", fmt.Errorf("decode address reply: %w", err)
	}
	return address, nil
}

// StartDiscovery begins a discovery session.
func (a *AdapterClient) StartDiscovery() error {
	accepted, err := a.boolCall("StartDiscovery")
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("start discovery: %w", ErrRefused)
	}
	return nil
}

// CancelDiscovery ends the running discovery session.
func (a *AdapterClient) CancelDiscovery() error {
	accepted, err := a.boolCall("CancelDiscovery")
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("cancel discovery: %w", ErrRefused)
	}
	return nil
}

// CreateBond asks the daemon to bond with the device. The reply only
// acknowledges the request; the outcome arrives through bond state
// events.
func (a *AdapterClient) CreateBond(d bt.Device, transport bt.Transport) (bool, error) {
	return a.boolCall("CreateBond", EncodeDevice(d), int32(transport))
}

// SetPairingConfirmation answers a pending pairing request.
func (a *AdapterClient) SetPairingConfirmation(d bt.Device, accept bool) error {
	accepted, err := a.boolCall("SetPairingConfirmation", EncodeDevice(d), accept)
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("set pairing confirmation: %w", ErrRefused)
	}
	return nil
}

// ConnectAllEnabledProfiles connects every profile enabled for the device.
func (a *AdapterClient) ConnectAllEnabledProfiles(d bt.Device) error {
	accepted, err := a.boolCall("ConnectAllEnabledProfiles", EncodeDevice(d))
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("connect all enabled profiles: %w", ErrRefused)
	}
	return nil
}

// DisconnectAllEnabledProfiles drops every profile connection to the device.
func (a *AdapterClient) DisconnectAllEnabledProfiles(d bt.Device) error {
	accepted, err := a.boolCall("DisconnectAllEnabledProfiles", EncodeDevice(d))
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("disconnect all enabled profiles: %w", ErrRefused)
	}
	return nil
}

// RegisterCallback subscribes an exported adapter callback object to
// discovery, pairing and bonding events.
func (a *AdapterClient) RegisterCallback(path dbus.ObjectPath) error {
	if call := a.obj.Call(AdapterInterface+".RegisterCallback", 0, path); call.Err != nil {
		return fmt.Errorf("register adapter callback: %w", call.Err)
	}
	return nil
}

// RegisterConnectionCallback subscribes an exported connection callback
// object to connect and disconnect events.
func (a *AdapterClient) RegisterConnectionCallback(path dbus.ObjectPath) error {
	accepted, err := a.boolCall("RegisterConnectionCallback", path)
	if err != nil {
		return err
	}
	if !accepted {
		return fmt.Errorf("register connection callback: %w", ErrRefused)
	}
	return nil
}
