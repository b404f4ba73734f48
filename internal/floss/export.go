package floss

import (
	"sync/atomic"

	"github.com/cornelk/hashmap"
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/flossctl/internal/bt"
	"github.com/srg/flossctl/internal/callbacks"
)

// Export pairs an exported callback object with the interface it serves.
type Export struct {
	Path      dbus.ObjectPath
	Interface string
}

// ExportRegistry tracks the callback objects a session has placed on
// the bus, keyed by an opaque token. Reads and writes may come from
// different goroutines during teardown.
type ExportRegistry struct {
	seq     uint32
	entries *hashmap.Map[uint32, Export]
}

// NewExportRegistry creates an empty registry.
func NewExportRegistry() *ExportRegistry {
	return &ExportRegistry{entries: hashmap.New[uint32, Export]()}
}

// Add records an export and returns its token. Tokens start at 1.
func (r *ExportRegistry) Add(path dbus.ObjectPath, iface string) uint32 {
	token := atomic.AddUint32(&r.seq, 1)
	r.entries.Set(token, Export{Path: path, Interface: iface})
	return token
}

// Get looks up a tracked export by token.
func (r *ExportRegistry) Get(token uint32) (Export, bool) {
	return r.entries.Get(token)
}

// Remove drops a tracked export and reports whether the token was known.
func (r *ExportRegistry) Remove(token uint32) bool {
	if _, ok := r.entries.Get(token); !ok {
		return false
	}
	r.entries.Del(token)
	return true
}

// Range visits the tracked exports until fn returns false.
func (r *ExportRegistry) Range(fn func(token uint32, export Export) bool) {
	r.entries.Range(fn)
}

// Len reports the number of live exports.
func (r *ExportRegistry) Len() int {
	return r.entries.Len()
}

// The daemon marshals its enums as u32 and calls members named after
// the handler methods. The event types below sit on the bus side of
// that contract: they carry the exact wire signatures, decode dicts,
// and forward to the handlers. They always reply success; a payload
// that cannot be decoded is logged and dropped.

type managerEvents struct {
	h *callbacks.Manager
}

func (e *managerEvents) OnHciDeviceChanged(hci int32, present bool) *dbus.Error {
	e.h.OnHciDeviceChanged(hci, present)
	return nil
}

func (e *managerEvents) OnHciEnabledChanged(hci int32, enabled bool) *dbus.Error {
	e.h.OnHciEnabledChanged(hci, enabled)
	return nil
}

type adapterEvents struct {
	h   *callbacks.Adapter
	log *logrus.Entry
}

func (e *adapterEvents) OnAddressChanged(address string) *dbus.Error {
	e.h.OnAddressChanged(address)
	return nil
}

func (e *adapterEvents) OnDeviceFound(device map[string]dbus.Variant) *dbus.Error {
	d, err := DecodeDevice(device)
	if err != nil {
		e.log.WithError(err).Warn("Dropping malformed device-found event")
		return nil
	}
	e.h.OnDeviceFound(d)
	return nil
}

func (e *adapterEvents) OnDiscoveringChanged(discovering bool) *dbus.Error {
	e.h.OnDiscoveringChanged(discovering)
	return nil
}

func (e *adapterEvents) OnSspRequest(device map[string]dbus.Variant, cod uint32, variant uint32, passkey uint32) *dbus.Error {
	d, err := DecodeDevice(device)
	if err != nil {
		e.log.WithError(err).Warn("Dropping malformed SSP request")
		return nil
	}
	e.h.OnSspRequest(d, cod, bt.SspVariant(variant), passkey)
	return nil
}

func (e *adapterEvents) OnBondStateChanged(status uint32, address string, state uint32) *dbus.Error {
	e.h.OnBondStateChanged(status, address, state)
	return nil
}

type connectionEvents struct {
	h   *callbacks.Connection
	log *logrus.Entry
}

func (e *connectionEvents) OnDeviceConnected(device map[string]dbus.Variant) *dbus.Error {
	d, err := DecodeDevice(device)
	if err != nil {
		e.log.WithError(err).Warn("Dropping malformed device-connected event")
		return nil
	}
	e.h.OnDeviceConnected(d)
	return nil
}

func (e *connectionEvents) OnDeviceDisconnected(device map[string]dbus.Variant) *dbus.Error {
	d, err := DecodeDevice(device)
	if err != nil {
		e.log.WithError(err).Warn("Dropping malformed device-disconnected event")
		return nil
	}
	e.h.OnDeviceDisconnected(d)
	return nil
}

type gattEvents struct {
	h *callbacks.Gatt
}

func (e *gattEvents) OnClientRegistered(status uint32, clientID int32) *dbus.Error {
	e.h.OnClientRegistered(bt.GattStatus(status), clientID)
	return nil
}

func (e *gattEvents) OnClientConnectionState(status uint32, clientID int32, connected bool, address string) *dbus.Error {
	e.h.OnClientConnectionState(bt.GattStatus(status), clientID, connected, address)
	return nil
}

func (e *gattEvents) OnPhyUpdate(address string, txPhy uint32, rxPhy uint32, status uint32) *dbus.Error {
	e.h.OnPhyUpdate(address, bt.LePhy(txPhy), bt.LePhy(rxPhy), bt.GattStatus(status))
	return nil
}

func (e *gattEvents) OnPhyRead(address string, txPhy uint32, rxPhy uint32, status uint32) *dbus.Error {
	e.h.OnPhyRead(address, bt.LePhy(txPhy), bt.LePhy(rxPhy), bt.GattStatus(status))
	return nil
}

func (e *gattEvents) OnSearchComplete(address string, services []map[string]dbus.Variant, status uint32) *dbus.Error {
	e.h.OnSearchComplete(address, DecodeGattServices(services), bt.GattStatus(status))
	return nil
}

func (e *gattEvents) OnCharacteristicRead(address string, status uint32, handle int32, value []byte) *dbus.Error {
	e.h.OnCharacteristicRead(address, bt.GattStatus(status), handle, value)
	return nil
}

func (e *gattEvents) OnCharacteristicWrite(address string, status uint32, handle int32) *dbus.Error {
	e.h.OnCharacteristicWrite(address, bt.GattStatus(status), handle)
	return nil
}

func (e *gattEvents) OnExecuteWrite(address string, status uint32) *dbus.Error {
	e.h.OnExecuteWrite(address, bt.GattStatus(status))
	return nil
}

func (e *gattEvents) OnDescriptorRead(address string, status uint32, handle int32, value []byte) *dbus.Error {
	e.h.OnDescriptorRead(address, bt.GattStatus(status), handle, value)
	return nil
}

func (e *gattEvents) OnDescriptorWrite(address string, status uint32, handle int32) *dbus.Error {
	e.h.OnDescriptorWrite(address, bt.GattStatus(status), handle)
	return nil
}

func (e *gattEvents) OnNotify(address string, handle int32, value []byte) *dbus.Error {
	e.h.OnNotify(address, handle, value)
	return nil
}

func (e *gattEvents) OnReadRemoteRssi(address string, rssi int32, status uint32) *dbus.Error {
	e.h.OnReadRemoteRssi(address, rssi, bt.GattStatus(status))
	return nil
}

func (e *gattEvents) OnConfigureMtu(address string, mtu int32, status uint32) *dbus.Error {
	e.h.OnConfigureMtu(address, mtu, bt.GattStatus(status))
	return nil
}

func (e *gattEvents) OnConnectionUpdated(address string, interval int32, latency int32, timeout int32, status uint32) *dbus.Error {
	e.h.OnConnectionUpdated(address, interval, latency, timeout, bt.GattStatus(status))
	return nil
}

func (e *gattEvents) OnServiceChanged(address string) *dbus.Error {
	e.h.OnServiceChanged(address)
	return nil
}
