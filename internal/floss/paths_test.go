package floss

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestDaemonObjectPaths(t *testing.T) {
	assert.Equal(t, dbus.ObjectPath("/org/chromium/bluetooth/hci0/adapter"), AdapterObject(0))
	assert.Equal(t, dbus.ObjectPath("/org/chromium/bluetooth/hci2/gatt"), GattObject(2))
}

func TestNewCallbackPaths(t *testing.T) {
	paths := NewCallbackPaths("deadbeef")

	assert.Equal(t, dbus.ObjectPath("/org/chromium/bluetooth/client/deadbeef/manager_callback"), paths.Manager)
	assert.Equal(t, dbus.ObjectPath("/org/chromium/bluetooth/client/deadbeef/bluetooth_callback"), paths.Adapter)
	assert.Equal(t, dbus.ObjectPath("/org/chromium/bluetooth/client/deadbeef/bluetooth_conn_callback"), paths.Connection)
	assert.Equal(t, dbus.ObjectPath("/org/chromium/bluetooth/client/deadbeef/bluetooth_gatt_callback"), paths.Gatt)

	for _, p := range []dbus.ObjectPath{paths.Manager, paths.Adapter, paths.Connection, paths.Gatt} {
		assert.True(t, p.IsValid(), "path %q must be a valid object path", p)
	}
}

func TestNewClientID(t *testing.T) {
	id := NewClientID()

	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.True(t, NewCallbackPaths(id).Manager.IsValid())
	assert.NotEqual(t, id, NewClientID())
}
