package floss

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/flossctl/internal/bt"
	"github.com/srg/flossctl/internal/callbacks"
	"github.com/srg/flossctl/internal/client"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestExportRegistry(t *testing.T) {
	r := NewExportRegistry()

	t.Run("AddAssignsMonotonicTokens", func(t *testing.T) {
		first := r.Add("/client/a", AdapterCallbackInterface)
		second := r.Add("/client/b", GattCallbackInterface)

		assert.Equal(t, uint32(1), first)
		assert.Equal(t, uint32(2), second)
		assert.Equal(t, 2, r.Len())

		export, ok := r.Get(first)
		require.True(t, ok)
		assert.Equal(t, dbus.ObjectPath("/client/a"), export.Path)
		assert.Equal(t, AdapterCallbackInterface, export.Interface)
	})

	t.Run("RemoveDropsEntry", func(t *testing.T) {
		token := r.Add("/client/c", ManagerCallbackInterface)

		assert.True(t, r.Remove(token))
		assert.False(t, r.Remove(token))
		_, ok := r.Get(token)
		assert.False(t, ok)
	})

	t.Run("RangeVisitsEverything", func(t *testing.T) {
		seen := map[uint32]Export{}
		r.Range(func(token uint32, export Export) bool {
			seen[token] = export
			return true
		})
		assert.Len(t, seen, r.Len())
	})
}

func TestManagerEventsForwarding(t *testing.T) {
	cctx := client.NewContext(testLogger())
	events := &managerEvents{
		h: callbacks.NewManager("/client/manager_callback", cctx, testLogger()),
	}

	require.Nil(t, events.OnHciDeviceChanged(0, true))
	require.Nil(t, events.OnHciEnabledChanged(0, true))

	enabled, tracked := cctx.AdapterState(0)
	assert.True(t, tracked)
	assert.True(t, enabled)
}

func TestAdapterEventsDecoding(t *testing.T) {
	cctx := client.NewContext(testLogger())
	events := &adapterEvents{
		h:   callbacks.NewAdapter("/client/bluetooth_callback", cctx, testLogger()),
		log: testLogger().WithField("component", "floss"),
	}

	t.Run("WellFormedDeviceForwarded", func(t *testing.T) {
		derr := events.OnDeviceFound(map[string]dbus.Variant{
			"address": dbus.MakeVariant("AA:BB"),
			"name":    dbus.MakeVariant("Keyboard"),
		})
		assert.Nil(t, derr)

		d, ok := cctx.FoundDevice("AA:BB")
		require.True(t, ok)
		assert.Equal(t, "Keyboard", d.Name)
	})

	t.Run("MalformedDeviceDropped", func(t *testing.T) {
		derr := events.OnDeviceFound(map[string]dbus.Variant{
			"name": dbus.MakeVariant("no address"),
		})
		assert.Nil(t, derr, "decode failures reply success and drop the event")
		assert.Len(t, cctx.FoundDevices(), 1)
	})

	t.Run("BondStateNeverErrorsBack", func(t *testing.T) {
		// Bonded triggers an auto-connect with no collaborator bound;
		// the failure stays on our side of the bus.
		derr := events.OnBondStateChanged(uint32(bt.StatusSuccess), "AA:BB", uint32(bt.Bonded))
		assert.Nil(t, derr)
	})
}

func TestConnectionEventsDecoding(t *testing.T) {
	cctx := client.NewContext(testLogger())
	events := &connectionEvents{
		h:   callbacks.NewConnection("/client/bluetooth_conn_callback", cctx, testLogger()),
		log: testLogger().WithField("component", "floss"),
	}

	assert.Nil(t, events.OnDeviceConnected(EncodeDevice(bt.NewDevice("AA:BB", "Headset"))))
	assert.Nil(t, events.OnDeviceDisconnected(map[string]dbus.Variant{}))
}

func TestGattEventsForwarding(t *testing.T) {
	cctx := client.NewContext(testLogger())
	events := &gattEvents{
		h: callbacks.NewGatt("/client/bluetooth_gatt_callback", cctx, testLogger()),
	}

	require.Nil(t, events.OnClientRegistered(uint32(bt.GattSuccess), 9))

	id, ok := cctx.GattClientID()
	require.True(t, ok)
	assert.Equal(t, int32(9), id)

	assert.Nil(t, events.OnSearchComplete("AA:BB", []map[string]dbus.Variant{
		{"uuid": dbus.MakeVariant("180f"), "instance_id": dbus.MakeVariant(int32(1))},
	}, uint32(bt.GattSuccess)))
}
