package floss

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/srg/flossctl/internal/bt"
)

// EncodeDevice renders a device in the daemon's dict form.
func EncodeDevice(d bt.Device) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"address": dbus.MakeVariant(d.Address),
		"name":    dbus.MakeVariant(d.Name),
	}
}

// DecodeDevice parses a device dict. The address is mandatory; a
// missing name decodes to the empty string.
func DecodeDevice(dict map[string]dbus.Variant) (bt.Device, error) {
	address, ok := variantString(dict["address"])
	if !ok || address == "" {
		return bt.Device{}, fmt.Errorf("device dict has no address: %v", dict)
	}
	name, _ := variantString(dict["name"])
	return bt.Device{Address: address, Name: name}, nil
}

func decodeHciAdapter(dict map[string]dbus.Variant) bt.HciAdapter {
	var a bt.HciAdapter
	a.HCI, _ = variantInt32(dict["hci_interface"])
	a.Enabled, _ = variantBool(dict["enabled"])
	return a
}

// DecodeGattServices parses the service list of a search-complete
// event. Fields missing from a dict decode to their zero values; a
// damaged entry never fails the list.
func DecodeGattServices(dicts []map[string]dbus.Variant) []bt.GattService {
	services := make([]bt.GattService, 0, len(dicts))
	for _, dict := range dicts {
		services = append(services, decodeGattService(dict))
	}
	return services
}

func decodeGattService(dict map[string]dbus.Variant) bt.GattService {
	var s bt.GattService
	s.UUID, _ = variantString(dict["uuid"])
	s.InstanceID, _ = variantInt32(dict["instance_id"])
	s.ServiceType, _ = variantInt32(dict["service_type"])
	if nested, ok := variantDicts(dict["characteristics"]); ok {
		for _, c := range nested {
			s.Characteristics = append(s.Characteristics, decodeGattCharacteristic(c))
		}
	}
	return s
}

func decodeGattCharacteristic(dict map[string]dbus.Variant) bt.GattCharacteristic {
	var c bt.GattCharacteristic
	c.UUID, _ = variantString(dict["uuid"])
	c.InstanceID, _ = variantInt32(dict["instance_id"])
	c.Properties, _ = variantInt32(dict["properties"])
	c.Permissions, _ = variantInt32(dict["permissions"])
	c.KeySize, _ = variantInt32(dict["key_size"])
	c.WriteType, _ = variantInt32(dict["write_type"])
	if nested, ok := variantDicts(dict["descriptors"]); ok {
		for _, d := range nested {
			c.Descriptors = append(c.Descriptors, decodeGattDescriptor(d))
		}
	}
	return c
}

func decodeGattDescriptor(dict map[string]dbus.Variant) bt.GattDescriptor {
	var d bt.GattDescriptor
	d.UUID, _ = variantString(dict["uuid"])
	d.InstanceID, _ = variantInt32(dict["instance_id"])
	d.Permissions, _ = variantInt32(dict["permissions"])
	return d
}

// variantString unwraps a string variant. Nested variants are resolved.
func variantString(v dbus.Variant) (string, bool) {
	switch val := v.Value().(type) {
	case string:
		return val, true
	case dbus.Variant:
		return variantString(val)
	}
	return "", false
}

func variantInt32(v dbus.Variant) (int32, bool) {
	switch val := v.Value().(type) {
	case int32:
		return val, true
	case uint32:
		return int32(val), true
	case dbus.Variant:
		return variantInt32(val)
	}
	return 0, false
}

func variantBool(v dbus.Variant) (bool, bool) {
	switch val := v.Value().(type) {
	case bool:
		return val, true
	case dbus.Variant:
		return variantBool(val)
	}
	return false, false
}

func variantDicts(v dbus.Variant) ([]map[string]dbus.Variant, bool) {
	switch val := v.Value().(type) {
	case []map[string]dbus.Variant:
		return val, true
	case dbus.Variant:
		return variantDicts(val)
	}
	return nil, false
}
