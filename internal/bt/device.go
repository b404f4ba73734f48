package bt

import "fmt"

// ClassicDeviceName is the placeholder display name used when an event
// carries only an address, e.g. the auto-connect that follows a bond.
const ClassicDeviceName = "Classic device"

// Device identifies a remote Bluetooth device.
//
// Address is the stable identity key; Name is display-only and may be
// stale or a placeholder.
type Device struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// NewDevice builds a descriptor from an address and display name.
func NewDevice(address, name string) Device {
	return Device{Address: address, Name: name}
}

// ClassicDevice builds a descriptor for events that only carry an address.
func ClassicDevice(address string) Device {
	return Device{Address: address, Name: ClassicDeviceName}
}

func (d Device) String() string {
	return fmt.Sprintf("[%s: %s]", d.Address, d.Name)
}
