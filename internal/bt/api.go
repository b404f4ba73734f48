package bt

// HciAdapter reports one adapter known to the management daemon.
type HciAdapter struct {
	HCI     int32 `json:"hci_interface"`
	Enabled bool  `json:"enabled"`
}

// PairingResponder answers an outstanding pairing request on behalf of
// the operator.
type PairingResponder interface {
	// SetPairingConfirmation accepts or rejects the pairing in progress
	// with the given device.
	SetPairingConfirmation(d Device, accept bool) error
}

// ProfileConnector drives profile-level connections to a remote device.
type ProfileConnector interface {
	// ConnectAllEnabledProfiles connects every profile this client has
	// enabled for the device.
	ConnectAllEnabledProfiles(d Device) error

	// DisconnectAllEnabledProfiles tears the profile connections down
	// again.
	DisconnectAllEnabledProfiles(d Device) error
}

// Manager is the management-daemon surface that powers adapters on and
// off and enumerates the hardware.
type Manager interface {
	// Start powers the adapter with the given HCI index on.
	Start(hci int32) error

	// Stop powers the adapter off.
	Stop(hci int32) error

	// AdapterEnabled reports whether the adapter is currently powered.
	AdapterEnabled(hci int32) (bool, error)

	// AvailableAdapters lists the adapters the daemon knows about.
	AvailableAdapters() ([]HciAdapter, error)
}

// Adapter is the per-adapter daemon surface: discovery, bonding and
// profile connections for a single powered adapter.
type Adapter interface {
	PairingResponder
	ProfileConnector

	// Address returns the adapter's own Bluetooth address.
	Address() (string, error)

	// StartDiscovery begins an inquiry/scan session.
	StartDiscovery() error

	// CancelDiscovery stops the active session.
	CancelDiscovery() error

	// CreateBond initiates bonding with the device over the given
	// transport. The bool mirrors the daemon's accepted/rejected reply.
	CreateBond(d Device, transport Transport) (bool, error)
}

// Gatt is the GATT-profile daemon surface. Registration outcomes arrive
// asynchronously through the GATT event handler.
type Gatt interface {
	// RegisterClient asks the daemon to register this client under the
	// given application UUID.
	RegisterClient(appUUID string, eattSupport bool) error

	// UnregisterClient releases a previously assigned client handle.
	UnregisterClient(clientID int32) error
}
