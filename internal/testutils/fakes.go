package testutils

import (
	"sync"

	"github.com/srg/flossctl/internal/bt"
)

var (
	_ bt.PairingResponder = (*FakePairingResponder)(nil)
	_ bt.ProfileConnector = (*FakeProfileConnector)(nil)
	_ bt.Manager          = (*FakeManager)(nil)
	_ bt.Adapter          = (*FakeAdapter)(nil)
	_ bt.Gatt             = (*FakeGatt)(nil)
)

// PairingCall is one recorded SetPairingConfirmation invocation.
type PairingCall struct {
	Device bt.Device
	Accept bool
}

// FakePairingResponder records pairing confirmations. Safe for use from
// multiple goroutines; set Err to make every call fail.
type FakePairingResponder struct {
	mu    sync.Mutex
	calls []PairingCall

	Err error
}

func (f *FakePairingResponder) SetPairingConfirmation(d bt.Device, accept bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, PairingCall{Device: d, Accept: accept})
	return f.Err
}

// Calls returns a copy of the recorded confirmations.
func (f *FakePairingResponder) Calls() []PairingCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]PairingCall(nil), f.calls...)
}

// FakeProfileConnector records profile connect and disconnect requests.
type FakeProfileConnector struct {
	mu          sync.Mutex
	connects    []bt.Device
	disconnects []bt.Device

	Err error
}

func (f *FakeProfileConnector) ConnectAllEnabledProfiles(d bt.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connects = append(f.connects, d)
	return f.Err
}

func (f *FakeProfileConnector) DisconnectAllEnabledProfiles(d bt.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disconnects = append(f.disconnects, d)
	return f.Err
}

// Connects returns a copy of the recorded connect requests.
func (f *FakeProfileConnector) Connects() []bt.Device {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]bt.Device(nil), f.connects...)
}

// Disconnects returns a copy of the recorded disconnect requests.
func (f *FakeProfileConnector) Disconnects() []bt.Device {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]bt.Device(nil), f.disconnects...)
}

// FakeManager implements bt.Manager with canned adapters and recorded
// power transitions.
type FakeManager struct {
	mu      sync.Mutex
	started []int32
	stopped []int32

	AdaptersReply []bt.HciAdapter
	EnabledReply  bool
	Err           error
}

func (f *FakeManager) Start(hci int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = append(f.started, hci)
	return f.Err
}

func (f *FakeManager) Stop(hci int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = append(f.stopped, hci)
	return f.Err
}

func (f *FakeManager) AdapterEnabled(int32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.EnabledReply, f.Err
}

func (f *FakeManager) AvailableAdapters() ([]bt.HciAdapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]bt.HciAdapter(nil), f.AdaptersReply...), f.Err
}

// Started returns the HCI indexes passed to Start, in order.
func (f *FakeManager) Started() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int32(nil), f.started...)
}

// Stopped returns the HCI indexes passed to Stop, in order.
func (f *FakeManager) Stopped() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int32(nil), f.stopped...)
}

// FakeAdapter implements bt.Adapter on top of the recording fakes.
type FakeAdapter struct {
	FakePairingResponder
	FakeProfileConnector

	mu        sync.Mutex
	bonds     []bt.Device
	discovery []bool // true = start, false = cancel

	AddressReply    string
	CreateBondReply bool
	Err             error
}

func (f *FakeAdapter) Address() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.AddressReply, f.Err
}

func (f *FakeAdapter) StartDiscovery() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.discovery = append(f.discovery, true)
	return f.Err
}

func (f *FakeAdapter) CancelDiscovery() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.discovery = append(f.discovery, false)
	return f.Err
}

func (f *FakeAdapter) CreateBond(d bt.Device, _ bt.Transport) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.bonds = append(f.bonds, d)
	return f.CreateBondReply, f.Err
}

// Bonds returns a copy of the recorded CreateBond targets.
func (f *FakeAdapter) Bonds() []bt.Device {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]bt.Device(nil), f.bonds...)
}

// Discovery returns the recorded start (true) and cancel (false) calls.
func (f *FakeAdapter) Discovery() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]bool(nil), f.discovery...)
}

// FakeGatt implements bt.Gatt and records registrations.
type FakeGatt struct {
	mu           sync.Mutex
	registered   []string
	unregistered []int32

	Err error
}

func (f *FakeGatt) RegisterClient(appUUID string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.registered = append(f.registered, appUUID)
	return f.Err
}

func (f *FakeGatt) UnregisterClient(clientID int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.unregistered = append(f.unregistered, clientID)
	return f.Err
}

// Registered returns the application UUIDs passed to RegisterClient.
func (f *FakeGatt) Registered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.registered...)
}

// Unregistered returns the client IDs passed to UnregisterClient.
func (f *FakeGatt) Unregistered() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int32(nil), f.unregistered...)
}
