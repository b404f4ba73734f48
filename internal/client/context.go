package client

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/flossctl/internal/bt"
)

// ErrNoAdapter indicates a call that needs a powered adapter arrived
// before any adapter collaborator was bound.
var ErrNoAdapter = errors.New("no adapter bound")

const (
	actionQueueSize = 128
	eventFeedSize   = 256
)

// Context is the single shared state of a daemon session. Event handlers
// on arbitrary delivery goroutines reconcile into it; console commands
// read from it. All access goes through its methods, each of which holds
// the lock for one read-modify-write and no longer.
type Context struct {
	mu sync.Mutex

	adapters       map[int32]bool
	foundDevices   *orderedmap.OrderedMap[string, bt.Device]
	discovering    bool
	bondingAttempt *bt.Device
	adapterAddress string
	gattClientID   *int32

	// Bound once the default adapter proxy is up. Calls before binding
	// fail with ErrNoAdapter.
	pairing  bt.PairingResponder
	profiles bt.ProfileConnector

	actions chan Action
	live    *RingChannel[Event]
	history *RingChannel[Event]

	logger *logrus.Logger
}

// NewContext creates an empty session state. A nil logger falls back to
// a default logrus instance.
func NewContext(logger *logrus.Logger) *Context {
	if logger == nil {
		logger = logrus.New()
	}

	return &Context{
		adapters:     make(map[int32]bool),
		foundDevices: orderedmap.New[string, bt.Device](),
		actions:      make(chan Action, actionQueueSize),
		live:         NewRingChannel[Event](eventFeedSize),
		history:      NewRingChannel[Event](eventFeedSize),
		logger:       logger,
	}
}

// TrackAdapter records the adapter with the given HCI index as present.
// A duplicate presence report never resets an already known enabled flag.
func (c *Context) TrackAdapter(hci int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.adapters[hci]; !ok {
		c.adapters[hci] = false
	}
}

// ForgetAdapter drops the adapter from the tracked set entirely.
func (c *Context) ForgetAdapter(hci int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.adapters, hci)
}

// SetAdapterEnabled updates the enabled flag of a tracked adapter.
// Updates for an untracked index are absorbed as no-ops.
func (c *Context) SetAdapterEnabled(hci int32, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.adapters[hci]; ok {
		c.adapters[hci] = enabled
	}
}

// AdapterState reports the enabled flag for hci and whether the adapter
// is tracked at all.
func (c *Context) AdapterState(hci int32) (enabled, tracked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	enabled, tracked = c.adapters[hci]
	return
}

// Adapters returns a copy of the tracked adapter set, HCI index to
// enabled flag.
func (c *Context) Adapters() map[int32]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[int32]bool, len(c.adapters))
	for hci, enabled := range c.adapters {
		snapshot[hci] = enabled
	}
	return snapshot
}

// SetAdapterAddress overwrites the primary adapter address.
func (c *Context) SetAdapterAddress(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.adapterAddress = address
}

// AdapterAddress returns the last reported adapter address, empty until
// the first address notification.
func (c *Context) AdapterAddress() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.adapterAddress
}

// RecordDevice stores d under its address unless the address was already
// seen in the current discovery session: the first sighting wins.
func (c *Context) RecordDevice(d bt.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.foundDevices.Get(d.Address); !ok {
		c.foundDevices.Set(d.Address, d)
	}
}

// FoundDevice looks a discovered device up by address.
func (c *Context) FoundDevice(address string) (bt.Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.foundDevices.Get(address)
}

// FoundDevices lists the discovered devices in first-seen order.
func (c *Context) FoundDevices() []bt.Device {
	c.mu.Lock()
	defer c.mu.Unlock()

	devices := make([]bt.Device, 0, c.foundDevices.Len())
	for pair := c.foundDevices.Oldest(); pair != nil; pair = pair.Next() {
		devices = append(devices, pair.Value)
	}
	return devices
}

// SetDiscovering updates the discovery flag. Turning discovery on starts
// a fresh session and invalidates all previous results.
func (c *Context) SetDiscovering(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discovering = on
	if on {
		c.foundDevices = orderedmap.New[string, bt.Device]()
	}
}

// Discovering reports whether a discovery session is active.
func (c *Context) Discovering() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.discovering
}

// SetBondingAttempt marks d as the outstanding locally initiated bond.
// Only one attempt is tracked at a time; a second call overwrites.
func (c *Context) SetBondingAttempt(d bt.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bondingAttempt = &d
}

// BondingAttempt returns the outstanding locally initiated bond, if any.
func (c *Context) BondingAttempt() (bt.Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bondingAttempt == nil {
		return bt.Device{}, false
	}
	return *c.bondingAttempt, true
}

// ClearBondingAttempt drops the outstanding attempt unconditionally.
func (c *Context) ClearBondingAttempt() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bondingAttempt = nil
}

// ResolveBondingAttempt clears the outstanding attempt iff its address
// matches, reporting whether it did. Used when a bond completes, whether
// it succeeded or failed.
func (c *Context) ResolveBondingAttempt(address string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bondingAttempt == nil || c.bondingAttempt.Address != address {
		return false
	}
	c.bondingAttempt = nil
	return true
}

// SetGattClientID records the client handle assigned by the daemon.
func (c *Context) SetGattClientID(id int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gattClientID = &id
}

// GattClientID returns the negotiated client handle, if registration has
// completed.
func (c *Context) GattClientID() (int32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gattClientID == nil {
		return 0, false
	}
	return *c.gattClientID, true
}

// BindAdapter attaches the collaborators that pairing and auto-connect
// decisions call back into. Rebinding replaces both.
func (c *Context) BindAdapter(pairing bt.PairingResponder, profiles bt.ProfileConnector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pairing = pairing
	c.profiles = profiles
}

// PairingResponder returns the currently bound pairing collaborator,
// nil before any adapter came up.
func (c *Context) PairingResponder() bt.PairingResponder {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pairing
}

// ConnectAllEnabledProfiles forwards to the bound connection-management
// collaborator. The call happens outside the state lock.
func (c *Context) ConnectAllEnabledProfiles(d bt.Device) error {
	c.mu.Lock()
	profiles := c.profiles
	c.mu.Unlock()

	if profiles == nil {
		return ErrNoAdapter
	}
	return profiles.ConnectAllEnabledProfiles(d)
}
