package callbacks

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/srg/flossctl/internal/bt"
	"github.com/srg/flossctl/internal/client"
	"github.com/srg/flossctl/internal/testutils"
)

// testLogger returns a logger that stays quiet during tests.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// CallbacksTestSuite wires all four event handlers to a fresh session
// state with recording collaborators.
type CallbacksTestSuite struct {
	suite.Suite

	ctx      *client.Context
	pairing  *testutils.FakePairingResponder
	profiles *testutils.FakeProfileConnector
	cancel   context.CancelFunc

	manager    *Manager
	adapter    *Adapter
	connection *Connection
	gatt       *Gatt
}

func (suite *CallbacksTestSuite) SetupTest() {
	logger := testLogger()

	suite.ctx = client.NewContext(logger)
	suite.pairing = &testutils.FakePairingResponder{}
	suite.profiles = &testutils.FakeProfileConnector{}
	suite.ctx.BindAdapter(suite.pairing, suite.profiles)

	runCtx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	suite.ctx.Start(runCtx)

	suite.manager = NewManager("/client/manager_callback", suite.ctx, logger)
	suite.adapter = NewAdapter("/client/bluetooth_callback", suite.ctx, logger)
	suite.connection = NewConnection("/client/bluetooth_conn_callback", suite.ctx, logger)
	suite.gatt = NewGatt("/client/bluetooth_gatt_callback", suite.ctx, logger)
}

func (suite *CallbacksTestSuite) TearDownTest() {
	suite.cancel()
}

// SetupSubTest gives every subtest a fresh session and fresh collaborators.
func (suite *CallbacksTestSuite) SetupSubTest() {
	if suite.cancel != nil {
		suite.cancel()
	}
	suite.SetupTest()
}

// drainActions waits until every previously posted action has run.
// Actions execute in post order, so a sentinel completing means the
// queue ahead of it is done.
func (suite *CallbacksTestSuite) drainActions() {
	done := make(chan struct{})
	suite.ctx.Post(func(*client.Context) { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		suite.FailNow("action worker did not drain in time")
	}
}

// pendingEvents collects everything currently buffered on the live feed.
func (suite *CallbacksTestSuite) pendingEvents() []client.Event {
	var events []client.Event
	for {
		select {
		case e := <-suite.ctx.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

// messages flattens the pending events to their message texts.
func (suite *CallbacksTestSuite) messages() []string {
	events := suite.pendingEvents()
	msgs := make([]string, len(events))
	for i, e := range events {
		msgs[i] = e.Message
	}
	return msgs
}

// TestManagerPresence covers adapter hardware coming and going
func (suite *CallbacksTestSuite) TestManagerPresence() {
	// GOAL: Verify presence reports track adapters without clobbering known state
	//
	// TEST SCENARIO: Deliver presence/absence reports → verify adapter set → check enabled flags survive duplicates
	suite.Run("PresentInsertsDisabled", func() {
		suite.manager.OnHciDeviceChanged(0, true)

		enabled, tracked := suite.ctx.AdapterState(0)
		suite.True(tracked)
		suite.False(enabled)
		suite.Contains(suite.messages(), "hci0 present = true")
	})

	suite.Run("DuplicatePresentKeepsEnabledFlag", func() {
		suite.manager.OnHciDeviceChanged(0, true)
		suite.manager.OnHciEnabledChanged(0, true)

		suite.manager.OnHciDeviceChanged(0, true)

		enabled, tracked := suite.ctx.AdapterState(0)
		suite.True(tracked)
		suite.True(enabled, "a duplicate present report must not reset the enabled flag")
	})

	suite.Run("AbsentRemovesEntirely", func() {
		suite.manager.OnHciDeviceChanged(1, true)
		suite.manager.OnHciDeviceChanged(1, false)

		_, tracked := suite.ctx.AdapterState(1)
		suite.False(tracked)
	})
}

// TestManagerEnabled covers power transitions
func (suite *CallbacksTestSuite) TestManagerEnabled() {
	// GOAL: Verify enabled transitions only apply to tracked adapters
	//
	// TEST SCENARIO: Enable tracked and untracked indexes → verify flag updates → check untracked stays unknown
	suite.Run("TrackedAdapterFlips", func() {
		suite.manager.OnHciDeviceChanged(0, true)

		suite.manager.OnHciEnabledChanged(0, true)
		enabled, _ := suite.ctx.AdapterState(0)
		suite.True(enabled)

		suite.manager.OnHciEnabledChanged(0, false)
		enabled, _ = suite.ctx.AdapterState(0)
		suite.False(enabled)
	})

	suite.Run("UntrackedAdapterIsNoOp", func() {
		suite.NotPanics(func() {
			suite.manager.OnHciEnabledChanged(9, true)
		})

		_, tracked := suite.ctx.AdapterState(9)
		suite.False(tracked)
	})
}

// TestAddressChanged covers adapter address notifications
func (suite *CallbacksTestSuite) TestAddressChanged() {
	// GOAL: Verify address notifications overwrite unconditionally
	//
	// TEST SCENARIO: Deliver two address changes → verify latest wins → check event text
	suite.adapter.OnAddressChanged("00:11:22:33:44:55")
	suite.Equal("00:11:22:33:44:55", suite.ctx.AdapterAddress())

	suite.adapter.OnAddressChanged("66:77:88:99:AA:BB")
	suite.Equal("66:77:88:99:AA:BB", suite.ctx.AdapterAddress())

	suite.Contains(suite.messages(), "Address changed to 66:77:88:99:AA:BB")
}

// TestDeviceFound covers discovery results
func (suite *CallbacksTestSuite) TestDeviceFound() {
	// GOAL: Verify discovery results are recorded first-seen-wins
	//
	// TEST SCENARIO: Deliver two sightings of one address → verify first name kept → check both produce events
	suite.adapter.OnDeviceFound(bt.NewDevice("AA:BB", "First"))
	suite.adapter.OnDeviceFound(bt.NewDevice("AA:BB", "Second"))

	d, ok := suite.ctx.FoundDevice("AA:BB")
	suite.True(ok)
	suite.Equal("First", d.Name, "later sightings must not overwrite the stored descriptor")

	msgs := suite.messages()
	suite.Contains(msgs, "Found device: [AA:BB: First]")
	suite.Contains(msgs, "Found device: [AA:BB: Second]")
}

// TestDiscoveringChanged covers session transitions
func (suite *CallbacksTestSuite) TestDiscoveringChanged() {
	// GOAL: Verify a starting session clears prior results
	//
	// TEST SCENARIO: Record device → start discovery → verify empty set → stop → verify results survive
	suite.adapter.OnDeviceFound(bt.NewDevice("AA:BB", "Stale"))

	suite.adapter.OnDiscoveringChanged(true)
	suite.True(suite.ctx.Discovering())
	suite.Empty(suite.ctx.FoundDevices(), "a fresh session invalidates prior results")

	suite.adapter.OnDeviceFound(bt.NewDevice("CC:DD", "Fresh"))
	suite.adapter.OnDiscoveringChanged(false)
	suite.False(suite.ctx.Discovering())
	suite.Len(suite.ctx.FoundDevices(), 1)
}

// TestSspConsent covers the consent auto-confirm policy
func (suite *CallbacksTestSuite) TestSspConsent() {
	// GOAL: Verify consent requests are confirmed iff they match the locally initiated bond
	//
	// TEST SCENARIO: Set bonding attempt → deliver consent requests → verify exactly the matching one is confirmed
	suite.Run("MatchingAttemptConfirmedOnce", func() {
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))

		suite.adapter.OnSspRequest(bt.NewDevice("AA:BB", "Target"), 0, bt.Consent, 0)
		suite.drainActions()

		calls := suite.pairing.Calls()
		suite.Len(calls, 1)
		suite.Equal("AA:BB", calls[0].Device.Address)
		suite.True(calls[0].Accept)
	})

	suite.Run("ForeignAddressIgnored", func() {
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))

		suite.adapter.OnSspRequest(bt.NewDevice("CC:DD", "Stranger"), 0, bt.Consent, 0)
		suite.drainActions()

		suite.Empty(suite.pairing.Calls(), "unsolicited consent must be left unanswered")
	})

	suite.Run("NoAttemptIgnored", func() {
		suite.adapter.OnSspRequest(bt.NewDevice("AA:BB", "Target"), 0, bt.Consent, 0)
		suite.drainActions()

		suite.Empty(suite.pairing.Calls())
	})

	suite.Run("DecisionReadsLiveState", func() {
		// The attempt is cleared between delivery and execution; the
		// deferred decision must see the cleared state and stay silent.
		// A gate action holds the worker so the clear happens first.
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))

		gate := make(chan struct{})
		suite.ctx.Post(func(*client.Context) { <-gate })

		suite.adapter.OnSspRequest(bt.NewDevice("AA:BB", "Target"), 0, bt.Consent, 0)
		suite.ctx.ClearBondingAttempt()
		close(gate)
		suite.drainActions()

		suite.Empty(suite.pairing.Calls(), "a stale snapshot must not confirm pairing")
	})

	suite.Run("DecisionSeesLaterAttempt", func() {
		// The attempt lands after delivery but before execution; the
		// deferred decision must pick it up and confirm.
		gate := make(chan struct{})
		suite.ctx.Post(func(*client.Context) { <-gate })

		suite.adapter.OnSspRequest(bt.NewDevice("AA:BB", "Target"), 0, bt.Consent, 0)
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))
		close(gate)
		suite.drainActions()

		suite.Len(suite.pairing.Calls(), 1)
	})
}

// TestSspOtherVariants covers the non-consent pairing variants
func (suite *CallbacksTestSuite) TestSspOtherVariants() {
	// GOAL: Verify informational and unsupported variants produce notices without protocol action
	//
	// TEST SCENARIO: Deliver each variant → verify operator notice → check no confirmation sent
	suite.Run("PasskeyNotification", func() {
		suite.adapter.OnSspRequest(bt.NewDevice("AA:BB", "Keyboard"), 0, bt.PasskeyNotification, 1234)
		suite.drainActions()

		suite.Contains(suite.messages(),
			"Device [AA:BB: Keyboard] would like to pair, enter passkey on remote device: 001234")
		suite.Empty(suite.pairing.Calls())
	})

	suite.Run("PasskeyEntry", func() {
		suite.adapter.OnSspRequest(bt.NewDevice("AA:BB", "Keyboard"), 0, bt.PasskeyEntry, 0)
		suite.drainActions()

		suite.Contains(suite.messages(), "Got PasskeyEntry but it is not supported...")
		suite.Empty(suite.pairing.Calls())
	})

	suite.Run("PasskeyConfirmation", func() {
		suite.adapter.OnSspRequest(bt.NewDevice("AA:BB", "Keyboard"), 0, bt.PasskeyConfirmation, 123456)
		suite.drainActions()

		suite.Contains(suite.messages(), "Got PasskeyConfirmation but there's nothing to do...")
		suite.Empty(suite.pairing.Calls())
	})
}

// TestBondStateChanged covers bond resolution and auto-connect
func (suite *CallbacksTestSuite) TestBondStateChanged() {
	// GOAL: Verify bond completion clears the matching attempt and Bonded always auto-connects
	//
	// TEST SCENARIO: Deliver bond transitions → verify attempt lifecycle → check auto-connect targets
	suite.Run("BondedMatchingAttempt", func() {
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))

		suite.adapter.OnBondStateChanged(uint32(bt.StatusSuccess), "AA:BB", uint32(bt.Bonded))

		_, ok := suite.ctx.BondingAttempt()
		suite.False(ok, "a completed bond resolves the attempt")

		connects := suite.profiles.Connects()
		suite.Len(connects, 1)
		suite.Equal("AA:BB", connects[0].Address)
		suite.Equal(bt.ClassicDeviceName, connects[0].Name)
	})

	suite.Run("NotBondedMatchingAttempt", func() {
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))

		suite.adapter.OnBondStateChanged(uint32(bt.StatusAuthFailure), "AA:BB", uint32(bt.NotBonded))

		_, ok := suite.ctx.BondingAttempt()
		suite.False(ok, "a failed bond resolves the attempt")
		suite.Empty(suite.profiles.Connects(), "failure must not auto-connect")
	})

	suite.Run("BondingInProgressKeepsAttempt", func() {
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))

		suite.adapter.OnBondStateChanged(uint32(bt.StatusSuccess), "AA:BB", uint32(bt.Bonding))

		d, ok := suite.ctx.BondingAttempt()
		suite.True(ok)
		suite.Equal("AA:BB", d.Address)
		suite.Empty(suite.profiles.Connects())
	})

	suite.Run("ForeignBondedKeepsAttemptButConnects", func() {
		suite.ctx.SetBondingAttempt(bt.NewDevice("AA:BB", "Target"))

		suite.adapter.OnBondStateChanged(uint32(bt.StatusSuccess), "EE:FF", uint32(bt.Bonded))

		d, ok := suite.ctx.BondingAttempt()
		suite.True(ok, "a foreign bond must not resolve the local attempt")
		suite.Equal("AA:BB", d.Address)

		connects := suite.profiles.Connects()
		suite.Len(connects, 1)
		suite.Equal("EE:FF", connects[0].Address, "every successful bond auto-connects")
	})

	suite.Run("BondedWithoutAttemptStillConnects", func() {
		suite.adapter.OnBondStateChanged(uint32(bt.StatusSuccess), "EE:FF", uint32(bt.Bonded))

		connects := suite.profiles.Connects()
		suite.Len(connects, 1)
		suite.Equal("EE:FF", connects[0].Address)
	})

	suite.Run("EventCarriesStateAndStatus", func() {
		suite.adapter.OnBondStateChanged(uint32(bt.StatusSuccess), "AA:BB", uint32(bt.Bonded))

		suite.Contains(suite.messages(), "Bonding state changed: [AA:BB] state: Bonded, Status = Success")
	})
}

// TestConnectionRelay covers the stateless connection handler
func (suite *CallbacksTestSuite) TestConnectionRelay() {
	// GOAL: Verify connect/disconnect transitions surface as notifications without state changes
	//
	// TEST SCENARIO: Deliver transitions → verify event texts → check session state untouched
	suite.connection.OnDeviceConnected(bt.NewDevice("AA:BB", "Headset"))
	suite.connection.OnDeviceDisconnected(bt.NewDevice("AA:BB", "Headset"))

	msgs := suite.messages()
	suite.Contains(msgs, "Connected: [AA:BB]: Headset")
	suite.Contains(msgs, "Disconnected: [AA:BB]: Headset")

	suite.Empty(suite.ctx.FoundDevices())
	_, ok := suite.ctx.BondingAttempt()
	suite.False(ok)
}

// TestGattClientRegistered covers the one stateful GATT event
func (suite *CallbacksTestSuite) TestGattClientRegistered() {
	// GOAL: Verify the client handle is recorded regardless of status
	//
	// TEST SCENARIO: Register with success and failure statuses → verify handle stored both times
	suite.Run("SuccessStoresHandle", func() {
		suite.gatt.OnClientRegistered(bt.GattSuccess, 7)

		id, ok := suite.ctx.GattClientID()
		suite.True(ok)
		suite.Equal(int32(7), id)
	})

	suite.Run("FailureStillStoresHandle", func() {
		suite.gatt.OnClientRegistered(bt.GattError, 13)

		id, ok := suite.ctx.GattClientID()
		suite.True(ok)
		suite.Equal(int32(13), id, "the handle is stored even on non-success status")
	})
}

// TestGattTelemetry covers the stateless GATT events
func (suite *CallbacksTestSuite) TestGattTelemetry() {
	// GOAL: Verify GATT events surface as notifications and leave state alone
	//
	// TEST SCENARIO: Deliver each event kind → verify an event is published → check texts
	suite.gatt.OnClientConnectionState(bt.GattSuccess, 7, true, "AA:BB")
	suite.gatt.OnPhyUpdate("AA:BB", bt.Phy2M, bt.Phy1M, bt.GattSuccess)
	suite.gatt.OnPhyRead("AA:BB", bt.Phy1M, bt.Phy1M, bt.GattSuccess)
	suite.gatt.OnSearchComplete("AA:BB", []bt.GattService{{UUID: "180f", InstanceID: 1}}, bt.GattSuccess)
	suite.gatt.OnCharacteristicRead("AA:BB", bt.GattSuccess, 42, []byte{0x01, 0x02})
	suite.gatt.OnCharacteristicWrite("AA:BB", bt.GattSuccess, 42)
	suite.gatt.OnExecuteWrite("AA:BB", bt.GattSuccess)
	suite.gatt.OnDescriptorRead("AA:BB", bt.GattSuccess, 43, []byte{0x03})
	suite.gatt.OnDescriptorWrite("AA:BB", bt.GattSuccess, 43)
	suite.gatt.OnNotify("AA:BB", 42, []byte{0xff})
	suite.gatt.OnReadRemoteRssi("AA:BB", -60, bt.GattSuccess)
	suite.gatt.OnConfigureMtu("AA:BB", 247, bt.GattSuccess)
	suite.gatt.OnConnectionUpdated("AA:BB", 24, 0, 400, bt.GattSuccess)
	suite.gatt.OnServiceChanged("AA:BB")

	msgs := suite.messages()
	suite.Contains(msgs, "GATT Client connection state = Success, client_id = 7, connected = true, addr = AA:BB")
	suite.Contains(msgs, "Phy updated: addr = AA:BB, tx_phy = 2M, rx_phy = 1M, status = Success")
	suite.Contains(msgs, "GATT DB Search complete: addr = AA:BB, services = 1, status = Success")
	suite.Contains(msgs, "GATT Characteristic read: addr = AA:BB, status = Success, handle = 42, value = 0102")
	suite.Contains(msgs, "GATT Notification: addr = AA:BB, handle = 42, value = ff")
	suite.Contains(msgs, "Remote RSSI read: addr = AA:BB, rssi = -60, status = Success")
	suite.Contains(msgs, "MTU configured: addr = AA:BB, mtu = 247, status = Success")
	suite.Contains(msgs, "Connection updated: addr = AA:BB, interval = 24, latency = 0, timeout = 400, status = Success")
	suite.Contains(msgs, "Service changed for AA:BB")

	// None of these touch session state
	_, ok := suite.ctx.GattClientID()
	suite.False(ok)
}

// TestRegistrationIdentity covers the shared registration capability
func (suite *CallbacksTestSuite) TestRegistrationIdentity() {
	// GOAL: Verify every handler exposes its object path and inert deregistration
	//
	// TEST SCENARIO: Query each handler → verify path → check disconnect token semantics
	handlers := []struct {
		name string
		reg  Registration
		path string
	}{
		{"manager", suite.manager, "/client/manager_callback"},
		{"adapter", suite.adapter, "/client/bluetooth_callback"},
		{"connection", suite.connection, "/client/bluetooth_conn_callback"},
		{"gatt", suite.gatt, "/client/bluetooth_gatt_callback"},
	}

	for _, h := range handlers {
		suite.Run(h.name, func() {
			suite.Equal(h.path, h.reg.ObjectPath())
			suite.Equal(uint32(0), h.reg.RegisterDisconnect(func(uint32) {}))
			suite.False(h.reg.Unregister(0))
		})
	}
}

// Run the test suite
func TestCallbacksTestSuite(t *testing.T) {
	suite.Run(t, new(CallbacksTestSuite))
}
