package callbacks

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/flossctl/internal/bt"
	"github.com/srg/flossctl/internal/client"
)

// Adapter reconciles discovery, pairing and bonding events for the
// default adapter, and carries the pairing policy: consent requests for
// the locally initiated bonding attempt are auto-confirmed, everything
// else is left unanswered.
type Adapter struct {
	Identity
	ctx *client.Context
	log *logrus.Entry
}

// NewAdapter creates the adapter event handler exported at objpath.
func NewAdapter(objpath string, ctx *client.Context, logger *logrus.Logger) *Adapter {
	if logger == nil {
		logger = logrus.New()
	}

	return &Adapter{
		Identity: NewIdentity(objpath),
		ctx:      ctx,
		log:      logger.WithField("callback", "adapter"),
	}
}

// OnAddressChanged overwrites the recorded adapter address.
func (a *Adapter) OnAddressChanged(address string) {
	a.ctx.Eventf(client.TagAdapter, "Address changed to %s", address)
	a.ctx.SetAdapterAddress(address)
}

// OnDeviceFound records a discovery result. The first sighting of an
// address wins for the rest of the session.
func (a *Adapter) OnDeviceFound(d bt.Device) {
	a.ctx.RecordDevice(d)
	a.ctx.Eventf(client.TagAdapter, "Found device: %s", d)
}

// OnDiscoveringChanged tracks the discovery flag. A starting session
// invalidates all results of the previous one.
func (a *Adapter) OnDiscoveringChanged(discovering bool) {
	a.ctx.SetDiscovering(discovering)
	a.ctx.Eventf(client.TagAdapter, "Discovering: %t", discovering)
}

// OnSspRequest handles the daemon's pairing sub-protocol request.
//
// The consent decision runs on the session's action worker so it checks
// the bonding attempt as it is at execution time, not a snapshot from
// delivery time: another event may resolve or replace the attempt in
// between, and a stale snapshot would confirm the wrong pairing.
func (a *Adapter) OnSspRequest(d bt.Device, cod uint32, variant bt.SspVariant, passkey uint32) {
	a.log.WithFields(logrus.Fields{
		"address": d.Address,
		"variant": variant.String(),
	}).Debug("SSP request")

	switch variant {
	case bt.PasskeyNotification:
		a.ctx.Eventf(client.TagAdapter,
			"Device [%s: %s] would like to pair, enter passkey on remote device: %06d",
			d.Address, d.Name, passkey)

	case bt.Consent:
		a.ctx.Post(func(c *client.Context) {
			// Auto-confirm bonding attempts that were locally initiated.
			// Ignore all other bonding attempts.
			bd, ok := c.BondingAttempt()
			if !ok || bd.Address != d.Address {
				return
			}

			responder := c.PairingResponder()
			if responder == nil {
				a.log.WithField("address", d.Address).Warn("Consent request with no adapter bound")
				return
			}
			if err := responder.SetPairingConfirmation(d, true); err != nil {
				a.log.WithError(err).WithField("address", d.Address).Error("Failed to confirm pairing")
			}
		})

	case bt.PasskeyEntry:
		a.ctx.Eventf(client.TagAdapter, "Got PasskeyEntry but it is not supported...")

	case bt.PasskeyConfirmation:
		a.ctx.Eventf(client.TagAdapter, "Got PasskeyConfirmation but there's nothing to do...")

	default:
		a.log.WithField("variant", uint32(variant)).Warn("Unknown SSP variant")
	}
}

// OnBondStateChanged resolves the outstanding bonding attempt when a
// bond completes either way, and auto-connects profiles on every
// successful bond, whether or not this client initiated it.
func (a *Adapter) OnBondStateChanged(status uint32, address string, state uint32) {
	bondState := bt.BondState(state)
	a.ctx.Eventf(client.TagAdapter, "Bonding state changed: [%s] state: %s, Status = %s",
		address, bondState, bt.Status(status))

	// Clear the bonding attempt if bonding fails or succeeds
	switch bondState {
	case bt.NotBonded, bt.Bonded:
		a.ctx.ResolveBondingAttempt(address)
	case bt.Bonding:
		// in progress, nothing to resolve yet
	}

	// A completed bond also connects all enabled profiles
	if bondState == bt.Bonded {
		if err := a.ctx.ConnectAllEnabledProfiles(bt.ClassicDevice(address)); err != nil {
			a.log.WithError(err).WithField("address", address).Error("Failed to auto-connect profiles")
		}
	}
}
