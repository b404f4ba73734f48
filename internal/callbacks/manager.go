package callbacks

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/flossctl/internal/client"
)

// Manager tracks adapter hardware presence and power transitions
// reported by the management daemon.
type Manager struct {
	Identity
	ctx *client.Context
	log *logrus.Entry
}

// NewManager creates the manager event handler exported at objpath.
func NewManager(objpath string, ctx *client.Context, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}

	return &Manager{
		Identity: NewIdentity(objpath),
		ctx:      ctx,
		log:      logger.WithField("callback", "manager"),
	}
}

// OnHciDeviceChanged records adapters appearing and disappearing. A
// repeated presence report never resets a known enabled flag.
func (m *Manager) OnHciDeviceChanged(hci int32, present bool) {
	m.log.WithFields(logrus.Fields{"hci": hci, "present": present}).Debug("HCI device changed")
	m.ctx.Eventf(client.TagManager, "hci%d present = %t", hci, present)

	if present {
		m.ctx.TrackAdapter(hci)
	} else {
		m.ctx.ForgetAdapter(hci)
	}
}

// OnHciEnabledChanged updates the power flag of a tracked adapter.
// Reports for an untracked index are absorbed as no-ops.
func (m *Manager) OnHciEnabledChanged(hci int32, enabled bool) {
	m.log.WithFields(logrus.Fields{"hci": hci, "enabled": enabled}).Debug("HCI enabled changed")

	m.ctx.SetAdapterEnabled(hci, enabled)
}
