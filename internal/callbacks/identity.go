package callbacks

// Registration is the capability every exported event handler shares:
// a stable object path the daemon routes events to, plus deregistration
// support keyed by a numeric token.
type Registration interface {
	// ObjectPath returns the handler's registration identity.
	ObjectPath() string

	// RegisterDisconnect installs a disconnect observer and returns its
	// token.
	RegisterDisconnect(f func(uint32)) uint32

	// Unregister removes the observer with the given token, reporting
	// whether one was removed.
	Unregister(id uint32) bool
}

// Identity implements Registration for a handler exported at a fixed
// object path. Handlers live for the whole session, so disconnect
// observers are never tracked: registration hands out the zero token
// and unregistration reports that nothing was removed.
type Identity struct {
	objpath string
}

// NewIdentity creates the identity for a handler exported at objpath.
func NewIdentity(objpath string) Identity {
	return Identity{objpath: objpath}
}

// ObjectPath returns the handler's registration identity.
func (i Identity) ObjectPath() string {
	return i.objpath
}

// RegisterDisconnect accepts the observer without tracking it.
func (i Identity) RegisterDisconnect(func(uint32)) uint32 {
	return 0
}

// Unregister reports that no observer was removed.
func (i Identity) Unregister(uint32) bool {
	return false
}
