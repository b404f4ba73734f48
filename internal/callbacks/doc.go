// Package callbacks implements the event handlers the management daemon
// invokes on this client: manager (adapter presence and power), adapter
// (discovery, pairing and bonding), connection (per-device link
// transitions) and gatt (the GATT event stream).
//
// Handlers are invoked on delivery goroutines the client does not
// control. Each one reconciles into the shared client.Context under its
// lock, publishes operator-visible notifications to the event feed, and
// never fails fatally on an individual event: unexpected input is
// absorbed, logged, or surfaced to the operator, and the handler stays
// live for the next event.
//
// The adapter handler carries the pairing policy: a consent request is
// auto-confirmed iff it comes from the device the operator most
// recently started bonding with. The decision is deferred to the
// session's action worker so it consults the bonding attempt as it is
// at execution time, not a snapshot from delivery time.
package callbacks
