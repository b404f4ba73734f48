// Package bt defines the Bluetooth domain model shared across the client:
// device descriptors, the enums spoken by the management daemon, and the
// collaborator interfaces that event handlers and console commands call
// back into.
//
// The package is a leaf: it carries no transport or state of its own, so
// every other package can depend on it without cycles.
package bt
