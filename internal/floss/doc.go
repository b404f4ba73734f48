// Package floss binds the client to the Floss Bluetooth management
// daemon over D-Bus. It wraps the daemon's Manager, Bluetooth and
// BluetoothGatt interfaces behind the internal/bt service APIs, exports
// this client's callback objects on the bus and registers them with the
// daemon. Event payloads cross the wire as string-keyed variant dicts;
// malformed payloads are logged and dropped, never fatal.
package floss
