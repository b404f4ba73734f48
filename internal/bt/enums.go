package bt

import "fmt"

// BondState is the bonding lifecycle reported by bond-state-changed events.
type BondState uint32

const (
	NotBonded BondState = iota
	Bonding
	Bonded
)

func (s BondState) String() string {
	switch s {
	case NotBonded:
		return "NotBonded"
	case Bonding:
		return "Bonding"
	case Bonded:
		return "Bonded"
	}
	return fmt.Sprintf("BondState(%d)", uint32(s))
}

// SspVariant selects the Secure Simple Pairing sub-protocol the remote
// stack wants the client to complete.
type SspVariant uint32

const (
	PasskeyConfirmation SspVariant = iota
	PasskeyEntry
	Consent
	PasskeyNotification
)

func (v SspVariant) String() string {
	switch v {
	case PasskeyConfirmation:
		return "PasskeyConfirmation"
	case PasskeyEntry:
		return "PasskeyEntry"
	case Consent:
		return "Consent"
	case PasskeyNotification:
		return "PasskeyNotification"
	}
	return fmt.Sprintf("SspVariant(%d)", uint32(v))
}

// Status is the daemon-wide operation status attached to most events.
type Status uint32

const (
	StatusSuccess Status = iota
	StatusFail
	StatusNotReady
	StatusNoMemory
	StatusBusy
	StatusDone
	StatusUnsupported
	StatusInvalidParam
	StatusUnhandled
	StatusAuthFailure
	StatusRemoteDeviceDown
	StatusAuthRejected
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFail:
		return "Fail"
	case StatusNotReady:
		return "NotReady"
	case StatusNoMemory:
		return "NoMemory"
	case StatusBusy:
		return "Busy"
	case StatusDone:
		return "Done"
	case StatusUnsupported:
		return "Unsupported"
	case StatusInvalidParam:
		return "InvalidParam"
	case StatusUnhandled:
		return "Unhandled"
	case StatusAuthFailure:
		return "AuthFailure"
	case StatusRemoteDeviceDown:
		return "RemoteDeviceDown"
	case StatusAuthRejected:
		return "AuthRejected"
	}
	return fmt.Sprintf("Status(%d)", uint32(s))
}

// Transport selects the link type used for bonding and connection.
type Transport int32

const (
	TransportAuto Transport = iota
	TransportBREDR
	TransportLE
)

func (t Transport) String() string {
	switch t {
	case TransportAuto:
		return "Auto"
	case TransportBREDR:
		return "BR/EDR"
	case TransportLE:
		return "LE"
	}
	return fmt.Sprintf("Transport(%d)", int32(t))
}

// LePhy is the LE physical-layer mode reported by PHY events.
type LePhy uint32

const (
	PhyInvalid LePhy = iota
	Phy1M
	Phy2M
	PhyCoded
)

func (p LePhy) String() string {
	switch p {
	case PhyInvalid:
		return "Invalid"
	case Phy1M:
		return "1M"
	case Phy2M:
		return "2M"
	case PhyCoded:
		return "Coded"
	}
	return fmt.Sprintf("LePhy(%d)", uint32(p))
}

// GattStatus is the ATT-level status carried by GATT events. Only the
// codes the client renders by name are enumerated; everything else
// falls through to the numeric form.
type GattStatus int32

const (
	GattSuccess             GattStatus = 0
	GattInvalidHandle       GattStatus = 1
	GattReadNotPermitted    GattStatus = 2
	GattWriteNotPermitted   GattStatus = 3
	GattInsufAuthentication GattStatus = 5
	GattReqNotSupported     GattStatus = 6
	GattInvalidOffset       GattStatus = 7
	GattInsufAuthorization  GattStatus = 8
	GattNotFound            GattStatus = 10
	GattInsufEncryption     GattStatus = 15
	GattError               GattStatus = 133
)

func (s GattStatus) String() string {
	switch s {
	case GattSuccess:
		return "Success"
	case GattInvalidHandle:
		return "InvalidHandle"
	case GattReadNotPermitted:
		return "ReadNotPermitted"
	case GattWriteNotPermitted:
		return "WriteNotPermitted"
	case GattInsufAuthentication:
		return "InsufficientAuthentication"
	case GattReqNotSupported:
		return "RequestNotSupported"
	case GattInvalidOffset:
		return "InvalidOffset"
	case GattInsufAuthorization:
		return "InsufficientAuthorization"
	case GattNotFound:
		return "NotFound"
	case GattInsufEncryption:
		return "InsufficientEncryption"
	case GattError:
		return "Error"
	}
	return fmt.Sprintf("GattStatus(%d)", int32(s))
}
