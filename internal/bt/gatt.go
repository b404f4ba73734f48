package bt

// GattService is one entry of the remote GATT database as reported by a
// search-complete event.
type GattService struct {
	UUID            string               `json:"uuid"`
	InstanceID      int32                `json:"instance_id"`
	ServiceType     int32                `json:"service_type"`
	Characteristics []GattCharacteristic `json:"characteristics"`
}

// GattCharacteristic describes a characteristic inside a GattService.
type GattCharacteristic struct {
	UUID        string           `json:"uuid"`
	InstanceID  int32            `json:"instance_id"`
	Properties  int32            `json:"properties"`
	Permissions int32            `json:"permissions"`
	KeySize     int32            `json:"key_size"`
	WriteType   int32            `json:"write_type"`
	Descriptors []GattDescriptor `json:"descriptors"`
}

// GattDescriptor describes a descriptor attached to a characteristic.
type GattDescriptor struct {
	UUID        string `json:"uuid"`
	InstanceID  int32  `json:"instance_id"`
	Permissions int32  `json:"permissions"`
}
