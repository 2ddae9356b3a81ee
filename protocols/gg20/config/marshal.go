package config

import (
	"github.com/fxamacker/cbor/v2"
)

// localKeyMarshal has the fields of LocalKey, without its methods.
type localKeyMarshal LocalKey

// MarshalBinary implements encoding.BinaryMarshaler.
func (k *LocalKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*localKeyMarshal)(k))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The decoded key is validated.
func (k *LocalKey) UnmarshalBinary(data []byte) error {
	var m localKeyMarshal
	if err := cbor.Unmarshal(data, &m); err != nil {
		return err
	}
	key := LocalKey(m)
	if err := key.Validate(); err != nil {
		return err
	}
	*k = key
	return nil
}
