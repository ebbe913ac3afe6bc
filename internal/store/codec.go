package store

// codec.go serializes typed records to the opaque byte strings kept in the
// environment. JSON round-trips every record field exactly and keeps stored
// values inspectable with standard tools; nothing outside this file assumes
// the encoding.

import (
	"encoding/json"
	"fmt"
)

// encode serializes a record for storage.
func encode(rec any) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrCodec, err)
	}
	return raw, nil
}

// decode deserializes stored bytes into rec. A failure here means the stored
// value does not match the expected shape and is reported as ErrCodec.
func decode(raw []byte, rec any) error {
	if err := json.Unmarshal(raw, rec); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrCodec, err)
	}
	return nil
}
