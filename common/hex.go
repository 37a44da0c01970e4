package common

import (
	"encoding/hex"
	"encoding/json"
)

// HexBytes is a byte slice that marshals to and from a JSON hex string, the
// encoding used for all binary fields on the relay wire format.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}
