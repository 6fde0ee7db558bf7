package session

import (
	"encoding/json"
	"fmt"
)

// Encode serialises s for a persistent cache, sealing it when sealer is set.
func Encode(appID string, s *Session, sealer *Sealer) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if sealer == nil {
		return payload, nil
	}
	return sealer.Seal(appID, payload)
}

// Decode reverses Encode.
func Decode(appID string, payload []byte, sealer *Sealer) (*Session, error) {
	if sealer != nil {
		opened, err := sealer.Open(appID, payload)
		if err != nil {
			return nil, err
		}
		payload = opened
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}
