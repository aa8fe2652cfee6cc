package scan

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sdis66/epitrack/internal/distribution"
	"github.com/sdis66/epitrack/internal/roster"
)

// payloadPrefix is the literal opening of a serialized sync payload. The
// Sync field is declared first so json.Marshal emits it first, which is
// what makes prefix detection cheap on the receiving side.
const payloadPrefix = `{"sync"`

// Payload is a snapshot of one device's session, transferred to a second
// device by display-then-scan. Capture replaces the receiver's roster and
// log wholesale.
type Payload struct {
	Sync      bool                  `json:"sync"`
	Agents    []roster.Person       `json:"agents"`
	Items     []distribution.Record `json:"items,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// EncodePayload serializes a session snapshot for display on this device.
func EncodePayload(people []roster.Person, records []distribution.Record, now time.Time) (string, error) {
	p := Payload{
		Sync:      true,
		Agents:    people,
		Items:     records,
		Timestamp: now,
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodePayload attempts to read the trimmed input as a sync payload.
// Anything that fails — wrong prefix, bad JSON, false sync flag, missing
// roster array — reports ok=false so classification falls through to the
// badge and equipment branches. A malformed payload is a non-match, not
// an error.
func decodePayload(trimmed string) (Payload, bool) {
	if !strings.HasPrefix(trimmed, payloadPrefix) {
		return Payload{}, false
	}

	var p Payload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return Payload{}, false
	}
	if !p.Sync || p.Agents == nil {
		return Payload{}, false
	}

	return p, true
}
