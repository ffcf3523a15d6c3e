package rflink

import (
	"fmt"
	"strconv"
)

// PublishMode selects how records are encoded for the bus.
// The numeric values are the persisted and published codes.
type PublishMode int

// Publish modes.
const (
	ModeStandard PublishMode = 1
	ModeJSON     PublishMode = 2
	ModeRaw      PublishMode = 3
)

// Valid reports whether m is one of the defined modes.
func (m PublishMode) Valid() bool {
	return m >= ModeStandard && m <= ModeRaw
}

// String returns the mode name.
func (m PublishMode) String() string {
	switch m {
	case ModeStandard:
		return "STANDARD"
	case ModeJSON:
		return "JSON"
	case ModeRaw:
		return "RAW"
	default:
		return fmt.Sprintf("PublishMode(%d)", int(m))
	}
}

// Code returns the numeric code as text ("1", "2" or "3").
func (m PublishMode) Code() string {
	return strconv.Itoa(int(m))
}

// DecodeMode converts a mode command payload to a PublishMode.
// "JSON" or "2" select JSON, "RAW" or "3" select RAW, anything else
// selects STANDARD. Matching is exact.
func DecodeMode(payload string) PublishMode {
	switch payload {
	case "JSON", ModeJSON.Code():
		return ModeJSON
	case "RAW", ModeRaw.Code():
		return ModeRaw
	default:
		return ModeStandard
	}
}

// ParseModeCode parses a persisted numeric code.
// Unlike DecodeMode it rejects anything that is not a valid code.
func ParseModeCode(code string) (PublishMode, error) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, code)
	}
	m := PublishMode(n)
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMode, n)
	}
	return m, nil
}
