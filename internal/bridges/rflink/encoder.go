package rflink

import "fmt"

// Node property names. Topics are built as <node topic>/<property>.
const (
	PropertyRaw         = "rawmsg"
	PropertyJSON        = "JSONmsg"
	PropertyError       = "error"
	PropertyUnsupported = "unsupported"
	PropertyPublishMode = "publish-mode"
	PropertyButton      = "button"

	// Settable properties (commands arrive on <property>/set).
	PropertyToSend = "to-send"
	PropertyMode   = "mode"
)

// JSON mode member names.
const (
	jsonKeySequence = "msgIdx"
	jsonKeyName     = "Name"
)

// ButtonPressedPayload is published on PropertyButton for each press.
const ButtonPressedPayload = "pressed"

// Publication is one message for the bus, addressed relative to the node.
type Publication struct {
	Property string
	Payload  []byte
	Retained bool
}

// EffectiveMode returns the mode used for rec: RAW for DEBUG records,
// stored otherwise.
func EffectiveMode(rec Record, stored PublishMode) PublishMode {
	if rec.Tag.Kind == TagDebug {
		return ModeRaw
	}
	return stored
}

// Encode converts a record into publications for the given mode.
// The DEBUG override is applied here, so callers pass the stored mode.
//
// Example (STANDARD):
//
//	rec, _ := Parse("20;7;TAG;A=v;B=w;")
//	pubs := Encode(rec, ModeStandard)
//	// pubs[0].Property == "TAG/v", string(pubs[0].Payload) == `{"B":"w"}`
func Encode(rec Record, stored PublishMode) []Publication {
	switch EffectiveMode(rec, stored) {
	case ModeRaw:
		return []Publication{{Property: PropertyRaw, Payload: []byte(rec.Raw)}}
	case ModeJSON:
		return []Publication{encodeJSON(rec)}
	default:
		return []Publication{encodeStandard(rec)}
	}
}

// encodeJSON builds the single JSONmsg publication.
func encodeJSON(rec Record) Publication {
	obj := newJSONObject(len(rec.Fields) + 2)
	obj.Set(jsonKeySequence, rec.Sequence)
	obj.Set(jsonKeyName, rec.Tag.Name)
	obj.SetFields(rec.Fields)
	return Publication{Property: PropertyJSON, Payload: obj.Bytes()}
}

// encodeStandard builds the topic-per-device publication.
func encodeStandard(rec Record) Publication {
	if !rec.Tag.IsGeneric() || len(rec.Fields) == 0 {
		obj := newJSONObject(len(rec.Fields))
		obj.SetFields(rec.Fields)
		return Publication{Property: rec.Tag.Name, Payload: obj.Bytes()}
	}

	first := rec.Fields[0]
	obj := newJSONObject(len(rec.Fields) - 1)
	obj.SetFields(rec.Fields[1:])
	return Publication{
		Property: rec.Tag.Name + "/" + first.Value,
		Payload:  obj.Bytes(),
	}
}

// UnsupportedPublication carries a line that is not a protocol message.
func UnsupportedPublication(line string) Publication {
	return Publication{Property: PropertyUnsupported, Payload: []byte(line)}
}

// ErrorPublication reports that the publication for name was rejected.
func ErrorPublication(name string) Publication {
	return Publication{
		Property: PropertyError,
		Payload:  fmt.Appendf(nil, "failed to publish %s, message too long", name),
	}
}

// ModePublication announces the active publish mode. It is retained so late
// subscribers see the current mode.
func ModePublication(mode PublishMode) Publication {
	return Publication{
		Property: PropertyPublishMode,
		Payload:  []byte(mode.Code()),
		Retained: true,
	}
}

// ButtonPublication reports a debounced button press.
func ButtonPublication() Publication {
	return Publication{Property: PropertyButton, Payload: []byte(ButtonPressedPayload)}
}
