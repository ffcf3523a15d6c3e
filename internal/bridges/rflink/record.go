package rflink

// TagKind classifies the device tag of a record.
type TagKind int

// Tag kinds, in the order the parser tests their prefixes.
const (
	TagGeneric TagKind = iota
	TagVersion
	TagPong
	TagRFDebug
	TagRFUDebug
	TagQRFDebug
	TagDebug
)

// DeviceTag identifies what produced a record.
// Name is the tag text used in topics and payloads: "VERSION", "PONG",
// "RFDEBUG", "RFUDEBUG", "QRFDEBUG", "DEBUG", or the device name for
// generic records (e.g. "Oregon TempHygro").
type DeviceTag struct {
	Kind TagKind
	Name string
}

// String returns the tag text.
func (t DeviceTag) String() string {
	return t.Name
}

// IsGeneric reports whether the tag names a device rather than a control
// or debug message.
func (t DeviceTag) IsGeneric() bool {
	return t.Kind == TagGeneric
}

// Field is one key=value pair of a record, kept in source order.
type Field struct {
	Key   string
	Value string
}

// Record is one parsed RFLink line.
type Record struct {
	// Sequence is the receiver's message counter (hex text, e.g. "2D").
	Sequence string

	// Tag classifies the record.
	Tag DeviceTag

	// Fields holds the key=value pairs in source order. Duplicate keys are
	// kept; encoders resolve them with last-wins.
	Fields []Field

	// Raw is the line as received, without its terminator.
	Raw string
}

// Value returns the last value stored under key.
func (r Record) Value(key string) (string, bool) {
	for i := len(r.Fields) - 1; i >= 0; i-- {
		if r.Fields[i].Key == key {
			return r.Fields[i].Value, true
		}
	}
	return "", false
}

// FieldMap returns the fields as a map with last-wins semantics.
func (r Record) FieldMap() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Key] = f.Value
	}
	return m
}
