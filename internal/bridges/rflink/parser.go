package rflink

import (
	"fmt"
	"strings"
)

// Wire format constants.
const (
	// headerToken starts every line the receiver sends to the host.
	headerToken = "20"

	// sequenceOffset is where the sequence index starts ("20;" is skipped).
	sequenceOffset = 3

	// fieldSeparator separates header parts and fields.
	fieldSeparator = ';'

	// pongField is synthesised for PONG records, which carry no fields.
	pongField = "PONG"
)

// specialTags lists the tag prefixes in priority order. "DEBUG" must come
// after the longer debug prefixes that contain it.
var specialTags = []struct {
	prefix string
	tag    DeviceTag
}{
	{"VER", DeviceTag{Kind: TagVersion, Name: "VERSION"}},
	{"PONG", DeviceTag{Kind: TagPong, Name: "PONG"}},
	{"RFDEBUG", DeviceTag{Kind: TagRFDebug, Name: "RFDEBUG"}},
	{"RFUDEBUG", DeviceTag{Kind: TagRFUDebug, Name: "RFUDEBUG"}},
	{"QRFDEBUG", DeviceTag{Kind: TagQRFDebug, Name: "QRFDEBUG"}},
	{"DEBUG", DeviceTag{Kind: TagDebug, Name: "DEBUG"}},
}

// Parse parses one line received from the RFLink receiver.
//
// Parameters:
//   - line: A single line without its terminator
//
// Returns:
//   - Record: The parsed record
//   - error: ErrNotProtocolMessage (wrapped) if the header is missing or
//     no separator follows the sequence index
//
// Example:
//
//	rec, err := rflink.Parse("20;7;TESTDEV;A=1;B=2;")
//	// rec.Sequence == "7", rec.Tag.Name == "TESTDEV",
//	// rec.Fields == [{A 1} {B 2}]
func Parse(line string) (Record, error) {
	if !strings.HasPrefix(line, headerToken) {
		return Record{}, fmt.Errorf("%w: missing %q header", ErrNotProtocolMessage, headerToken)
	}
	if len(line) <= sequenceOffset {
		return Record{}, fmt.Errorf("%w: line too short", ErrNotProtocolMessage)
	}

	sep := strings.IndexByte(line[sequenceOffset:], fieldSeparator)
	if sep < 0 {
		return Record{}, fmt.Errorf("%w: no separator after sequence index", ErrNotProtocolMessage)
	}
	sep += sequenceOffset

	rec := Record{
		Sequence: line[sequenceOffset:sep],
		Raw:      line,
	}

	body := line[sep+1:]
	tag, blob := classify(body)
	rec.Tag = tag

	if tag.Kind == TagPong {
		rec.Fields = []Field{{Key: pongField, Value: "1"}}
		return rec, nil
	}
	rec.Fields = parseFields(blob)
	return rec, nil
}

// classify determines the tag of a record body (the text after the sequence
// separator) and returns the part holding the fields.
func classify(body string) (DeviceTag, string) {
	for _, s := range specialTags {
		if strings.HasPrefix(body, s.prefix) {
			return s.tag, body
		}
	}

	name, blob, found := strings.Cut(body, string(fieldSeparator))
	if !found {
		return DeviceTag{Kind: TagGeneric, Name: body}, ""
	}
	return DeviceTag{Kind: TagGeneric, Name: name}, blob
}

// parseFields splits a field blob into key=value pairs.
// Empty segments and segments without '=' are skipped.
func parseFields(blob string) []Field {
	if blob == "" {
		return nil
	}

	var fields []Field
	for _, segment := range strings.Split(blob, string(fieldSeparator)) {
		if segment == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return fields
}
