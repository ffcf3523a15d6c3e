package rflink

import "bytes"

// Framer splits the serial byte stream into lines.
//
// Bytes after the last newline are kept and prefix the next chunk, so the
// result does not depend on how the stream was split into reads. Each line
// loses exactly one terminator ("\n" or "\r\n"); other whitespace is kept.
//
// A Framer is owned by one goroutine.
type Framer struct {
	pending []byte
}

// NewFramer creates an empty framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends a chunk and returns every line it completes, in order.
// An empty line yields an empty string.
func (f *Framer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	f.pending = append(f.pending, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(f.pending, '\n')
		if idx < 0 {
			break
		}
		line := f.pending[:idx]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, string(line))
		f.pending = f.pending[idx+1:]
	}

	if len(f.pending) == 0 {
		// Drop the backing array so a long burst does not pin memory.
		f.pending = nil
	}
	return lines
}

// Pending returns the number of buffered bytes not yet terminated.
func (f *Framer) Pending() int {
	return len(f.pending)
}

// Reset discards the unterminated tail.
func (f *Framer) Reset() {
	f.pending = nil
}
