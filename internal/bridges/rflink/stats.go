package rflink

import "sync/atomic"

// Stats counts bridge activity. Counters only grow.
//
// Thread Safety: Safe for concurrent use.
type Stats struct {
	LinesFramed       atomic.Uint64
	RecordsParsed     atomic.Uint64
	Unsupported       atomic.Uint64
	Published         atomic.Uint64
	PublishFailures   atomic.Uint64
	CommandsForwarded atomic.Uint64
	ModeChanges       atomic.Uint64
	ButtonPresses     atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	LinesFramed       uint64 `json:"lines_framed"`
	RecordsParsed     uint64 `json:"records_parsed"`
	Unsupported       uint64 `json:"unsupported"`
	Published         uint64 `json:"published"`
	PublishFailures   uint64 `json:"publish_failures"`
	CommandsForwarded uint64 `json:"commands_forwarded"`
	ModeChanges       uint64 `json:"mode_changes"`
	ButtonPresses     uint64 `json:"button_presses"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		LinesFramed:       s.LinesFramed.Load(),
		RecordsParsed:     s.RecordsParsed.Load(),
		Unsupported:       s.Unsupported.Load(),
		Published:         s.Published.Load(),
		PublishFailures:   s.PublishFailures.Load(),
		CommandsForwarded: s.CommandsForwarded.Load(),
		ModeChanges:       s.ModeChanges.Load(),
		ButtonPresses:     s.ButtonPresses.Load(),
	}
}

// Map returns the snapshot keyed by the JSON member names.
func (s StatsSnapshot) Map() map[string]uint64 {
	return map[string]uint64{
		"lines_framed":       s.LinesFramed,
		"records_parsed":     s.RecordsParsed,
		"unsupported":        s.Unsupported,
		"published":          s.Published,
		"publish_failures":   s.PublishFailures,
		"commands_forwarded": s.CommandsForwarded,
		"mode_changes":       s.ModeChanges,
		"button_presses":     s.ButtonPresses,
	}
}
