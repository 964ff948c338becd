package types

import "time"

// RecordOptions controls how much of an event is captured. Header capture
// is an allow-list: when nil, no headers are captured at all (spec: "when
// an option is absent, the default is non-capturing").
type RecordOptions struct {
	RecordResponseDelays bool     `json:"record_response_delays,omitempty"`
	RecordRequestHeaders []string `json:"record_request_headers,omitempty"`
}

// RecordEvent is one observed (request, response, elapsed) tuple.
type RecordEvent struct {
	CapturedAt      time.Time
	Request         *CapturedRequest
	RequestHeaders  []KV // subset honoring RecordOptions.RecordRequestHeaders
	Response        *ResponseTemplate
	ElapsedMs       uint64
	WasProxied      bool
}

// Recording is an identified, ordered capture of events matching
// Requirements. Events are appended only in completion order.
type Recording struct {
	ID           uint64
	Doc          *RequirementsDoc
	Requirements *Requirements
	Options      RecordOptions
	Events       []RecordEvent
}

// RecordingDefinition is the admin wire body for POST recordings.
type RecordingDefinition struct {
	Request RequirementsDoc `json:"request"`
	Options RecordOptions   `json:"options"`
}

// ActiveRecording is the admin-facing read view of a Recording (event
// count only; events themselves are retrieved via the export endpoint).
type ActiveRecording struct {
	ID         uint64           `json:"id"`
	Request    *RequirementsDoc `json:"request"`
	Options    RecordOptions    `json:"options"`
	EventCount int              `json:"event_count"`
}
