// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldSubflow   = "subflow"
	FieldOperation = "operation"

	// Media fields
	FieldFormat   = "format"
	FieldQuality  = "quality"
	FieldFilename = "filename"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Network fields
	FieldURL        = "url"
	FieldOrigin     = "origin"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
)
