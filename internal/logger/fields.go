package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Tracing fields, propagated through context.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldQuery     = "query"
	FieldPage      = "page"
	FieldPhotoID   = "photo_id"
	FieldSeq       = "seq"
	FieldMode      = "mode"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
)
