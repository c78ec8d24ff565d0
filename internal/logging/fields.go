package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	// The console handler promotes it into the message prefix.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run correlation identifiers.
	FieldRunID = "run_id"
	// FieldCase is the standardized structured logging key for case labels.
	FieldCase = "case"
	// FieldSource is the standardized structured logging key for case sources (file paths or URLs).
	FieldSource = "source"
)
