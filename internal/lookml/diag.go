package lookml

import "fmt"

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic records a recoverable problem found while transforming a model.
// Diagnostics never stop generation; they are collected and reported at the
// end of the run.
type Diagnostic struct {
	Severity Severity
	Model    string
	Column   string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Column != "" {
		return fmt.Sprintf("%s: %s.%s: %s", d.Severity, d.Model, d.Column, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Model, d.Message)
}

// ErrorKind identifies a model-fatal error condition.
type ErrorKind string

const (
	// KindMeasureScopeMismatch means a measure's SQL references a column
	// that lives in a different view scope than the measure itself.
	KindMeasureScopeMismatch ErrorKind = "measure_scope_mismatch"
	// KindMalformedColumnPath means a dotted column path contains an empty
	// segment (e.g. "a..b" or a leading/trailing dot).
	KindMalformedColumnPath ErrorKind = "malformed_column_path"
	// KindViewNameCollision means two distinct column paths produced the
	// same view name and no deterministic suffix could resolve it.
	KindViewNameCollision ErrorKind = "view_name_collision"
)

// ModelError is a model-fatal error: the affected model's output is skipped
// but generation continues for other models.
type ModelError struct {
	Model string
	Kind  ErrorKind
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %s: %v", e.Model, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError wraps err as a model-fatal error of the given kind.
func NewModelError(model string, kind ErrorKind, err error) *ModelError {
	return &ModelError{Model: model, Kind: kind, Err: err}
}
