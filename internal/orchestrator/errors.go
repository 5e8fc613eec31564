package orchestrator

import "fmt"

// Kind classifies a pipeline error.
type Kind string

const (
	KindAnalysisFailure        Kind = "analysis_failure"
	KindPersistenceUnavailable Kind = "persistence_unavailable"
	KindPluginFailure          Kind = "plugin_failure"
	KindRequirementsState      Kind = "requirements_state_error"
	KindPipelineFailure        Kind = "pipeline_failure"
)

// Error is returned by route handlers and converted into a safe response by
// ProcessQuery.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
