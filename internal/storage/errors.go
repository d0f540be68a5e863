package storage

import "errors"

// Failure classes every backend maps its native errors onto. None of them is
// retried: the run fails and is re-run once the cause is fixed.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrTypeRejected  = errors.New("column type rejected")
	ErrPermission    = errors.New("insufficient privilege")
)

// EngineError carries a native driver error together with its class. Error
// returns the engine's own message unchanged so operators see exactly what
// the database said.
type EngineError struct {
	Kind error // one of the Err* sentinels
	Err  error
}

func (e *EngineError) Error() string { return e.Err.Error() }

func (e *EngineError) Unwrap() error { return e.Err }

// Is matches the class sentinel in addition to the wrapped chain.
func (e *EngineError) Is(target error) bool { return e.Kind != nil && target == e.Kind }

// Classify wraps err in an EngineError when kind is non-nil and returns err
// untouched otherwise.
func Classify(err error, kind error) error {
	if err == nil || kind == nil {
		return err
	}
	return &EngineError{Kind: kind, Err: err}
}
