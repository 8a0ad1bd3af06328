package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the step of a run an error came from.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageValidate  Stage = "validate"
	StageTransform Stage = "transform"
	StagePersist   Stage = "persist"
	StageDone      Stage = "done"
)

// Kind is the closed set of failure categories. Commands and the run
// journal key off these instead of error strings.
type Kind string

const (
	KindTimeout              Kind = "timeout"
	KindConnectionFailure    Kind = "connection_failure"
	KindHttpStatus           Kind = "http_status"
	KindMalformedResponse    Kind = "malformed_response"
	KindNotFound             Kind = "not_found"
	KindPermissionDenied     Kind = "permission_denied"
	KindValidationFailure    Kind = "validation_failure"
	KindTransformFailure     Kind = "transform_failure"
	KindInvalidPath          Kind = "invalid_path"
	KindDeviceFull           Kind = "device_full"
	KindSerializationFailure Kind = "serialization_failure"
)

// Error tags an underlying failure with the stage it happened in and
// its kind. Every failure path in this package returns one of these.
type Error struct {
	Stage Stage
	Kind  Kind
	// Status carries the response code when Kind is KindHttpStatus.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindHttpStatus {
		return fmt.Sprintf("%s: %s %d: %s", e.Stage, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, or "" if err carries no *Error.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}

// StageOf reports the stage err failed in. A nil error means the run
// completed, so it reports StageDone.
func StageOf(err error) Stage {
	if err == nil {
		return StageDone
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Stage
	}
	return ""
}
