package model

import "fmt"

type ErrorKind string

const VALIDATION_FAILURE ErrorKind = "ValidationFailure"
const NETWORK_FAILURE ErrorKind = "NetworkFailure"
const DOMAIN_REJECTION ErrorKind = "DomainRejection"
const CAPTURE_FAILURE ErrorKind = "CaptureFailure"

// ErrorInfo is carried on the session while the caller has not yet retried
// or acknowledged; it is never accumulated across attempts.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Raw     string    `json:"raw,omitempty"`
}

func (e *ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// BusyError rejects a submit issued while the session's effect is still in
// flight. The caller resubmits once the first call settles.
type BusyError struct {
	SessionId string
}

func (e BusyError) Error() string {
	return fmt.Sprintf("session %s has an effect in flight", e.SessionId)
}

type SessionEndedError struct {
	SessionId string
	State     SessionState
}

func (e SessionEndedError) Error() string {
	return fmt.Sprintf("session %s already ended", e.SessionId)
}

type AtEntryStageError struct {
	SessionId string
}

func (e AtEntryStageError) Error() string {
	return fmt.Sprintf("session %s is at the entry stage, nothing to go back to", e.SessionId)
}
