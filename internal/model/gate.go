package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates a missing source path.
var ErrNotFound = errors.New("not found")

// GateReason classifies a hard gate failure. Gate failures abort the
// document run, map to exit code 2, and are never retried automatically;
// downstream automation treats them as "re-profile first".
type GateReason string

const (
	GateFingerprintMismatch GateReason = "fingerprint_mismatch"
	GateMissingFingerprint  GateReason = "missing_fingerprint"
	GateLockViolation       GateReason = "lock_violation"
	GateMissingIdentity     GateReason = "missing_identity"
	GateUnreadableDocument  GateReason = "unreadable_document"
)

// GateError is the typed error for the fatal gate taxonomy. Callers branch
// on it explicitly (errors.As) to distinguish exit code 2 from ordinary
// runtime errors.
type GateError struct {
	Reason GateReason
	Detail string
	// Fields itemizes what differed (fingerprint fields, changed column-map
	// fields) so a human can decide between re-profiling and treating the
	// failure as a detection regression.
	Fields []string
}

func (e *GateError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("gate failure (%s): %s [%s]", e.Reason, e.Detail, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("gate failure (%s): %s", e.Reason, e.Detail)
}

// NewGateError builds a GateError with an itemized field list.
func NewGateError(reason GateReason, detail string, fields ...string) *GateError {
	return &GateError{Reason: reason, Detail: detail, Fields: fields}
}

// IsGateError reports whether err (or anything it wraps) is a gate failure.
func IsGateError(err error) bool {
	var ge *GateError
	return errors.As(err, &ge)
}
