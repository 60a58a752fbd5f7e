// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"

	"github.com/pkg/errors"
)

//go:generate go tool enumer -type=Status -trimprefix=Status -output=gen_status_enumer.go status.go

// Status is the numeric result of a backend primitive. StatusSuccess is 0, failures are negative.
type Status int

const (
	StatusSuccess            Status = 0
	StatusFailure            Status = -1
	StatusNotImplemented     Status = -2
	StatusNoMemory           Status = -8
	StatusInvalidParameters  Status = -10
	StatusInvalidReference   Status = -12
	StatusInvalidDimension   Status = -13
	StatusInvalidType        Status = -15
	StatusInvalidNode        Status = -17
	StatusInvalidGraph       Status = -18
	StatusOptimizedAway      Status = -20
	StatusInvalidValue       Status = -21
	StatusGraphNotVerified   Status = -30
	StatusExternalSourceGone Status = -31
)

// StatusError is the error returned by failing backend primitives.
type StatusError struct {
	// Op is the name of the primitive that failed, e.g.: "CopyTensorPatch".
	Op     string
	Status Status
	Reason string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s failed: status %s (%d)", e.Op, e.Status, int(e.Status))
	}
	return fmt.Sprintf("%s failed: status %s (%d): %s", e.Op, e.Status, int(e.Status), e.Reason)
}

// Errorf creates a *StatusError with a stack trace.
func Errorf(op string, status Status, format string, args ...any) error {
	return errors.WithStack(&StatusError{Op: op, Status: status, Reason: fmt.Sprintf(format, args...)})
}

// StatusOf returns the Status carried by err: StatusSuccess if err is nil, StatusFailure if err is not
// a (wrapped) *StatusError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return StatusFailure
}
