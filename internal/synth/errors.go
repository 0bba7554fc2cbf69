package synth

import (
	"errors"
	"fmt"
)

// InvariantError reports output the synthesiser refuses to emit.
//
// Synthesis is deterministic over a validated category, so an invariant
// error always points at a defect in the category model or the generator,
// never at transient state. Generation of the category is aborted.
type InvariantError struct {
	// Code identifies the violated invariant.
	Code InvariantErrorCode

	// Message is a human-readable description.
	Message string

	// Category is the category being synthesised.
	Category string

	// Signature is the conflicting function signature, when there is one.
	Signature string
}

// InvariantErrorCode categorizes invariant errors.
type InvariantErrorCode string

const (
	// ErrCodeDuplicateSignature indicates two conversions share a signature
	// but differ in body.
	ErrCodeDuplicateSignature InvariantErrorCode = "DUPLICATE_SIGNATURE"
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Signature != "" {
		return fmt.Sprintf("%s: %s (category=%s, signature=%s)", e.Code, e.Message, e.Category, e.Signature)
	}
	return fmt.Sprintf("%s: %s (category=%s)", e.Code, e.Message, e.Category)
}

// IsInvariantError returns true if err is an InvariantError.
// Uses errors.As to handle wrapped errors.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// IsDuplicateSignature returns true if err reports conflicting bodies for
// one signature.
func IsDuplicateSignature(err error) bool {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code == ErrCodeDuplicateSignature
	}
	return false
}
