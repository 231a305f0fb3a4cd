// Package vtxerr defines the typed error vocabulary shared by every mining
// component, generalizing the teacher's per-concern error structs
// (bitcoin.RPCError, bitcoin.BlockRejectedError) into a single struct tagged
// by Kind, so callers can errors.As once regardless of which package raised
// the error.
package vtxerr

import (
	"errors"
	"fmt"
)

// Kind names one of the recognized failure categories a caller may want to
// branch on.
type Kind string

const (
	InvalidInput           Kind = "invalid_input"
	InvalidAddress         Kind = "invalid_address"
	UnsupportedAddressType Kind = "unsupported_address_type"
	NetworkMismatch        Kind = "network_mismatch"
	InsufficientFunds      Kind = "insufficient_funds"
	MultipleChangeOutputs  Kind = "multiple_change_outputs"
	DustOutput             Kind = "dust_output"
	WebGpuNotAvailable     Kind = "webgpu_not_available"
	WorkerError            Kind = "worker_error"
	MiningAborted          Kind = "mining_aborted"
	NoMatchingNonce        Kind = "no_matching_nonce"
	InvalidRange           Kind = "invalid_range"
)

// Error is the single error type raised by every package in this module.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error carrying no wrapped cause.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap builds an Error that wraps an underlying cause.
func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
