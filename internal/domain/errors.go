package domain

import (
	"errors"
	"fmt"
)

// Failure classes of the aggregation pipeline. Every error returned by an
// aggregator or adapter wraps exactly one of them.
var (
	// ErrQueryFailure marks a failed primary fetch (search, order detail, shipment headers).
	ErrQueryFailure = errors.New("query failure")
	// ErrJoinFailure marks a failed secondary enrichment call.
	ErrJoinFailure = errors.New("join failure")
)

type failure struct {
	class error
	op    string
	err   error
}

func (f *failure) Error() string {
	if f.err == nil {
		return fmt.Sprintf("%s: %s", f.op, f.class)
	}
	return fmt.Sprintf("%s: %s: %v", f.op, f.class, f.err)
}

func (f *failure) Unwrap() []error {
	if f.err == nil {
		return []error{f.class}
	}
	return []error{f.class, f.err}
}

// QueryFailure wraps err as a primary query failure of op.
func QueryFailure(op string, err error) error {
	if errors.Is(err, ErrQueryFailure) {
		return err
	}
	return &failure{class: ErrQueryFailure, op: op, err: err}
}

// JoinFailure wraps err as an enrichment join failure of op.
func JoinFailure(op string, err error) error {
	if errors.Is(err, ErrJoinFailure) {
		return err
	}
	return &failure{class: ErrJoinFailure, op: op, err: err}
}

// IsQueryFailure reports whether err is a primary query failure.
func IsQueryFailure(err error) bool {
	return errors.Is(err, ErrQueryFailure)
}
