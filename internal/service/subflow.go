package service

import (
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

// SubFlowState is the lifecycle of a modal interaction such as the edit form or the delete confirmation.
type SubFlowState string

const (
	SubFlowClosed     SubFlowState = "closed"
	SubFlowOpen       SubFlowState = "open"
	SubFlowSubmitting SubFlowState = "submitting"
)

// SubFlow tracks one modal interaction and the value it operates on.
// Transitions happen only through its methods. It is not safe for concurrent use.
type SubFlow[T any] struct {
	state  SubFlowState
	target T
}

// State returns the current state. The zero SubFlow is closed.
func (f *SubFlow[T]) State() SubFlowState {
	if f.state == "" {
		return SubFlowClosed
	}
	return f.state
}

// Target returns the value the flow was opened with and whether the flow is open or submitting.
func (f *SubFlow[T]) Target() (T, bool) {
	if f.State() == SubFlowClosed {
		var zero T
		return zero, false
	}
	return f.target, true
}

// Open starts the flow for target. A submitting flow cannot be re-targeted.
func (f *SubFlow[T]) Open(target T) error {
	if f.State() == SubFlowSubmitting {
		return appErrors.ErrBusy
	}
	f.state = SubFlowOpen
	f.target = target
	return nil
}

// Begin moves an open flow to submitting.
func (f *SubFlow[T]) Begin() (T, error) {
	switch f.State() {
	case SubFlowOpen:
		f.state = SubFlowSubmitting
		return f.target, nil
	case SubFlowSubmitting:
		var zero T
		return zero, appErrors.ErrBusy
	default:
		var zero T
		return zero, appErrors.ErrSubFlowClosed
	}
}

// Fail returns a submitting flow to open so the user can retry or dismiss it.
func (f *SubFlow[T]) Fail() error {
	if f.State() != SubFlowSubmitting {
		return appErrors.ErrSubFlowClosed
	}
	f.state = SubFlowOpen
	return nil
}

// Succeed closes a submitting flow.
func (f *SubFlow[T]) Succeed() error {
	if f.State() != SubFlowSubmitting {
		return appErrors.ErrSubFlowClosed
	}
	f.Close()
	return nil
}

// Close dismisses the flow from any state.
func (f *SubFlow[T]) Close() {
	var zero T
	f.state = SubFlowClosed
	f.target = zero
}
