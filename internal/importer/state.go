// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package importer

import "errors"

// State is the import flow state of one payload kind. Rejected and
// ErrorReading are passed through on failure and reported on the
// notification; the kind is Idle again once Complete returns.
type State int

const (
	StateIdle State = iota
	StatePicking
	StateLoading
	StateValidating
	StateStored
	StateRejected
	StateErrorReading
)

var stateNames = [...]string{"idle", "picking", "loading", "validating", "stored", "rejected", "error-reading"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Outcome is the terminal result of Complete or Delete.
type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomeStored
	OutcomeRejected
	OutcomeReadError
	OutcomeStoreError
	OutcomeDeleted
)

var outcomeNames = [...]string{"cancelled", "stored", "rejected", "read-error", "store-error", "deleted"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

var (
	// ErrRejected marks a document that is well-formed but unacceptable, or
	// of the wrong type.
	ErrRejected = errors.New("payload rejected")
	// ErrRead marks a document that could not be opened or read.
	ErrRead = errors.New("payload could not be read")
	// ErrStore marks a failed settings write or delete.
	ErrStore = errors.New("settings store failed")
)
