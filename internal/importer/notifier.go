// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package importer

import "github.com/derpfest/customizations/internal/payload"

// Notification is a user-visible message about an import or delete.
type Notification struct {
	Kind    payload.Kind
	Outcome Outcome
	// State is the flow state when the notification fired. Rejections and
	// read errors carry StateRejected and StateErrorReading even though the
	// controller settles back to Idle right after.
	State   State
	Message string
}

// Notifier delivers notifications to the user (stdout, a TUI status line).
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
