// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package importer drives the keybox/PIF import flow: pick a document, read
// it, validate it, persist it with a display timestamp and refresh the
// summary. Changing the PIF payload also force-stops the packages that cache
// it.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/procmgr"
	"github.com/derpfest/customizations/internal/settings"
	"github.com/derpfest/customizations/internal/source"
)

// PickRequest constrains a file picker to one payload kind.
type PickRequest struct {
	Kind      payload.Kind
	MIMEType  string
	Extension string
	Title     string
}

// PickResult is what a picker hands back. OK is false when the user
// cancelled.
type PickResult struct {
	OK       bool
	Location string
}

// Options configures a Controller. Store and Opener are required.
type Options struct {
	Store    settings.Store
	Opener   source.Opener
	Stopper  procmgr.Stopper
	Packages []string
	Policy   payload.Policy
	Clock    Clock
	Notifier Notifier
}

// Controller owns the import state of both payload kinds. Its methods are
// serialized, so a watcher goroutine and a UI may share one Controller.
type Controller struct {
	mu       sync.Mutex
	store    settings.Store
	opener   source.Opener
	stopper  procmgr.Stopper
	packages []string
	policy   payload.Policy
	clock    Clock
	notifier Notifier
	states   map[payload.Kind]State
}

// New returns a Controller with every kind Idle.
func New(opts Options) *Controller {
	c := &Controller{
		store:    opts.Store,
		opener:   opts.Opener,
		stopper:  opts.Stopper,
		packages: opts.Packages,
		policy:   opts.Policy,
		clock:    opts.Clock,
		notifier: opts.Notifier,
		states:   map[payload.Kind]State{},
	}
	if c.stopper == nil {
		c.stopper = procmgr.NopStopper{}
	}
	if c.packages == nil {
		c.packages = procmgr.DefaultPackages
	}
	if c.policy == "" {
		c.policy = payload.PolicyLenient
	}
	if c.clock == nil {
		c.clock = SystemClock()
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	return c
}

// Policy returns the keybox policy in effect.
func (c *Controller) Policy() payload.Policy { return c.policy }

// State returns the current state of kind.
func (c *Controller) State(kind payload.Kind) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[kind]
}

// BeginPick moves kind to Picking and returns the picker constraints.
func (c *Controller) BeginPick(kind payload.Kind) PickRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[kind] = StatePicking
	return PickRequest{
		Kind:      kind,
		MIMEType:  kind.MIMEType(),
		Extension: kind.Extension(),
		Title:     i18n.T("tui_picker_title", kind.MIMEType()),
	}
}

// Import is BeginPick followed by a successful pick of location.
func (c *Controller) Import(ctx context.Context, kind payload.Kind, location string) (Outcome, error) {
	c.BeginPick(kind)
	return c.Complete(ctx, kind, PickResult{OK: true, Location: location})
}

// Complete finishes a pick. Cancelled picks return OutcomeCancelled and a
// nil error. Other failures wrap ErrRead, ErrRejected or ErrStore.
func (c *Controller) Complete(ctx context.Context, kind payload.Kind, res PickResult) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !res.OK || strings.TrimSpace(res.Location) == "" {
		c.states[kind] = StateIdle
		return OutcomeCancelled, nil
	}

	c.states[kind] = StateLoading
	d, err := c.load(ctx, kind, res.Location)
	if err != nil {
		c.states[kind] = StateErrorReading
		logging.Errorf("Failed to read %s file %s: %v", kind, res.Location, err)
		c.audit(ctx, "READ_ERROR_"+actionSuffix(kind), res.Location)
		c.notify(kind, OutcomeReadError, i18n.T(kind.MessagePrefix()+"_error"))
		c.states[kind] = StateIdle
		return OutcomeReadError, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if d.wrongType {
		return c.reject(ctx, kind, d.name, fmt.Sprintf("%s is neither %s nor *%s (type %s)", d.name, kind.MIMEType(), kind.Extension(), d.declared))
	}
	text := d.text

	c.states[kind] = StateValidating
	if !payload.Validate(kind, text, c.policy) {
		return c.reject(ctx, kind, d.name, fmt.Sprintf("%s failed %s validation", d.name, kind))
	}

	if err := c.storePair(ctx, kind, text); err != nil {
		c.states[kind] = StateIdle
		logging.ErrorErr("Failed to store "+kind.String()+" data", err)
		c.notify(kind, OutcomeStoreError, i18n.T("store_error", err))
		return OutcomeStoreError, fmt.Errorf("%w: %v", ErrStore, err)
	}

	c.states[kind] = StateStored
	logging.Infof("Stored %s data from %s (%d bytes)", kind, d.name, len(text))
	c.audit(ctx, "IMPORT_"+actionSuffix(kind), d.name)
	c.notify(kind, OutcomeStored, i18n.T(kind.MessagePrefix()+"_loaded"))
	if kind == payload.Pif {
		procmgr.StopAll(ctx, c.stopper, c.packages)
	}
	return OutcomeStored, nil
}

// loaded is an opened and, unless wrongType is set, fully read document.
type loaded struct {
	name      string
	declared  string
	text      string
	wrongType bool
}

// load opens location and reads it. A declared type or a matching extension
// settles the kind check before the body is read, so a wrong-type document
// is never read. Without either, the content is sniffed.
func (c *Controller) load(ctx context.Context, kind payload.Kind, location string) (loaded, error) {
	doc, err := c.opener.Open(ctx, location)
	if err != nil {
		return loaded{}, err
	}
	defer func() { _ = doc.Body.Close() }()

	d := loaded{name: doc.Name, declared: doc.DeclaredType}
	settled := d.declared != "" || kind.Accepts(d.name, "")
	if settled && !kind.Accepts(d.name, d.declared) {
		d.wrongType = true
		return d, nil
	}
	data, err := io.ReadAll(doc.Body)
	if err != nil {
		return loaded{}, err
	}
	d.text = string(data)
	if !settled {
		d.declared = mimetype.Detect(data).String()
		d.wrongType = !kind.Accepts(d.name, d.declared)
	}
	return d, nil
}

func (c *Controller) reject(ctx context.Context, kind payload.Kind, name, reason string) (Outcome, error) {
	c.states[kind] = StateRejected
	logging.Warnf("Rejected %s: %s", kind, reason)
	c.audit(ctx, "REJECT_"+actionSuffix(kind), name)
	c.notify(kind, OutcomeRejected, i18n.T(kind.MessagePrefix()+"_invalid"))
	c.states[kind] = StateIdle
	return OutcomeRejected, fmt.Errorf("%w: %s", ErrRejected, reason)
}

// storePair writes the payload, then the timestamp. There is no rollback:
// a failed timestamp write leaves the payload stored without it.
func (c *Controller) storePair(ctx context.Context, kind payload.Kind, text string) error {
	if err := c.store.PutString(ctx, kind.DataKey(), text); err != nil {
		return err
	}
	ts := c.clock.Now().Format(TimestampLayout)
	if err := c.store.PutString(ctx, kind.TimestampKey(), ts); err != nil {
		logging.Warnf("%s stored without %s", kind.DataKey(), kind.TimestampKey())
		return err
	}
	return nil
}

// Delete clears the payload and its timestamp. Deleting an absent payload
// succeeds and leaves the same cleared state.
func (c *Controller) Delete(ctx context.Context, kind payload.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, kind.DataKey()); err != nil {
		logging.ErrorErr("Failed to delete "+kind.DataKey(), err)
		c.notify(kind, OutcomeStoreError, i18n.T("store_error", err))
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if err := c.store.Delete(ctx, kind.TimestampKey()); err != nil {
		logging.ErrorErr("Failed to delete "+kind.TimestampKey(), err)
		c.notify(kind, OutcomeStoreError, i18n.T("store_error", err))
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	c.states[kind] = StateIdle
	c.audit(ctx, "DELETE_"+actionSuffix(kind), "")
	c.notify(kind, OutcomeDeleted, i18n.T(kind.MessagePrefix()+"_cleared"))
	if kind == payload.Pif {
		procmgr.StopAll(ctx, c.stopper, c.packages)
	}
	return nil
}

// Check opens location and runs the validation report without storing
// anything. A type mismatch is reported as a failed check_wrong_type.
func (c *Controller) Check(ctx context.Context, kind payload.Kind, location string) (payload.Report, error) {
	d, err := c.load(ctx, kind, location)
	if err != nil {
		return payload.Report{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if d.wrongType {
		return payload.Report{Checks: []payload.Check{{ID: "check_wrong_type"}}}, nil
	}
	return payload.ValidateReport(kind, d.text, c.policy), nil
}

func (c *Controller) audit(ctx context.Context, action, details string) {
	a, ok := c.store.(settings.Auditor)
	if !ok {
		return
	}
	if err := a.LogAction(ctx, action, details); err != nil {
		logging.Warnf("audit log write failed: %v", err)
	}
}

// notify reports o with the state kind is in at that moment, so observers
// see the Rejected and ErrorReading states the controller passes through.
func (c *Controller) notify(kind payload.Kind, o Outcome, msg string) {
	c.notifier.Notify(Notification{Kind: kind, Outcome: o, State: c.states[kind], Message: msg})
}

func actionSuffix(kind payload.Kind) string {
	return strings.ToUpper(kind.String())
}
