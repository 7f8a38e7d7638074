// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package procmgr force-stops the packages that cache attestation data so
// they pick up a changed PIF payload.
package procmgr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/derpfest/customizations/internal/logging"
)

// DefaultPackages are stopped after a PIF payload changes.
var DefaultPackages = []string{"com.google.android.gms", "com.android.vending"}

// DefaultCommand is the argv prefix of ExecStopper; the package is appended.
var DefaultCommand = []string{"am", "force-stop"}

// Stopper force-stops a single package.
type Stopper interface {
	ForceStop(ctx context.Context, pkg string) error
}

// ExecStopper runs Command followed by the package name.
type ExecStopper struct {
	Command []string
}

// NewExecStopper returns an ExecStopper for command, or DefaultCommand when
// command is empty.
func NewExecStopper(command []string) *ExecStopper {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &ExecStopper{Command: append([]string(nil), command...)}
}

func (e *ExecStopper) ForceStop(ctx context.Context, pkg string) error {
	if len(e.Command) == 0 {
		return errors.New("procmgr: empty command")
	}
	argv := append(append([]string(nil), e.Command[1:]...), pkg)
	out, err := exec.CommandContext(ctx, e.Command[0], argv...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("force-stop %s: %w: %s", pkg, err, msg)
		}
		return fmt.Errorf("force-stop %s: %w", pkg, err)
	}
	return nil
}

// NopStopper does nothing. It is used when procmgr is disabled.
type NopStopper struct{}

func (NopStopper) ForceStop(context.Context, string) error { return nil }

// StopAll attempts every package in order, logging each outcome. Failures
// never stop the loop; the number of stopped packages is returned.
func StopAll(ctx context.Context, s Stopper, pkgs []string) int {
	if s == nil {
		return 0
	}
	stopped := 0
	for _, pkg := range pkgs {
		if err := s.ForceStop(ctx, pkg); err != nil {
			logging.Errorf("Failed to kill package %s: %v", pkg, err)
			continue
		}
		stopped++
		logging.Infof("%s process killed", pkg)
	}
	return stopped
}
