// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes argv and returns its standard output.
type Runner func(ctx context.Context, argv []string) ([]byte, error)

// ExecRunner runs argv as a child process.
func ExecRunner(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return out, fmt.Errorf("%s: %w", argv[0], err)
	}
	return out, nil
}

// AndroidStore talks to the device's secure settings table through the
// `settings` shell command.
type AndroidStore struct {
	command []string
	run     Runner
}

// NewAndroidStore returns a store invoking command (for example
// ["settings"] or ["adb", "shell", "settings"]). A nil run uses ExecRunner.
func NewAndroidStore(command []string, run Runner) *AndroidStore {
	if run == nil {
		run = ExecRunner
	}
	return &AndroidStore{command: append([]string(nil), command...), run: run}
}

func (a *AndroidStore) argv(verb string, args ...string) []string {
	out := append([]string(nil), a.command...)
	out = append(out, verb, "secure")
	return append(out, args...)
}

// GetString treats the literal output "null" as an absent setting.
func (a *AndroidStore) GetString(ctx context.Context, name string) (string, bool, error) {
	out, err := a.run(ctx, a.argv("get", name))
	if err != nil {
		return "", false, err
	}
	v := strings.TrimRight(string(out), "\r\n")
	if v == "null" {
		return "", false, nil
	}
	return v, true, nil
}

func (a *AndroidStore) PutString(ctx context.Context, name, value string) error {
	_, err := a.run(ctx, a.argv("put", name, value))
	return err
}

func (a *AndroidStore) Delete(ctx context.Context, name string) error {
	_, err := a.run(ctx, a.argv("delete", name))
	return err
}

func (a *AndroidStore) GetInt(ctx context.Context, name string, def int) (int, error) {
	v, ok, err := a.GetString(ctx, name)
	if err != nil {
		return def, err
	}
	return IntValue(v, ok, def), nil
}

func (a *AndroidStore) PutInt(ctx context.Context, name string, v int) error {
	return a.PutString(ctx, name, strconv.Itoa(v))
}
