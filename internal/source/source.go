// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package source resolves a picked location to a readable document. It
// understands plain paths, file:// and sftp:// URIs and "-" for stdin.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Document is an opened payload candidate. Body must be closed by the caller.
type Document struct {
	// Name is the base name used for extension checks.
	Name string
	// DeclaredType is the MIME type reported by the source, if any.
	DeclaredType string
	Body         io.ReadCloser
}

// Opener opens a location.
type Opener interface {
	Open(ctx context.Context, location string) (*Document, error)
}

// Resolver is the default Opener.
type Resolver struct {
	// Stdin backs the "-" location. Nil means os.Stdin.
	Stdin io.Reader
	SFTP  SFTPOptions
}

// NewResolver returns a Resolver with the given SFTP options.
func NewResolver(opts SFTPOptions) *Resolver {
	return &Resolver{SFTP: opts}
}

// ErrNoPrompt is returned by the password reader of a resolver built with
// WithoutPrompt.
var ErrNoPrompt = errors.New("password prompt unavailable here, use an ssh agent or a cached password")

// WithoutPrompt returns a copy of r that never reads passwords from the
// terminal. Full-screen UIs own the terminal, so a raw-mode prompt would
// fight them for input. Passwords cached earlier in the process still work.
func (r *Resolver) WithoutPrompt() *Resolver {
	cp := *r
	cp.SFTP.ReadPassword = func(string) (string, error) { return "", ErrNoPrompt }
	return &cp
}

// Open dispatches on the location form.
func (r *Resolver) Open(ctx context.Context, location string) (*Document, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, fmt.Errorf("empty location")
	case location == "-":
		in := r.Stdin
		if in == nil {
			in = os.Stdin
		}
		return &Document{Name: "-", Body: io.NopCloser(in)}, nil
	case strings.HasPrefix(location, "file://"):
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("invalid file URI %q: %w", location, err)
		}
		return openLocal(filepath.FromSlash(u.Path))
	case strings.HasPrefix(location, "sftp://"):
		loc, err := ParseSFTPLocation(location)
		if err != nil {
			return nil, err
		}
		return openSFTP(ctx, loc, r.SFTP)
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("unsupported location scheme in %q", location)
	default:
		return openLocal(location)
	}
}

func openLocal(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &Document{Name: filepath.Base(path), Body: f}, nil
}

// LocalPath returns the filesystem path behind a plain path or file:// URI,
// and false for every other location form.
func LocalPath(location string) (string, bool) {
	location = strings.TrimSpace(location)
	switch {
	case location == "" || location == "-":
		return "", false
	case strings.HasPrefix(location, "file://"):
		u, err := url.Parse(location)
		if err != nil {
			return "", false
		}
		return filepath.FromSlash(u.Path), true
	case strings.Contains(location, "://"):
		return "", false
	default:
		return location, true
	}
}
