// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

const dialTimeout = 10 * time.Second

// SFTPOptions configures remote reads.
type SFTPOptions struct {
	// KnownHosts is the known_hosts file; empty means ~/.ssh/known_hosts.
	KnownHosts string
	// PasswordPrompt enables keyboard password authentication.
	PasswordPrompt bool
	// ReadPassword overrides the terminal prompt, mainly for tests.
	ReadPassword func(prompt string) (string, error)
}

// SFTPLocation is a parsed sftp:// URI.
type SFTPLocation struct {
	User string
	// Addr is host:port, with port 22 filled in when absent.
	Addr string
	Path string
}

// ParseSFTPLocation parses sftp://[user@]host[:port]/path. A missing user
// falls back to the current OS user.
func ParseSFTPLocation(raw string) (SFTPLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return SFTPLocation{}, fmt.Errorf("invalid sftp URI %q: %w", raw, err)
	}
	if u.Scheme != "sftp" || u.Hostname() == "" {
		return SFTPLocation{}, fmt.Errorf("invalid sftp URI %q: host required", raw)
	}
	p := u.Path
	if p == "" || p == "/" {
		return SFTPLocation{}, fmt.Errorf("invalid sftp URI %q: path required", raw)
	}
	// A leading "/~/" denotes the remote home directory.
	p = strings.TrimPrefix(p, "/~/")

	name := u.User.Username()
	if name == "" {
		if cur, err := user.Current(); err == nil {
			name = cur.Username
			if parts := strings.Split(name, `\`); len(parts) > 1 {
				name = parts[1]
			}
		}
	}

	port := u.Port()
	if port == "" {
		port = "22"
	}
	return SFTPLocation{User: name, Addr: net.JoinHostPort(u.Hostname(), port), Path: p}, nil
}

func knownHostsCallback(file string) (ssh.HostKeyCallback, error) {
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not locate known_hosts: %w", err)
		}
		file = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("could not load known_hosts %s: %w", file, err)
	}
	return cb, nil
}

func terminalPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password prompt requires a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func authMethods(loc SFTPLocation, opts SFTPOptions) []ssh.AuthMethod {
	var methods []ssh.AuthMethod
	if a := getSSHAgent(); a != nil {
		methods = append(methods, ssh.PublicKeysCallback(a.Signers))
	}
	if opts.PasswordPrompt {
		read := opts.ReadPassword
		if read == nil {
			read = terminalPassword
		}
		prompt := fmt.Sprintf("%s@%s's password: ", loc.User, loc.Addr)
		key := loc.cacheKey()
		methods = append(methods, ssh.PasswordCallback(func() (string, error) {
			if cached := passwords.Get(key); cached != nil {
				return string(cached), nil
			}
			pw, err := read(prompt)
			if err != nil {
				return "", err
			}
			passwords.Set(key, []byte(pw))
			return pw, nil
		}))
	}
	return methods
}

// remoteFile closes the file, then the sftp session, then the connection.
type remoteFile struct {
	*sftp.File
	sftp   *sftp.Client
	client *ssh.Client
}

func (r *remoteFile) Close() error {
	err := r.File.Close()
	_ = r.sftp.Close()
	_ = r.client.Close()
	return err
}

func openSFTP(ctx context.Context, loc SFTPLocation, opts SFTPOptions) (*Document, error) {
	hostKeys, err := knownHostsCallback(opts.KnownHosts)
	if err != nil {
		return nil, err
	}
	auth := authMethods(loc, opts)
	if len(auth) == 0 {
		return nil, errors.New("no authentication method available (no ssh agent found and password prompt disabled)")
	}
	config := &ssh.ClientConfig{
		User:            loc.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         dialTimeout,
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", loc.Addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", loc.Addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, loc.Addr, config)
	if err != nil {
		_ = conn.Close()
		// A rejected password must be asked for again next time.
		passwords.Clear(loc.cacheKey())
		return nil, fmt.Errorf("ssh handshake with %s: %w", loc.Addr, err)
	}
	client := ssh.NewClient(c, chans, reqs)

	sc, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}
	f, err := sc.Open(loc.Path)
	if err != nil {
		_ = sc.Close()
		_ = client.Close()
		return nil, fmt.Errorf("failed to open remote file %s: %w", loc.Path, err)
	}
	var body io.ReadCloser = &remoteFile{File: f, sftp: sc, client: client}
	return &Document{Name: path.Base(loc.Path), Body: body}, nil
}
