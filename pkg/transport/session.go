/*
 * Copyright 2026 The Discoveryd Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package transport opens an interactive CLI shell session to a network
// device over SSH and exchanges request/response commands with it.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/coriolis-net/discoveryd/pkg/models"
)

// promptRE matches a trailing device prompt such as "switch1#", "switch1>",
// or "switch1$" at the end of a read buffer.
var promptRE = regexp.MustCompile(`\S+[#>$]\s*$`)

const (
	readPollInterval = 20 * time.Millisecond
	sessionTerm      = "vt100"
)

// Session is one persistent SSH shell opened against a device. Commands
// share state across calls (paging disabled, enable mode), unlike a fresh
// exec-per-command session, which CLI devices don't tolerate well.
type Session struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  *backgroundReader
}

// Connect dials addr:port over SSH with cred and opens one interactive
// shell with a pty attached. The returned Session is ready for Send.
func Connect(ctx context.Context, addr string, port int, cred models.Credential, timeout time.Duration) (*Session, error) {
	config := &ssh.ClientConfig{
		User:            cred.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	switch cred.AuthType {
	case models.AuthTypeKey:
		signer, err := ssh.ParsePrivateKey([]byte(cred.Password))
		if err != nil {
			return nil, fmt.Errorf("%w: parse private key: %v", models.ErrAuthFailed, err)
		}

		config.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	default:
		config.Auth = []ssh.AuthMethod{ssh.Password(cred.Password)}
	}

	dialer := net.Dialer{Timeout: timeout}

	target := fmt.Sprintf("%s:%d", addr, port)

	rawConn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, classifyDialError(err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(rawConn, target, config)
	if err != nil {
		_ = rawConn.Close()
		return nil, fmt.Errorf("%w: ssh handshake: %v", models.ErrAuthFailed, err)
	}

	client := ssh.NewClient(sshConn, chans, reqs)

	sess, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: open session: %v", models.ErrProtocolError, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}

	if err := sess.RequestPty(sessionTerm, 200, 400, modes); err != nil {
		_ = sess.Close()
		_ = client.Close()

		return nil, fmt.Errorf("%w: request pty: %v", models.ErrProtocolError, err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		_ = sess.Close()
		_ = client.Close()

		return nil, fmt.Errorf("%w: stdin pipe: %v", models.ErrProtocolError, err)
	}

	stdout, err := sess.StdoutPipe()
	if err != nil {
		_ = sess.Close()
		_ = client.Close()

		return nil, fmt.Errorf("%w: stdout pipe: %v", models.ErrProtocolError, err)
	}

	if err := sess.Shell(); err != nil {
		_ = sess.Close()
		_ = client.Close()

		return nil, fmt.Errorf("%w: start shell: %v", models.ErrProtocolError, err)
	}

	s := &Session{client: client, session: sess, stdin: stdin, stdout: newBackgroundReader(stdout)}

	// Drain the login banner up to the first prompt before handing the
	// session to the caller, so the first real Send isn't polluted by it.
	_, _ = s.readUntilPrompt(ctx, timeout)

	return s, nil
}

// Send writes cmd to the shell and reads until a device prompt is seen or
// timeout elapses, whichever comes first.
func (s *Session) Send(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	if _, err := io.WriteString(s.stdin, cmd+"\n"); err != nil {
		return "", fmt.Errorf("%w: write command: %v", models.ErrProtocolError, err)
	}

	out, err := s.readUntilPrompt(ctx, timeout)
	if err != nil {
		return out, err
	}

	return stripEcho(out, cmd), nil
}

// readUntilPrompt polls stdout until promptRE matches the trailing text or
// the deadline elapses, returning whatever text accumulated either way.
func (s *Session) readUntilPrompt(ctx context.Context, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)

	var buf bytes.Buffer

	for {
		if ctx.Err() != nil {
			return buf.String(), fmt.Errorf("%w: %v", models.ErrCancelled, ctx.Err())
		}

		if time.Now().After(deadline) {
			return buf.String(), fmt.Errorf("%w: no prompt within %s", models.ErrTimeout, timeout)
		}

		res, err := s.stdout.readWithDeadline(4096, readPollInterval)
		if err != nil {
			if errors.Is(err, errReadTimeout) {
				continue
			}

			return buf.String(), fmt.Errorf("%w: read: %v", models.ErrProtocolError, err)
		}

		if res.n > 0 {
			buf.Write(res.buf)

			if promptRE.Match(bytes.TrimRight(buf.Bytes(), "\r\n")) {
				return buf.String(), nil
			}
		}

		if res.err != nil {
			if errors.Is(res.err, io.EOF) {
				return buf.String(), fmt.Errorf("%w: session closed", models.ErrProtocolError)
			}

			return buf.String(), fmt.Errorf("%w: read: %v", models.ErrProtocolError, res.err)
		}
	}
}

// Close tears down the shell session and the underlying SSH client.
func (s *Session) Close() error {
	if s.session != nil {
		_ = s.session.Close()
	}

	if s.client != nil {
		return s.client.Close()
	}

	return nil
}

func stripEcho(out, cmd string) string {
	if idx := bytes.IndexByte([]byte(out), '\n'); idx >= 0 && bytes.Contains([]byte(out[:idx]), []byte(cmd)) {
		return out[idx+1:]
	}

	return out
}

func classifyDialError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrTimeout, err)
	}

	if errors.Is(err, syscallECONNREFUSED) {
		return fmt.Errorf("%w: %v", models.ErrPortClosed, err)
	}

	return err
}
