package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/detail"
	"github.com/joss/debate/internal/logging"
	"github.com/joss/debate/internal/session"
)

// errSignInFirst is shown for any command that needs a credential.
var errSignInFirst = errors.New("sign in first: run 'debate login'")

// exitOnError logs the failed operation and exits. Errors that were
// already shown as a notification are not printed twice.
func exitOnError(op *logging.Operation, err error) {
	if op != nil {
		op.Fail(err)
	}

	if needsSignIn(err) {
		err = errSignInFirst
	} else if op != nil && cli != nil && cli.reportedSince(op.StartedAt) {
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func needsSignIn(err error) bool {
	return errors.Is(err, session.ErrNoSession) ||
		errors.Is(err, detail.ErrSignInRequired) ||
		errors.Is(err, api.ErrUnauthorized)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stdin is shared by every prompt so buffered input is not lost between
// reads.
var stdin = bufio.NewReader(os.Stdin)

// prompt reads one line from in after printing label to stderr.
func prompt(in io.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads a password without echo when stdin is a terminal,
// and a plain line otherwise so scripts can pipe it in.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(stdin, "")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// openDebate builds the detail controller for a debate and loads it.
func openDebate(ctx context.Context, id string) (*detail.Controller, error) {
	ctrl := detail.New(id, cli.client, cli.sessions, cli.notices)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}
