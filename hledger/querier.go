// Package hledger is the gateway to the external hledger CLI.
//
// A Querier runs one report and returns its raw text. The Gateway built on
// top of it decodes the reports the pipeline needs (transaction dumps,
// balance reports, monthly registers) and turns every failure into an empty
// result: callers treat "no data" as "zero activity".
//
// Example usage:
//
//	q := hledger.NewCLI("household.journal")
//	gw := hledger.NewGateway(q)
//	txns := gw.Transactions(ctx)
package hledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultMaxOutput is the largest report accepted from hledger (10 MiB).
const DefaultMaxOutput = 10 * 1024 * 1024

// ErrOutputTooLarge is returned when a report exceeds the output ceiling.
var ErrOutputTooLarge = errors.New("hledger output exceeds buffer limit")

// Querier runs a single hledger report.
type Querier interface {
	Query(ctx context.Context, args ...string) (string, error)
}

// QuerierFunc adapts a function to the Querier interface.
type QuerierFunc func(ctx context.Context, args ...string) (string, error)

// Query calls f.
func (f QuerierFunc) Query(ctx context.Context, args ...string) (string, error) {
	return f(ctx, args...)
}

// CLI runs reports by invoking the hledger binary against a fixed journal.
type CLI struct {
	// Binary is the hledger executable, resolved through PATH.
	Binary string

	// Journal is the journal file passed with -f.
	Journal string

	// MaxOutput caps the captured standard output in bytes.
	MaxOutput int
}

// Option configures a CLI.
type Option func(*CLI)

// WithBinary overrides the hledger executable.
func WithBinary(bin string) Option {
	return func(c *CLI) {
		if bin != "" {
			c.Binary = bin
		}
	}
}

// WithMaxOutput overrides the output ceiling.
func WithMaxOutput(n int) Option {
	return func(c *CLI) {
		c.MaxOutput = n
	}
}

// NewCLI creates a CLI querier for the given journal.
func NewCLI(journal string, opts ...Option) *CLI {
	c := &CLI{
		Binary:    "hledger",
		Journal:   journal,
		MaxOutput: DefaultMaxOutput,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Query runs hledger with args and returns its trimmed standard output.
// A started query always runs to completion: ctx is not used to kill it.
func (c *CLI) Query(ctx context.Context, args ...string) (string, error) {
	cmdArgs := append([]string{"-f", c.Journal}, args...)
	cmd := exec.Command(c.Binary, cmdArgs...)

	stdout := &limitedBuffer{limit: c.MaxOutput}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if stdout.overflow {
		return "", fmt.Errorf("hledger %s: %w", strings.Join(args, " "), ErrOutputTooLarge)
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("hledger %s: %w", strings.Join(args, " "), runErr)
		}
		return "", fmt.Errorf("hledger %s: %w: %s", strings.Join(args, " "), runErr, msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// limitedBuffer keeps at most limit bytes. Writes past the limit are
// discarded rather than failed so the child process never blocks on a full
// pipe.
type limitedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.overflow {
		return len(p), nil
	}
	if b.limit > 0 && b.buf.Len()+len(p) > b.limit {
		b.overflow = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
