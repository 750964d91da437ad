// Package format pipes generated flake text through an external Nix
// formatter. Formatting is best effort: any failure leaves the text as it
// was and reports why.
package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommand is the formatter used when none is configured.
const DefaultCommand = "nixfmt"

// DefaultTimeout bounds a formatter run when none is configured.
const DefaultTimeout = 10 * time.Second

// Status is the outcome of a formatter run.
type Status string

// Formatter outcomes.
const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
)

// Result describes what Format did. Reason is set when the formatter was
// skipped.
type Result struct {
	Status  Status `json:"status"`
	Command string `json:"command,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Applied reports whether the formatter output was used.
func (r Result) Applied() bool {
	return r.Status == StatusApplied
}

// Formatter runs Command with Args, feeding the text on stdin and reading
// the formatted text from stdout.
type Formatter struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// New returns a formatter for command, falling back to the defaults for an
// empty command or a non-positive timeout.
func New(command string, args []string, timeout time.Duration) *Formatter {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Formatter{Command: command, Args: args, Timeout: timeout}
}

// Disabled returns a result for callers that skip formatting on request.
func Disabled() Result {
	return Result{Status: StatusSkipped, Reason: "formatting disabled"}
}

// Format returns the formatted text. It never fails: when the formatter is
// missing, exits non-zero, times out or prints nothing, the original text is
// returned with a skipped result.
func (f *Formatter) Format(ctx context.Context, text string) (string, Result) {
	if f == nil {
		return text, Disabled()
	}
	result := Result{Status: StatusSkipped, Command: f.Command}

	path, err := exec.LookPath(f.Command)
	if err != nil {
		result.Reason = fmt.Sprintf("%s not found in PATH", f.Command)
		return text, result
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, f.Args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		result.Reason = failureReason(ctx, f, err, stderr.String())
		return text, result
	}

	formatted := stdout.String()
	if strings.TrimSpace(formatted) == "" {
		result.Reason = fmt.Sprintf("%s produced no output", f.Command)
		return text, result
	}

	result.Status = StatusApplied
	return formatted, result
}

func failureReason(ctx context.Context, f *Formatter, err error, stderr string) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out after %s", f.Command, f.Timeout)
	}
	if ctx.Err() != nil {
		return fmt.Sprintf("%s cancelled: %v", f.Command, ctx.Err())
	}
	msg := strings.TrimSpace(stderr)
	if first, _, ok := strings.Cut(msg, "\n"); ok {
		msg = first
	}
	if msg == "" {
		msg = err.Error()
	}
	return fmt.Sprintf("%s failed: %s", f.Command, msg)
}

// Probe reports whether the formatter can run, with its version line when
// it prints one.
func (f *Formatter) Probe(ctx context.Context) (string, error) {
	path, err := exec.LookPath(f.Command)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", f.Command)
	}
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return path, nil
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return version, nil
}
