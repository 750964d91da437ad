package output

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError(t *testing.T) {
	cause := errors.New("permission denied")

	tests := []struct {
		name     string
		err      *ExitError
		wantCode int
		wantMsg  string
	}{
		{"user", NewUserError(`template "cobol" not found`), ExitUserError, `template "cobol" not found`},
		{"user with cause", NewUserErrorWithCause("bad template", cause), ExitUserError, "bad template"},
		{"system", NewSystemError("writing flake.nix failed"), ExitSystemError, "writing flake.nix failed"},
		{"system with cause", NewSystemErrorWithCause("git add failed", cause), ExitSystemError, "git add failed"},
		{"conflict", NewConflictError("flake.nix already exists"), ExitConflict, "flake.nix already exists"},
		{"conflict with cause", NewConflictErrorWithCause("input conflict", cause), ExitConflict, "input conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantMsg)
			}
			if tt.err.Cause != nil && !errors.Is(tt.err, cause) {
				t.Error("errors.Is should find the cause")
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"user", NewUserError("bad input"), ExitUserError},
		{"system", NewSystemError("io"), ExitSystemError},
		{"conflict", NewConflictError("exists"), ExitConflict},
		{"wrapped conflict", fmt.Errorf("init: %w", NewConflictError("exists")), ExitConflict},
		{"plain error", errors.New("boom"), ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
