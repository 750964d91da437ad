// Package output provides structured output and exit-code handling for the
// flakegen CLI.
//
// Every command renders through a Printer, which switches between
// human-readable text and JSON based on the --json flag:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, isTTY)
//	printer.Success(map[string]any{"message": "Initialized rust template in ."})
//	printer.Error(err)
//
// In JSON mode errors are written as {"error": "message", "code": N} and
// warnings as {"warning": "message"}.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: unknown template, bad arguments
//	output.ExitSystemError // 2: I/O failure, git failure
//	output.ExitConflict    // 3: templates conflict, flake.nix already exists
//
// Domain errors from the registry and flake packages are translated into
// *ExitError values at the command boundary so that both the JSON payload and
// the process exit status carry the same code.
package output
