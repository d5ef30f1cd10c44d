package cli

import (
	"errors"
	"fmt"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so scripts always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	h := ""
	if len(hint) > 0 {
		h = hint[0]
	}
	return emitCLIError(globals, &CLIError{Code: code, Message: message, Hint: h})
}

// emitCLIError writes err and returns it. Errors that are not a CLIError
// are reported with code INTERNAL.
func emitCLIError(globals *Globals, err error) error {
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		cliErr = &CLIError{Code: "INTERNAL", Message: err.Error(), Err: err}
	}
	if globals == nil {
		return cliErr
	}
	if globals.Format == "ndjson" {
		if werr := globals.Emitter().WriteError(cliErr.Code, cliErr.Message, cliErr.Hint); werr != nil {
			globals.Debug("failed to write error: %v", werr)
		}
		return cliErr
	}
	fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", cliErr.Code, cliErr.Message)
	if cliErr.Hint != "" {
		fmt.Fprintf(globals.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return cliErr
}

// emitWarning respects format/quiet.
func emitWarning(globals *Globals, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		if err := globals.Emitter().WriteWarning(msg); err != nil {
			globals.Debug("failed to write warning: %v", err)
		}
		return
	}
	fmt.Fprintf(globals.Stderr, "Warning: %s\n", msg)
}
