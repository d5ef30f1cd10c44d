package cli

import (
	"github.com/vburojevic/lcf/internal/filter"
)

// CheckCmd shows the tokens, tree and diagnostics of a filter
type CheckCmd struct {
	Expr   string `arg:"" optional:"" help:"Filter expression (default: filter.default from config)"`
	Strict bool   `help:"Exit non-zero when the filter has problems"`
}

// Run executes the check command
func (c *CheckCmd) Run(globals *Globals) error {
	opts, err := globals.FilterOptions()
	if err != nil {
		return emitCLIError(globals, err)
	}
	res := filter.ParseWith(resolveExpr(globals, c.Expr), opts)
	if err := globals.Emitter().WriteCheck(res); err != nil {
		return err
	}
	if c.Strict && !res.Valid() {
		// The diagnostics were just printed; only the exit status is left.
		return &CLIError{
			Code:    "INVALID_FILTER",
			Message: res.Diagnostics.Err().Error(),
			Hint:    hintForFilter(res.Diagnostics),
			Err:     res.Diagnostics.Err(),
		}
	}
	return nil
}
