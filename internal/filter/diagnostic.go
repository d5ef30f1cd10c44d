package filter

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Diagnostic is a non-fatal note about malformed filter text
type Diagnostic struct {
	Offset  int    `json:"offset"`
	Message string `json:"message"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at %d", d.Message, d.Offset)
}

// Diagnostics is the list of notes produced while lexing and parsing
type Diagnostics []Diagnostic

// Err folds the diagnostics into a single error, or nil when there are none.
func (ds Diagnostics) Err() error {
	var result *multierror.Error
	for _, d := range ds {
		result = multierror.Append(result, d)
	}
	return result.ErrorOrNil()
}

func (ds Diagnostics) sorted() Diagnostics {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Offset < ds[j].Offset })
	return ds
}
