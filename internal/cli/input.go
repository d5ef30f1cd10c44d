package cli

import (
	"context"
	"io"

	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/logcat"
)

// inputSource returns the inputs to read, stdin when none were given
func inputSource(files []string) []string {
	if len(files) == 0 {
		return []string{"-"}
	}
	return files
}

// readerOptions builds logcat reader options from config
func readerOptions(globals *Globals, follow bool) (logcat.ReaderOptions, error) {
	opts := logcat.ReaderOptions{
		Follow: follow,
		Clock:  globals.Clock,
		Logger: globals.Logger,
	}
	if globals.Config == nil {
		return opts, nil
	}
	poll, err := globals.Config.PollInterval()
	if err != nil {
		return opts, &CLIError{Code: "INVALID_CONFIG", Message: err.Error(), Err: err}
	}
	opts.PollInterval = poll
	opts.Year = globals.Config.Input.Year
	return opts, nil
}

// openInput opens path, reading "-" from globals.Stdin
func openInput(globals *Globals, path string) (io.ReadCloser, error) {
	if path == "-" && globals.Stdin != nil {
		return logcat.Decompress(globals.Stdin)
	}
	return logcat.Open(path)
}

// streamInputs streams every input in order through fn. Only the last
// input is followed.
func streamInputs(ctx context.Context, globals *Globals, files []string, follow bool, fn func(*domain.LogEntry) error) (logcat.Stats, error) {
	var total logcat.Stats
	inputs := inputSource(files)
	for i, path := range inputs {
		opts, err := readerOptions(globals, follow && i == len(inputs)-1)
		if err != nil {
			return total, err
		}
		rc, err := openInput(globals, path)
		if err != nil {
			return total, &CLIError{Code: "OPEN_FAILED", Message: err.Error(), Hint: hintForOpen(err), Err: err}
		}
		globals.Debug("reading %s", path)

		rd := logcat.NewReader(rc, opts)
		err = rd.Stream(ctx, fn)
		if cerr := rc.Close(); cerr != nil {
			globals.Debug("failed to close %s: %v", path, cerr)
		}
		st := rd.Stats()
		total.Lines += st.Lines
		total.Entries += st.Entries
		total.Skipped += st.Skipped
		total.Unparseable += st.Unparseable
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// readInputs loads all entries of all inputs
func readInputs(ctx context.Context, globals *Globals, files []string) ([]domain.LogEntry, logcat.Stats, error) {
	var entries []domain.LogEntry
	st, err := streamInputs(ctx, globals, files, false, func(e *domain.LogEntry) error {
		entries = append(entries, *e)
		return nil
	})
	return entries, st, err
}
