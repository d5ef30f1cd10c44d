package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/vburojevic/lcf/internal/filter"
	"github.com/vburojevic/lcf/internal/logcat"
)

func hintForOpen(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, fs.ErrNotExist) {
		return "Check the path; pass - to read stdin, e.g. `adb logcat -v threadtime | lcf -e 'tag:MyApp'`"
	}
	if errors.Is(err, fs.ErrPermission) {
		return "The capture is not readable by the current user"
	}
	if errors.Is(err, zstd.ErrMagicMismatch) || strings.Contains(err.Error(), "gzip") {
		return "The file looks compressed but could not be decoded; is it truncated?"
	}
	return ""
}

func hintForRead(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, logcat.ErrUnparseable) {
		return "Capture with `adb logcat -v threadtime` or feed lcf NDJSON"
	}
	return hintForOpen(err)
}

func hintForFilter(diags filter.Diagnostics) string {
	if len(diags) == 0 {
		return ""
	}
	for _, d := range diags {
		switch {
		case strings.HasPrefix(d.Message, "invalid regex"):
			return "Regex keys use Go RE2 syntax; quote patterns with spaces, e.g. message~:\"time ?out\""
		case strings.HasPrefix(d.Message, "unterminated"):
			return "Close the quote, or escape it with a backslash"
		case strings.Contains(d.Message, "operand"):
			return "AND/OR need a term on both sides; juxtaposed terms are already ANDed"
		}
	}
	return "Run `lcf check '<filter>'` to see how the filter parses, or `lcf keys` for the supported keys"
}
