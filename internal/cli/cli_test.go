package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/lcf/internal/config"
	"go.uber.org/zap"
)

const capture = `--------- beginning of main
03-14 09:26:53.123  1234  1250 I ActivityManager: Start proc 4321:com.example.app/u0a123 for activity
03-14 09:26:53.200  4321  4321 D MyApp   : onCreate
03-14 09:26:54.001  4321  4339 W MyApp   : slow frame: 48ms
03-14 09:26:55.500  4321  4321 E AndroidRuntime: FATAL EXCEPTION: main
03-14 09:26:56.000  4321  4321 E MyApp   : request 17 failed
03-14 09:26:57.000  4321  4321 E MyApp   : request 42 failed
`

func testGlobals(format string) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	g := &Globals{
		Format:        format,
		Level:         "verbose",
		Stdin:         strings.NewReader(""),
		Stdout:        &stdout,
		Stderr:        &stderr,
		Config:        config.Default(),
		Logger:        zap.NewNop(),
		Clock:         clock.NewMock(),
		RunID:         "run-1",
		ConfigSources: map[string]config.Source{},
	}
	return g, &stdout, &stderr
}

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.txt")
	require.NoError(t, os.WriteFile(path, []byte(capture), 0o644))
	return path
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func ofType(recs []map[string]interface{}, typ string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, r := range recs {
		if r["type"] == typ {
			out = append(out, r)
		}
	}
	return out
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var cliErr *CLIError
	require.True(t, errors.As(err, &cliErr), "expected CLIError, got %T", err)
	assert.Equal(t, code, cliErr.Code)
}

func TestFilterCmd(t *testing.T) {
	ctx := context.Background()

	t.Run("ndjson emits matching entries in order", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &FilterCmd{Expr: "tag:MyApp level:WARN", Files: []string{writeCapture(t)}}
		require.NoError(t, cmd.run(ctx, g))

		logs := ofType(records(t, stdout), "log")
		require.Len(t, logs, 3)
		assert.Equal(t, "WARN", logs[0]["level"])
		assert.Equal(t, "request 17 failed", logs[1]["message"])
		assert.Equal(t, "request 42 failed", logs[2]["message"])
		for _, l := range logs {
			assert.Equal(t, "MyApp", l["tag"])
			assert.Equal(t, "run-1", l["run_id"])
		}
	})

	t.Run("text prints logcat lines", func(t *testing.T) {
		g, stdout, _ := testGlobals("text")
		cmd := &FilterCmd{Expr: "AndroidRuntime", Files: []string{writeCapture(t)}}
		require.NoError(t, cmd.run(ctx, g))

		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "E AndroidRuntime: FATAL EXCEPTION: main")
	})

	t.Run("reads stdin when no files are given", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		g.Stdin = strings.NewReader(capture)
		cmd := &FilterCmd{Expr: "tag:ActivityManager"}
		require.NoError(t, cmd.run(ctx, g))

		logs := ofType(records(t, stdout), "log")
		require.Len(t, logs, 1)
		assert.Equal(t, "INFO", logs[0]["level"])
	})

	t.Run("count", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &FilterCmd{Expr: "level:ERROR", Files: []string{writeCapture(t)}, Count: true}
		require.NoError(t, cmd.run(ctx, g))

		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, "count", recs[0]["type"])
		assert.Equal(t, float64(3), recs[0]["matched"])
		assert.Equal(t, float64(6), recs[0]["total"])
	})

	t.Run("text count", func(t *testing.T) {
		g, stdout, _ := testGlobals("text")
		cmd := &FilterCmd{Expr: "level:ERROR", Files: []string{writeCapture(t)}, Count: true}
		require.NoError(t, cmd.run(ctx, g))
		assert.Equal(t, "3\n", stdout.String())
	})

	t.Run("invalid filter falls back to the partial tree", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &FilterCmd{Expr: "tag:MyApp AND", Files: []string{writeCapture(t)}}
		require.NoError(t, cmd.run(ctx, g))

		recs := records(t, stdout)
		diags := ofType(recs, "diagnostic")
		require.Len(t, diags, 1)
		assert.Equal(t, "missing right operand after AND", diags[0]["message"])
		assert.Len(t, ofType(recs, "log"), 4)
	})

	t.Run("strict rejects an invalid filter", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &FilterCmd{Expr: "tag:MyApp AND", Files: []string{writeCapture(t)}, Strict: true}
		err := cmd.run(ctx, g)
		requireCode(t, err, "INVALID_FILTER")

		recs := records(t, stdout)
		assert.Len(t, ofType(recs, "diagnostic"), 1)
		errs := ofType(recs, "error")
		require.Len(t, errs, 1)
		assert.Equal(t, "INVALID_FILTER", errs[0]["code"])
		assert.NotEmpty(t, errs[0]["hint"])
		assert.Empty(t, ofType(recs, "log"))
	})

	t.Run("exclude drops messages", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &FilterCmd{Expr: "tag:MyApp", Files: []string{writeCapture(t)}, Exclude: []string{"^request"}}
		require.NoError(t, cmd.run(ctx, g))
		assert.Len(t, ofType(records(t, stdout), "log"), 2)
	})

	t.Run("uses the configured default filter", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		g.Config.Filter.Default = "tag:ActivityManager"
		cmd := &FilterCmd{Files: []string{writeCapture(t)}}
		require.NoError(t, cmd.run(ctx, g))
		assert.Len(t, ofType(records(t, stdout), "log"), 1)
	})

	t.Run("workers keep input order", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &FilterCmd{Files: []string{writeCapture(t)}, Workers: 3}
		require.NoError(t, cmd.run(ctx, g))

		logs := ofType(records(t, stdout), "log")
		require.Len(t, logs, 6)
		assert.Equal(t, "ActivityManager", logs[0]["tag"])
		assert.Equal(t, "request 42 failed", logs[5]["message"])
	})

	t.Run("global level applies", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		g.Level = "error"
		cmd := &FilterCmd{Files: []string{writeCapture(t)}}
		require.NoError(t, cmd.run(ctx, g))
		assert.Len(t, ofType(records(t, stdout), "log"), 3)
	})

	t.Run("missing file", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &FilterCmd{Files: []string{filepath.Join(t.TempDir(), "nope.txt")}}
		err := cmd.run(ctx, g)
		requireCode(t, err, "OPEN_FAILED")

		errs := ofType(records(t, stdout), "error")
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0]["hint"], "pass -")
	})

	t.Run("invalid level", func(t *testing.T) {
		g, _, stderr := testGlobals("text")
		g.Level = "loud"
		err := (&FilterCmd{}).run(ctx, g)
		requireCode(t, err, "INVALID_LEVEL")
		assert.Contains(t, stderr.String(), "Error [INVALID_LEVEL]: unknown log level: loud")
	})
}

func TestCheckCmd(t *testing.T) {
	t.Run("valid filter", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		require.NoError(t, (&CheckCmd{Expr: "a OR b c"}).Run(g))

		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, "check", recs[0]["type"])
		assert.Equal(t, true, recs[0]["valid"])
		assert.NotEmpty(t, recs[0]["tree"])
		assert.NotEmpty(t, recs[0]["tokens"])
	})

	t.Run("invalid filter reports diagnostics", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		require.NoError(t, (&CheckCmd{Expr: "(tag:MyApp"}).Run(g))

		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, false, recs[0]["valid"])
		diags, ok := recs[0]["diagnostics"].([]interface{})
		require.True(t, ok)
		assert.Len(t, diags, 1)
	})

	t.Run("strict fails without a second report", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		err := (&CheckCmd{Expr: "OR", Strict: true}).Run(g)
		requireCode(t, err, "INVALID_FILTER")
		assert.Empty(t, ofType(records(t, stdout), "error"))
	})

	t.Run("text", func(t *testing.T) {
		g, stdout, _ := testGlobals("text")
		require.NoError(t, (&CheckCmd{Expr: "tag:MyApp"}).Run(g))
		assert.Contains(t, stdout.String(), "OK")
	})
}

func TestKeysCmd(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	g.Config.Filter.Keys = map[string]string{"tag": "exact"}
	require.NoError(t, (&KeysCmd{}).Run(g))

	modes := map[string]interface{}{}
	for _, r := range ofType(records(t, stdout), "key") {
		modes[r["name"].(string)] = r["mode"]
	}
	assert.Equal(t, "exact", modes["tag"])
	assert.Equal(t, "contains", modes["message"])
	assert.Contains(t, modes, "level")
	assert.Nil(t, modes["level"])

	t.Run("bad mode in config", func(t *testing.T) {
		g, _, _ := testGlobals("ndjson")
		g.Config.Filter.Keys = map[string]string{"tag": "fuzzy"}
		requireCode(t, (&KeysCmd{}).Run(g), "INVALID_CONFIG")
	})
}

func TestStatsCmd(t *testing.T) {
	ctx := context.Background()

	t.Run("summary with patterns", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &StatsCmd{Expr: "tag:MyApp", Files: []string{writeCapture(t)}}
		require.NoError(t, cmd.run(ctx, g))

		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, "summary", recs[0]["type"])
		summary := recs[0]["summary"].(map[string]interface{})
		assert.Equal(t, float64(4), summary["matched"])
		assert.Equal(t, true, summary["has_errors"])

		patterns := recs[0]["patterns"].([]interface{})
		require.Len(t, patterns, 1)
		p := patterns[0].(map[string]interface{})
		assert.Equal(t, "request <n> failed", p["pattern"])
		assert.Equal(t, float64(2), p["count"])
		assert.Equal(t, false, p["is_new"])
	})

	t.Run("remember marks new patterns once", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "patterns.json")
		run := func() map[string]interface{} {
			g, stdout, _ := testGlobals("ndjson")
			cmd := &StatsCmd{Files: []string{writeCapture(t)}, Remember: true, PatternFile: store}
			require.NoError(t, cmd.run(ctx, g))
			recs := records(t, stdout)
			require.Len(t, recs, 1)
			patterns := recs[0]["patterns"].([]interface{})
			require.Len(t, patterns, 1)
			return patterns[0].(map[string]interface{})
		}

		first := run()
		assert.Equal(t, true, first["is_new"])
		assert.FileExists(t, store)

		second := run()
		assert.Equal(t, false, second["is_new"])
		assert.Equal(t, float64(4), second["total_count"])
	})

	t.Run("corrupt pattern file", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "patterns.json")
		require.NoError(t, os.WriteFile(store, []byte("{nope"), 0o644))

		g, _, _ := testGlobals("ndjson")
		cmd := &StatsCmd{Files: []string{writeCapture(t)}, Remember: true, PatternFile: store}
		requireCode(t, cmd.run(ctx, g), "PATTERN_STORE")
	})
}

func TestDiscoverCmd(t *testing.T) {
	ctx := context.Background()

	t.Run("lists tags by count", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		cmd := &DiscoverCmd{Files: []string{writeCapture(t)}, TopN: 20}
		require.NoError(t, cmd.run(ctx, g))

		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, "discovery", recs[0]["type"])
		assert.Equal(t, float64(6), recs[0]["total_count"])
		tags := recs[0]["tags"].([]interface{})
		require.NotEmpty(t, tags)
		top := tags[0].(map[string]interface{})
		assert.Equal(t, "MyApp", top["name"])
		assert.Equal(t, float64(4), top["count"])
	})

	t.Run("no entries", func(t *testing.T) {
		g, _, stderr := testGlobals("text")
		cmd := &DiscoverCmd{Expr: "tag:Nothing", Files: []string{writeCapture(t)}, TopN: 20}
		requireCode(t, cmd.run(ctx, g), "NO_ENTRIES")
		assert.Contains(t, stderr.String(), "Error [NO_ENTRIES]")
	})
}

func TestConfigCmd(t *testing.T) {
	t.Run("show ndjson", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		g.ConfigSources = map[string]config.Source{"format": config.SourceFlag}
		require.NoError(t, (&ConfigShowCmd{}).Run(g))

		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, "config", recs[0]["type"])
		effective := recs[0]["effective"].(map[string]interface{})
		assert.Equal(t, "ndjson", effective["format"])
		sources := recs[0]["sources"].(map[string]interface{})
		assert.Equal(t, "flag", sources["format"])
	})

	t.Run("show text marks non-default sources", func(t *testing.T) {
		g, stdout, _ := testGlobals("text")
		g.ConfigSources = map[string]config.Source{"format": config.SourceEnv, "level": config.SourceDefault}
		require.NoError(t, (&ConfigShowCmd{}).Run(g))

		out := stdout.String()
		assert.Contains(t, out, "format:     text (env)")
		assert.Contains(t, out, "level:      verbose\n")
		assert.Contains(t, out, "workers:        4")
	})

	t.Run("path", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		require.NoError(t, (&ConfigPathCmd{}).Run(g))
		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, "config_path", recs[0]["type"])
	})

	t.Run("generated sample loads as the defaults", func(t *testing.T) {
		g, stdout, _ := testGlobals("text")
		require.NoError(t, (&ConfigGenerateCmd{}).Run(g))

		path := filepath.Join(t.TempDir(), ".lcf.yaml")
		require.NoError(t, os.WriteFile(path, stdout.Bytes(), 0o644))
		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)

		def := config.Default()
		assert.Equal(t, def.Format, cfg.Format)
		assert.Equal(t, def.Level, cfg.Level)
		assert.Equal(t, def.Filter.Workers, cfg.Filter.Workers)
		assert.Equal(t, def.Input.PollInterval, cfg.Input.PollInterval)
		assert.Equal(t, def.Stats.TopN, cfg.Stats.TopN)
		assert.Equal(t, def.UI.BufferSize, cfg.UI.BufferSize)
	})
}

func TestVersionCmd(t *testing.T) {
	g, stdout, _ := testGlobals("ndjson")
	require.NoError(t, (&VersionCmd{}).Run(g))

	recs := records(t, stdout)
	require.Len(t, recs, 1)
	assert.Equal(t, "metadata", recs[0]["type"])
	assert.Equal(t, Version, recs[0]["version"])
}

func TestCompletionCmd(t *testing.T) {
	for shell, want := range map[string]string{
		"bash": "complete -F _lcf_completions lcf",
		"zsh":  "compdef _lcf lcf",
		"fish": "complete -c lcf",
	} {
		t.Run(shell, func(t *testing.T) {
			g, stdout, _ := testGlobals("text")
			require.NoError(t, (&CompletionCmd{Shell: shell}).Run(g))
			assert.Contains(t, stdout.String(), want)
		})
	}
}

func TestEmitCLIError(t *testing.T) {
	t.Run("text with hint", func(t *testing.T) {
		g, stdout, stderr := testGlobals("text")
		err := outputErrorCommon(g, "BAD", "it broke", "try again")
		requireCode(t, err, "BAD")
		assert.Empty(t, stdout.String())
		assert.Equal(t, "Error [BAD]: it broke\nHint: try again\n", stderr.String())
	})

	t.Run("plain errors become INTERNAL", func(t *testing.T) {
		g, stdout, _ := testGlobals("ndjson")
		err := emitCLIError(g, errors.New("boom"))
		requireCode(t, err, "INTERNAL")

		recs := records(t, stdout)
		require.Len(t, recs, 1)
		assert.Equal(t, "error", recs[0]["type"])
		assert.Equal(t, "boom", recs[0]["message"])
	})

	t.Run("wrapped cause stays reachable", func(t *testing.T) {
		cause := errors.New("root cause")
		g, _, _ := testGlobals("ndjson")
		err := emitCLIError(g, &CLIError{Code: "X", Message: "wrapped", Err: cause})
		assert.ErrorIs(t, err, cause)
	})
}

func TestEmitWarning(t *testing.T) {
	g, _, stderr := testGlobals("text")
	emitWarning(g, "careful")
	assert.Equal(t, "Warning: careful\n", stderr.String())

	g, stdout, _ := testGlobals("ndjson")
	g.Quiet = true
	emitWarning(g, "careful")
	assert.Empty(t, stdout.String())
}

func TestRootCommandsFormatted(t *testing.T) {
	src, err := os.ReadFile("root.go")
	require.NoError(t, err)
	formatted, err := format.Source(src)
	require.NoError(t, err)
	assert.Equal(t, string(formatted), string(src))
}
