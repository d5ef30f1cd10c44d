package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vburojevic/lcf/internal/domain"
	"github.com/vburojevic/lcf/internal/filter"
)

func decodeAll(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	var out []map[string]interface{}
	for {
		var m map[string]interface{}
		err := dec.Decode(&m)
		if err == nil {
			out = append(out, m)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	return out
}

func getByType(t *testing.T, items []map[string]interface{}, typ string) map[string]interface{} {
	t.Helper()
	for _, m := range items {
		if m["type"] == typ {
			return m
		}
	}
	require.FailNowf(t, "missing NDJSON type", "type=%s", typ)
	return nil
}

func TestNDJSONWriterContract_AllTypesHaveSchemaVersion(t *testing.T) {
	now := time.Date(2025, 12, 11, 10, 0, 0, 0, time.UTC)

	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf, "run-1")

	require.NoError(t, w.Write(&domain.LogEntry{
		Timestamp: now,
		Level:     domain.LogLevelInfo,
		PID:       123,
		Tag:       "MyApp",
		Message:   "hello",
	}))

	res := filter.Parse("tag:MyApp (")
	require.NoError(t, w.WriteDiagnostics(res.Text, res.Diagnostics))
	require.NoError(t, w.WriteCheck(res))

	summary := domain.NewLogSummary()
	summary.TotalCount = 1
	require.NoError(t, w.WriteSummary(summary, []AnnotatedPattern{{PatternMatch: PatternMatch{Pattern: "p", Count: 2}, IsNew: true}}))
	require.NoError(t, w.WriteDiscovery(NewAnalyzer(5).Discover([]domain.LogEntry{{Tag: "T"}})))
	require.NoError(t, w.WriteKeys(filter.DefaultKeys().Specs()))
	require.NoError(t, w.WriteCount(1, 2))
	require.NoError(t, w.WriteError("E_CODE", "something went wrong", ""))
	require.NoError(t, w.WriteInfo("info"))
	require.NoError(t, w.WriteWarning("warn"))
	require.NoError(t, w.WriteMetadata("0.0.0", "deadbeef", "2025-12-11"))

	items := decodeAll(t, buf)
	require.GreaterOrEqual(t, len(items), 10)

	for _, it := range items {
		require.Contains(t, it, "type")
		require.Contains(t, it, "schemaVersion")
		require.EqualValues(t, SchemaVersion, it["schemaVersion"])
	}

	for _, typ := range []string{"log", "diagnostic", "check", "summary", "count", "error", "info", "warning"} {
		require.Equal(t, "run-1", getByType(t, items, typ)["run_id"], typ)
	}

	summaryRec := getByType(t, items, "summary")
	require.Contains(t, summaryRec, "patterns")

	getByType(t, items, "discovery")
	getByType(t, items, "key")
	meta := getByType(t, items, "metadata")
	require.Equal(t, "deadbeef", meta["commit"])
}
