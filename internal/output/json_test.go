package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdrvl/rvl/internal/csvio"
	"github.com/cmdrvl/rvl/internal/refusal"
)

func decodeDoc(t *testing.T, r Result) map[string]any {
	t.Helper()
	var buf []byte
	w := &sliceWriter{&buf}
	require.NoError(t, WriteJSON(w, r), "WriteJSON()")
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf, &doc), "decoding JSON output, raw = %s", buf)
	return doc
}

type sliceWriter struct{ buf *[]byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}

func TestWriteJSONRealChangeShape(t *testing.T) {
	r := Result{
		OldPath: "old.csv", NewPath: "new.csv",
		Threshold: 0.95, Tolerance: 1e-9,
		Alignment:  KeyMode,
		KeyColumn:  []byte("id"),
		DialectOld: &DialectInfo{Delimiter: ',', Escape: csvio.EscapeNone},
		Counts:     Counts{Known: true, CommonColumns: 2, Rows: 2, NumericColumns: 1, Cells: 2},
		Outcome:    RealChange,
		Coverage:   1.0, TotalChange: 50,
		Contributors: []ContributorView{
			{RowIDHuman: "1", RowIDJSON: "u8:1", Column: "amount", OldRaw: "100", NewRaw: "150", Delta: 50, Contribution: 50, Share: 1, CumulativeShare: 1},
		},
	}
	doc := decodeDoc(t, r)

	assert.Equal(t, "rvl.v0", doc["version"])
	assert.Equal(t, "REAL_CHANGE", doc["outcome"])

	alignment, ok := doc["alignment"].(map[string]any)
	require.True(t, ok, "alignment should be an object")
	assert.Equal(t, "key", alignment["mode"])
	assert.Equal(t, "u8:id", alignment["key_column"])

	contributors, ok := doc["contributors"].([]any)
	require.True(t, ok, "contributors should be an array")
	require.Len(t, contributors, 1)

	c, ok := contributors[0].(map[string]any)
	require.True(t, ok, "contributor entry should be an object")
	assert.Equal(t, "u8:1", c["row_id"])
	assert.Equal(t, "amount", c["column"])
	assert.Equal(t, float64(50), c["delta"])

	limits, ok := doc["limits"].(map[string]any)
	require.True(t, ok, "limits should be an object")
	assert.Equal(t, float64(MaxContributors), limits["max_contributors"])

	_, present := doc["refusal"]
	assert.False(t, present, "refusal field should be absent on a REAL_CHANGE result")
}

func TestWriteJSONNoRealChangeOmitsTotalChange(t *testing.T) {
	r := Result{
		OldPath: "old.csv", NewPath: "new.csv",
		Threshold: 0.95, Tolerance: 0.01,
		Counts:      Counts{Known: true, Rows: 1, NumericColumns: 1, Cells: 1},
		Outcome:     NoRealChange,
		MaxAbsDelta: 0.001,
	}
	doc := decodeDoc(t, r)
	metrics, ok := doc["metrics"].(map[string]any)
	require.True(t, ok, "metrics should be an object")

	_, present := metrics["total_change"]
	assert.False(t, present, "metrics should omit total_change on NO_REAL_CHANGE")
	assert.Equal(t, 0.001, metrics["max_abs_delta"])
}

func TestWriteJSONRefusalDetailMixedTypes(t *testing.T) {
	detail := refusal.WithDefaultNext(refusal.MixedTypes, refusal.Kind{
		CellFile: refusal.Old, CellRecord: 2, CellColumn: []byte("amount"), CellValue: []byte("abc"),
	}, refusal.RerunPaths{Old: "old.csv", New: "new.csv"})
	r := Result{OldPath: "old.csv", NewPath: "new.csv", Outcome: Refusal, RefusalDetail: &detail}
	doc := decodeDoc(t, r)

	assert.Equal(t, "REFUSAL", doc["outcome"])

	ref, ok := doc["refusal"].(map[string]any)
	require.True(t, ok, "refusal should be an object")
	assert.Equal(t, "E_MIXED_TYPES", ref["code"])

	d, ok := ref["detail"].(map[string]any)
	require.True(t, ok, "refusal.detail should be an object")
	assert.Equal(t, "old", d["file"])
	assert.Equal(t, float64(2), d["record"])
	assert.Equal(t, "u8:amount", d["column"])
	assert.Equal(t, "abc", d["value"])

	contributors, ok := doc["contributors"].([]any)
	require.True(t, ok, "contributors should be an array")
	assert.Empty(t, contributors, "contributors should be empty on refusal")
}

func TestWriteJSONDialectRefusalTiedDelimiters(t *testing.T) {
	detail := refusal.WithDefaultNext(refusal.Dialect, refusal.Kind{
		TiedDelimiters: []byte{',', ';'},
	}, refusal.RerunPaths{Old: "old.csv", New: "new.csv"})
	r := Result{OldPath: "old.csv", NewPath: "new.csv", Outcome: Refusal, RefusalDetail: &detail}
	doc := decodeDoc(t, r)

	ref, ok := doc["refusal"].(map[string]any)
	require.True(t, ok, "refusal should be an object")
	d, ok := ref["detail"].(map[string]any)
	require.True(t, ok, "refusal.detail should be an object")

	tied, ok := d["tied_delimiters"].([]any)
	require.True(t, ok, "tied_delimiters should be an array")
	require.Len(t, tied, 2)
	assert.Equal(t, "comma", tied[0])
	assert.Equal(t, "semicolon", tied[1])
}
