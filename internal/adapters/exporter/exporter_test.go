package exporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONExporter().Export(&buf, sampleResult()))

	output := buf.String()
	assert.Contains(t, output, "\n  \"totalMessages\": 14,")
	assert.Contains(t, output, "😀")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "bob", decoded["mostActiveUser"])

	buf.Reset()
	require.NoError(t, NewJSONExporter().Export(&buf, nil))
	assert.Equal(t, "{}\n", buf.String())
}

func TestExcelExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().Export(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetUsers, SheetEmojis, SheetTimeline, SheetWords}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total messages", "14"}, summary[1])
	assert.Equal(t, []string{"Most active user", "bob"}, summary[2])

	users, err := f.GetRows(SheetUsers)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"bob", "9"}, users[1])

	timeline, err := f.GetRows(SheetTimeline)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, []string{"2024-01-01", "2", "20"}, timeline[1])

	words, err := f.GetRows(SheetWords)
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza", "4"}, words[1])
}

func TestExcelExporter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().Export(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetEmojis)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
