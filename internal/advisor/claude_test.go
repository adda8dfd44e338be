package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopperhq/hopper/internal/mapping"
)

func TestParseModelAnswer(t *testing.T) {
	raw := `Here is the mapping:
{"columns":[
  {"source":"Summary","target":"name","confidence":0.98},
  {"source":"Issue Type","target":"type","confidence":0.9},
  {"source":"Watchers","target":"","confidence":0.1}
],"notes":["Watchers looks like a people list"],"warnings":[]}`

	s, err := parseModelAnswer(raw, []string{"Summary", "Issue Type", "Watchers"})
	require.NoError(t, err)
	require.Len(t, s.Mapping, 3)

	assert.Equal(t, mapping.FieldName, s.Mapping[0].Target)
	assert.Equal(t, mapping.FieldType, s.Mapping[1].Target)
	assert.Equal(t, mapping.FieldNone, s.Mapping[2].Target)
	assert.InDelta(t, 0.98, s.Confidence["Summary"], 0.001)
	assert.Len(t, s.Notes, 1)
	assert.Empty(t, s.Warnings)
}

func TestParseModelAnswerDropsInventedColumns(t *testing.T) {
	raw := `{"columns":[
  {"source":"Summary","target":"name","confidence":0.9},
  {"source":"Imaginary","target":"owner","confidence":0.9}
]}`

	s, err := parseModelAnswer(raw, []string{"Summary"})
	require.NoError(t, err)
	require.Len(t, s.Mapping, 1)
	assert.Equal(t, "Summary", s.Mapping[0].Source)
}

func TestParseModelAnswerCoversSkippedHeaders(t *testing.T) {
	raw := `{"columns":[{"source":"Summary","target":"name","confidence":0.9}]}`

	s, err := parseModelAnswer(raw, []string{"Summary", "Created"})
	require.NoError(t, err)
	require.Len(t, s.Mapping, 2)
	assert.Equal(t, mapping.FieldNone, s.Mapping[1].Target)
	assert.Equal(t, 0.0, s.Confidence["Created"])
}

func TestParseModelAnswerUnknownTargetDegrades(t *testing.T) {
	raw := `{"columns":[
  {"source":"Summary","target":"name","confidence":0.9},
  {"source":"Due","target":"due_date","confidence":0.8}
]}`

	s, err := parseModelAnswer(raw, []string{"Summary", "Due"})
	require.NoError(t, err)
	assert.Equal(t, mapping.FieldNone, s.Mapping[1].Target)
}

func TestParseModelAnswerClampsConfidence(t *testing.T) {
	raw := `{"columns":[{"source":"Summary","target":"name","confidence":3.5}]}`

	s, err := parseModelAnswer(raw, []string{"Summary"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Confidence["Summary"])
}

func TestParseModelAnswerWarnsWithoutName(t *testing.T) {
	raw := `{"columns":[{"source":"Status","target":"status","confidence":0.9}]}`

	s, err := parseModelAnswer(raw, []string{"Status"})
	require.NoError(t, err)
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "name")
}

func TestParseModelAnswerRejectsGarbage(t *testing.T) {
	_, err := parseModelAnswer("I could not figure out the columns, sorry!", []string{"A"})
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("prose before {\"a\":1} prose after"))
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
	assert.Equal(t, "no braces", extractJSON("no braces"))
}
