package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestPrintJSON(t *testing.T) {
	data := testStruct{Name: "test", Value: 42}

	var buf bytes.Buffer
	err := PrintJSON(&buf, data)
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, `"name": "test"`)
	assert.Contains(t, result, `"value": 42`)
}

func TestPrintJSONArray(t *testing.T) {
	data := []testStruct{
		{Name: "a", Value: 1},
		{Name: "b", Value: 2},
	}

	var buf bytes.Buffer
	err := PrintJSON(&buf, data)
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, `"name": "a"`)
	assert.Contains(t, result, `"name": "b"`)
}
