package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintYAML(t *testing.T) {
	data := struct {
		Name  string `yaml:"name"`
		Value int    `yaml:"value"`
	}{
		Name:  "test",
		Value: 42,
	}

	var buf bytes.Buffer
	err := PrintYAML(&buf, data)
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, "name: test")
	assert.Contains(t, result, "value: 42")
}

func TestPrintYAMLArray(t *testing.T) {
	data := []struct {
		Name string `yaml:"name"`
	}{
		{Name: "a"},
		{Name: "b"},
	}

	var buf bytes.Buffer
	err := PrintYAML(&buf, data)
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, "- name: a")
	assert.Contains(t, result, "- name: b")
}
