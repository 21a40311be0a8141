package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pois.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "Tour Eiffel", "lat": 48.8584, "lng": 2.2945},
		{"name": "Louvre", "lat": 48.8606, "lng": 2.3376}
	]`), 0o644))

	pois, err := readPayload(path)
	require.NoError(t, err)
	require.Len(t, pois, 2)
	assert.Equal(t, "Tour Eiffel", pois[0]["name"])
}

func TestReadPayload_NotAnArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pois.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "not a list"}`), 0o644))

	_, err := readPayload(path)
	assert.Error(t, err)
}

func TestReadPayload_MissingFile(t *testing.T) {
	_, err := readPayload(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
