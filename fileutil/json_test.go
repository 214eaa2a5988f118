package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteJSON(t *testing.T) {
	type payload struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Tags  []string `json:"tags"`
	}

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "data.json")
		in := payload{Name: "widget", Count: 2, Tags: []string{"a", "b"}}
		require.NoError(t, WriteJSON(path, in, 2))

		var out payload
		require.NoError(t, ReadJSON(path, &out))
		assert.Equal(t, in, out)
	})

	t.Run("indent produces readable output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, WriteJSON(path, map[string]int{"a": 1}, 2))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n  \"a\": 1")
	})

	t.Run("zero indent writes compact output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, WriteJSON(path, map[string]int{"a": 1}, 0))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))
	})

	t.Run("read missing file fails", func(t *testing.T) {
		var v any
		assert.Error(t, ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &v))
	})

	t.Run("read invalid JSON fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

		var v any
		err := ReadJSON(path, &v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
	})
}

func TestReadWriteLines(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "lines.txt")
		in := []string{"first", "second", "", "fourth"}
		require.NoError(t, WriteLines(path, in))

		out, err := ReadLines(path)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("strips CRLF endings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "crlf.txt")
		require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\r\n"), 0o644))

		out, err := ReadLines(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, out)
	})

	t.Run("empty file yields no lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		out, err := ReadLines(path)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("read missing file fails", func(t *testing.T) {
		_, err := ReadLines(filepath.Join(t.TempDir(), "missing.txt"))
		assert.Error(t, err)
	})
}
