package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRankList(t *testing.T) {
	assert.Equal(t, []uint16{}, CreateRankList(0))
	assert.Equal(t, []uint16{1, 2, 3}, CreateRankList(3))
}

func TestParseTOMLWithRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":9000\"\nquery_timeout_ms = 10\n[elastic]\naddresses = [\"http://a\", 3]\n"), 0644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)

	server, ok := ExtractSection(data, "server")
	require.True(t, ok)
	addr, ok := ExtractString(server, "addr")
	assert.True(t, ok)
	assert.Equal(t, ":9000", addr)
	timeout, ok := ExtractInt64(server, "query_timeout_ms")
	assert.True(t, ok)
	assert.Equal(t, 10, timeout)

	elastic, ok := ExtractSection(data, "elastic")
	require.True(t, ok)
	addrs, ok := ExtractStrings(elastic, "addresses")
	assert.True(t, ok)
	assert.Equal(t, []string{"http://a"}, addrs)

	_, ok = ExtractString(server, "missing")
	assert.False(t, ok)
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, "x.db"), ExpandPath("~/x.db"))
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	res := CheckDirStatus(dir)
	assert.NoError(t, res.Error)
	assert.True(t, res.Exists)
	assert.True(t, res.Writable)
	assert.True(t, FileExists(dir))
}
