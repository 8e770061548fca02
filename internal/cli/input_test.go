package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSuggester map[string][]string

func (m mapSuggester) Suggestions(_ context.Context, q string) ([]string, error) {
	if q == "fail" {
		return nil, errors.New("index down")
	}
	return m[q], nil
}

func TestQueryRendersTable(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandler(mapSuggester{"caf": {"café", "cafeteria"}}, 0, nil, &out)

	require.NoError(t, h.Query(context.Background(), "caf"))
	got := out.String()
	assert.Contains(t, got, "café")
	assert.Contains(t, got, "cafeteria")
	assert.Less(t, strings.Index(got, "café"), strings.Index(got, "cafeteria"))
}

func TestQueryNoSuggestions(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandler(mapSuggester{}, 0, nil, &out)

	require.NoError(t, h.Query(context.Background(), "zzz"))
	assert.Contains(t, out.String(), `no suggestions for "zzz"`)
}

func TestQueryError(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandler(mapSuggester{}, 0, nil, &out)

	assert.Error(t, h.Query(context.Background(), "fail"))
}

func TestStartLoop(t *testing.T) {
	in := strings.NewReader("caf\n\nfail\njar")
	var out bytes.Buffer
	h := NewInputHandler(mapSuggester{"caf": {"café"}, "jar": {"jardin"}}, 0, in, &out)

	require.NoError(t, h.Start(context.Background()))
	got := out.String()
	assert.Contains(t, got, "café")
	// last line has no trailing newline
	assert.Contains(t, got, "jardin")
	assert.Equal(t, 3, h.requestCount)
}
