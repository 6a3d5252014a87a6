package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

var scraped = []string{"a", "b", "c"}

func TestApply_Index(t *testing.T) {
	res := Apply(scraped, "[0]")
	require.False(t, res.Failed())
	require.Equal(t, "a", res.Value)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `"a"`, string(b))
}

func TestApply_SliceAndFunctions(t *testing.T) {
	res := Apply(scraped, "[1:]")
	require.Equal(t, []any{"b", "c"}, res.Value)

	res = Apply(scraped, "length(@)")
	require.Equal(t, float64(3), res.Value)

	res = Apply(scraped, "[?contains(@, 'b')]")
	require.Equal(t, []any{"b"}, res.Value)
}

func TestApply_MissingValueIsNull(t *testing.T) {
	res := Apply(scraped, "[10]")
	require.False(t, res.Failed())
	require.Nil(t, res.Value)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	require.Equal(t, "null", string(b))
}

func TestApply_MalformedExpression(t *testing.T) {
	res := Apply(scraped, "[0")
	require.True(t, res.Failed())
	require.NotEmpty(t, res.Err)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	require.Contains(t, body, "error")
}

func TestApply_EvaluationError(t *testing.T) {
	res := Apply(scraped, "abs(@)")
	require.True(t, res.Failed())
}
