package errors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(400, TypeInvalidDate, "Invalid Date", "bad from", "/api/reports/export").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeInvalidDate, got["type"])
	assert.Equal(t, "Invalid Date", got["title"])
	assert.Equal(t, float64(400), got["status"])
	assert.Equal(t, "bad from", got["detail"])
	assert.Equal(t, "abc", got["trace_id"])
}

func TestProblemDetails_StandardMembersWin(t *testing.T) {
	pd := NewProblemDetails(500, TypeInternal, "Internal Server Error", "", "").
		WithExtension("status", 200)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(500), got["status"])
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
}

func TestProblemDetails_WithExtensionOnZeroValue(t *testing.T) {
	pd := &ProblemDetails{}
	pd.WithExtension("k", "v")
	assert.Equal(t, "v", pd.Extensions["k"])
}

func TestAPIError(t *testing.T) {
	err := NewWithDetails(503, "SERVICE_UNAVAILABLE", "store down", map[string]string{"store": "sqlite"})
	assert.Equal(t, "store down", err.Error())
	assert.NotNil(t, err.Details)

	p := ErrPanic("boom")
	assert.Equal(t, 500, p.StatusCode)
	assert.Equal(t, "boom", p.Details)
}
