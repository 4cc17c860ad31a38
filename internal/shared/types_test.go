package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	Name        Optional[string] `json:"name"`
	IsPublished Optional[bool]   `json:"is_published"`
	Count       Optional[int64]  `json:"count"`
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	var body patchBody
	require.NoError(t, json.Unmarshal([]byte(`{"is_published": false, "count": null}`), &body))

	assert.False(t, body.Name.Set, "omitted field must stay unset")

	assert.True(t, body.IsPublished.Set)
	assert.False(t, body.IsPublished.Null)
	assert.True(t, body.IsPublished.Present())
	assert.False(t, body.IsPublished.Value)

	assert.True(t, body.Count.Set)
	assert.True(t, body.Count.Null)
	assert.False(t, body.Count.Present())
}

func TestOptional_TypeMismatch(t *testing.T) {
	var body patchBody
	err := json.Unmarshal([]byte(`{"count": "seven"}`), &body)
	assert.Error(t, err)
}

func TestSome(t *testing.T) {
	o := Some("x")
	assert.True(t, o.Present())
	assert.Equal(t, "x", o.Value)
}
