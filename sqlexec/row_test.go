package sqlexec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowAccessors(t *testing.T) {
	r := Row{
		"name":    "  Steel ",
		"total":   float64(23),
		"density": "7.85",
		"active":  float64(1),
		"empty":   nil,
	}

	assert.Equal(t, "Steel", r.String("name"))
	assert.Equal(t, "", r.String("empty"))
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, "23", r.String("total"))

	assert.Equal(t, 23, r.Int("total"))
	assert.Equal(t, 0, r.Int("missing"))

	f, ok := r.Float("density")
	assert.True(t, ok)
	assert.InDelta(t, 7.85, f, 1e-9)
	_, ok = r.Float("name")
	assert.False(t, ok)

	assert.True(t, r.Bool("active"))
	assert.False(t, r.Bool("missing"))

	assert.True(t, r.Has("name"))
	assert.False(t, r.Has("empty"))
}

func TestRowFirst(t *testing.T) {
	r := Row{"UniqueKey": "", "uniqueKey": "KR-01"}
	assert.Equal(t, "KR-01", r.First("UniqueKey", "uniqueKey"))
	assert.Equal(t, "", r.First("nope"))
}

func TestRowsAffected(t *testing.T) {
	assert.Equal(t, 0, rowsAffected(nil))
	assert.Equal(t, 4, rowsAffected(float64(4)))
	assert.Equal(t, 3, rowsAffected([]any{float64(1), float64(2)}))
}
