package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZipLookup(t *testing.T) {
	l := NewZipLookup()

	_, ok := l.Get("g-1")
	assert.False(t, ok)

	assert.Equal(t, "02134", l.Set("g-1", "02134"))
	assert.Equal(t, "02134", l.Set("g-1", "94105"), "first synthesized ZIP wins")

	calls := 0
	gen := func() string {
		calls++
		return "60601"
	}

	zip, reused := l.Resolve("g-1", gen)
	assert.Equal(t, "02134", zip)
	assert.True(t, reused)
	assert.Equal(t, 0, calls)

	zip, reused = l.Resolve("g-2", gen)
	assert.Equal(t, "60601", zip)
	assert.False(t, reused)
	assert.Equal(t, 1, calls)

	assert.Equal(t, 2, l.Len())

	snap := l.Snapshot()
	snap["g-3"] = "00501"
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, map[string]string{"g-1": "02134", "g-2": "60601"}, l.Snapshot())
}
