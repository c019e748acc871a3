package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Normalize(0, 0))
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, Normalize(3, 1000))
	assert.Equal(t, 40, Normalize(3, 20).Offset())
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 10}, 25)
	assert.Equal(t, 3, m.Pages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrev)

	m = NewMeta(Params{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, m.Pages)
	assert.False(t, m.HasNext)
	assert.False(t, m.HasPrev)
}
