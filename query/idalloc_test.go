package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocator(t *testing.T) {
	t.Run("allocates sequentially from zero", func(t *testing.T) {
		ids := NewIDAllocator()
		assert.Equal(t, 0, ids.Allocate())
		assert.Equal(t, 1, ids.Allocate())
		assert.Equal(t, 2, ids.Allocate())
	})

	t.Run("reuses freed ids before minting new ones", func(t *testing.T) {
		ids := NewIDAllocator()
		a := ids.Allocate()
		b := ids.Allocate()
		ids.Free(a)
		ids.Free(b)

		assert.Equal(t, b, ids.Allocate())
		assert.Equal(t, a, ids.Allocate())
		assert.Equal(t, 2, ids.Allocate())
	})

	t.Run("unfreed ids are never handed out again", func(t *testing.T) {
		ids := NewIDAllocator()
		a := ids.Allocate()
		b := ids.Allocate()
		ids.Free(a)

		assert.Equal(t, a, ids.Allocate())
		assert.NotEqual(t, b, ids.Allocate())
	})
}
