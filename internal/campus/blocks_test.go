package campus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	b, ok := Lookup("  cse block ")
	assert.True(t, ok)
	assert.Equal(t, Block{Name: "CSE Block", X: 300, Y: 520}, b)

	_, ok = Lookup("Cafeteria")
	assert.False(t, ok)
}

func TestBlocksReturnsCopy(t *testing.T) {
	got := Blocks()
	assert.Len(t, got, 9)
	got[0].Name = "changed"
	assert.Equal(t, "A Block", Blocks()[0].Name)
}
