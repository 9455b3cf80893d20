package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("stack empty", From("stack empty"))
	assert.Equal("bad opcode 0x00ee", From("bad opcode 0x%04x", 0xee))
	assert.Equal("line 3 oops", From("line %d %v", 3, "oops"))
}
