package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	err := s.Push(0x0abc)
	assert.NoError(err)
	assert.False(s.Empty())
	assert.Equal(1, len(s.Data))
	assert.Equal(uint16(0x0abc), s.Data[0])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.NoError(s.Push(0x0202))
	assert.NoError(s.Push(0x0404))

	val, ok := s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x0404), val)
	assert.Equal(1, len(s.Data))

	val, ok = s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x0202), val)
	assert.Equal(0, len(s.Data))
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Pop()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestStack_Peek(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.NoError(s.Push(0x0202))
	assert.NoError(s.Push(0x0404))

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x0404), val)
	assert.Equal(2, len(s.Data))
}

func TestStack_Peek_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Peek()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestStack_Full(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.False(s.Full())

	for i := range STACK_LIMIT {
		assert.NoError(s.Push(uint16(i)))
	}

	assert.True(s.Full())
	assert.False(s.Empty())

	err := s.Push(0xfff)
	assert.ErrorIs(err, ErrStackFull)
	assert.Equal(STACK_LIMIT, len(s.Data))

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(STACK_LIMIT-1), val)
}

func TestStack_Reset(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.NoError(s.Push(0x0202))
	assert.NoError(s.Push(0x0404))
	assert.Equal(2, len(s.Data))

	s.Reset()
	assert.True(s.Empty())
	assert.Equal(0, len(s.Data))

	s.Reset()
	assert.True(s.Empty())
}
