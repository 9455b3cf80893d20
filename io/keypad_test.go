package io

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypad_Down(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}

	assert.False(kp.Down(0x5))
	assert.NoError(kp.Press(0x5))
	assert.True(kp.Down(0x5))
	assert.True(kp.Down(0x15)) // masked to 4 bits
	assert.NoError(kp.Release(0x5))
	assert.False(kp.Down(0x5))

	assert.ErrorIs(kp.Press(0x10), ErrKeyInvalid)
	assert.ErrorIs(kp.Release(0xff), ErrKeyInvalid)

	assert.NoError(kp.Press(0xa))
	held := kp.Held()
	assert.True(held[0xa])
	assert.False(held[0xb])

	kp.Reset()
	assert.False(kp.Down(0xa))
}

func TestKeypad_NextKey(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}

	// Keys released before the wait are ignored.
	assert.NoError(kp.Press(0x1))
	assert.NoError(kp.Release(0x1))

	_, ok := kp.NextKey()
	assert.False(ok)
	_, ok = kp.NextKey()
	assert.False(ok)

	// A press alone does not complete the wait.
	assert.NoError(kp.Press(0xc))
	_, ok = kp.NextKey()
	assert.False(ok)

	assert.NoError(kp.Release(0xc))
	key, ok := kp.NextKey()
	assert.True(ok)
	assert.Equal(uint8(0xc), key)

	// The next wait starts over.
	assert.NoError(kp.Press(0x3))
	assert.NoError(kp.Release(0x3))
	_, ok = kp.NextKey()
	assert.False(ok)
}

func TestKeypad_NextKey_Held(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}

	// A key held when the wait begins counts once released.
	assert.NoError(kp.Press(0x7))
	_, ok := kp.NextKey()
	assert.False(ok)

	assert.NoError(kp.Release(0x7))
	assert.NoError(kp.Press(0x8))
	assert.NoError(kp.Release(0x8))

	key, ok := kp.NextKey()
	assert.True(ok)
	assert.Equal(uint8(0x7), key)
}

func TestKeypad_Concurrent(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}

	var wg sync.WaitGroup
	for key := range uint8(KEY_COUNT) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.NoError(kp.Press(key))
				kp.Down(key)
				assert.NoError(kp.Release(key))
			}
		}()
	}
	for range 100 {
		kp.NextKey()
	}
	wg.Wait()

	assert.Equal([KEY_COUNT]bool{}, kp.Held())
}

func TestKeypad_WaitOnPress(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{WaitOnPress: true}

	assert.NoError(kp.Press(0x3))

	_, ok := kp.NextKey()
	assert.False(ok)

	// A key held since before the wait does not complete it.
	assert.NoError(kp.Press(0x3))
	_, ok = kp.NextKey()
	assert.False(ok)

	// Releases are ignored.
	assert.NoError(kp.Release(0x3))
	_, ok = kp.NextKey()
	assert.False(ok)

	assert.NoError(kp.Press(0x7))
	key, ok := kp.NextKey()
	assert.True(ok)
	assert.Equal(uint8(0x7), key)

	kp.Reset()
	assert.True(kp.WaitOnPress)
}
