// Package io provides the devices attached to the CHIP-8 interpreter:
// the hexadecimal keypad, the delay and sound timers, the random number
// source, and the ROM loader.
package io

import (
	"sync"

	"github.com/ezrec/chip8/cpu"
)

const (
	KEY_COUNT = 16 // Keys 0x0-0xF.
)

// Keypad is the sixteen key hexadecimal keypad.
//
// Frontends call Press and Release from their event loop; the interpreter
// polls Down and NextKey.
//
// By default a key wait completes on a press followed by a release, as the
// original COSMAC VIP interpreter did, rather than on the press alone. Set
// WaitOnPress to complete the wait as soon as a key goes down.
type Keypad struct {
	WaitOnPress bool // Complete key waits on press rather than release.

	mutex    sync.Mutex
	down     [KEY_COUNT]bool
	armed    bool
	released []uint8
}

var _ cpu.Keypad = (*Keypad)(nil)

// Reset releases all keys and disarms any pending wait.
func (kp *Keypad) Reset() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	clear(kp.down[:])
	kp.armed = false
	kp.released = nil
}

// Press a key.
func (kp *Keypad) Press(key uint8) (err error) {
	return kp.Set(key, true)
}

// Release a key.
func (kp *Keypad) Release(key uint8) (err error) {
	return kp.Set(key, false)
}

// Set the state of a key. While a wait is armed, releasing a held key (or
// pressing a key, with WaitOnPress) queues it for NextKey.
func (kp *Keypad) Set(key uint8, down bool) (err error) {
	if int(key) >= KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if kp.armed {
		if kp.WaitOnPress && down && !kp.down[key] {
			kp.released = append(kp.released, key)
		} else if !kp.WaitOnPress && kp.down[key] && !down {
			kp.released = append(kp.released, key)
		}
	}
	kp.down[key] = down

	return
}

// Down reports whether a key is held.
func (kp *Keypad) Down(key uint8) bool {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	return kp.down[key&0xf]
}

// Held returns the state of every key.
func (kp *Keypad) Held() (down [KEY_COUNT]bool) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	return kp.down
}

// NextKey returns a key that was pressed and released (or only pressed,
// with WaitOnPress) since the wait began. The first call of a wait arms the
// keypad and never returns a key, so keys already held when the wait starts
// must be released first.
func (kp *Keypad) NextKey() (key uint8, ok bool) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if !kp.armed {
		kp.armed = true
		kp.released = kp.released[:0]
		return
	}

	if len(kp.released) == 0 {
		return
	}

	key = kp.released[0]
	kp.released = kp.released[1:]
	kp.armed = false
	ok = true

	return
}
