package io

import (
	"sync"

	"github.com/ezrec/chip8/cpu"
)

// Timers are the 60Hz delay and sound timers.
type Timers struct {
	mutex sync.Mutex
	delay uint8
	sound uint8
}

var _ cpu.Timer = (*Timers)(nil)

func (tm *Timers) Reset() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.delay = 0
	tm.sound = 0
}

func (tm *Timers) Delay() uint8 {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	return tm.delay
}

func (tm *Timers) SetDelay(value uint8) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.delay = value
}

func (tm *Timers) Sound() uint8 {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	return tm.sound
}

func (tm *Timers) SetSound(value uint8) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.sound = value
}

// Sounding reports whether the beeper should be on.
func (tm *Timers) Sounding() bool {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	return tm.sound > 0
}

// Tick decrements both timers toward zero. Called once per 60Hz frame.
func (tm *Timers) Tick() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	if tm.delay > 0 {
		tm.delay--
	}
	if tm.sound > 0 {
		tm.sound--
	}
}
