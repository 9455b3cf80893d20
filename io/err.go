package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Device errors
	ErrKeyInvalid = errors.New(f("key invalid"))
	ErrRomEmpty   = errors.New(f("rom empty"))
)
