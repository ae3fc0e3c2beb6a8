// Package seedkey implements the seed-to-key derivations gating Tech2
// security access.
//
// Two derivations circulate for Trionic 8 family devices and they are not
// interchangeable: the level-aware pipeline used during a live diagnostic
// session (Trionic8) and the fixed four-step pipeline from the stand-alone
// calculators (Trionic8Calc). Which one a given firmware accepts depends
// on the device family, so both are kept behind the Algorithm interface
// and selected by the caller.
package seedkey

import (
	"fmt"

	"github.com/opentech2/go-tech2/protocol"
)

// MaxSeed is the largest valid seed value (seeds are 16-bit).
const MaxSeed = 0xFFFF

// Algorithm derives a 16-bit key from a 16-bit seed. Implementations are
// pure: deterministic, no side effects.
type Algorithm interface {
	// Name identifies the algorithm variant
	Name() string

	// Compute derives the key for the given seed and access level.
	// Returns an error if seed is outside [0, MaxSeed].
	Compute(seed int, level protocol.AccessLevel) (uint16, error)
}

// checkSeed validates the 16-bit seed range contract shared by all
// algorithm variants.
func checkSeed(seed int) error {
	if seed < 0 || seed > MaxSeed {
		return fmt.Errorf("seed must be a 16-bit integer (0-65535), got %d", seed)
	}
	return nil
}

// rotateLeft rotates a 16-bit value left by bits.
func rotateLeft(val uint16, bits uint) uint16 {
	bits %= 16
	return val<<bits | val>>(16-bits)
}

// rotateRight rotates a 16-bit value right by bits.
func rotateRight(val uint16, bits uint) uint16 {
	bits %= 16
	return val>>bits | val<<(16-bits)
}

// swapBytes exchanges the high and low bytes of a 16-bit value.
func swapBytes(val uint16) uint16 {
	return val>>8 | val<<8
}
