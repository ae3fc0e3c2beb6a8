package seedkey

import (
	"fmt"

	"github.com/opentech2/go-tech2/protocol"
)

// Trionic8Calc is the four-step derivation used by the stand-alone key
// calculators: rotate right 7, rotate left 10, swap bytes and add 0xF8DA,
// subtract 0x3F52. It has no level branching; the level argument is
// ignored.
type Trionic8Calc struct{}

func (Trionic8Calc) Name() string { return "trionic8-calc" }

// Step is one stage of the calculator pipeline, recorded for display.
type Step struct {
	// Description names the operation, e.g. "ROL 10"
	Description string

	// Value is the 16-bit intermediate result after the operation
	Value uint16
}

// Compute derives the key for the given seed. All arithmetic wraps modulo
// 2^16.
func (a Trionic8Calc) Compute(seed int, _ protocol.AccessLevel) (uint16, error) {
	steps, err := a.ComputeSteps(seed)
	if err != nil {
		return 0, err
	}
	return steps[len(steps)-1].Value, nil
}

// ComputeSteps derives the key and returns every intermediate value,
// starting with the input seed and ending with the final key.
func (Trionic8Calc) ComputeSteps(seed int) ([]Step, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	key := uint16(seed)
	steps := make([]Step, 0, 5)
	steps = append(steps, Step{Description: "Input seed", Value: key})

	key = rotateRight(key, 7)
	steps = append(steps, Step{Description: "ROR 7", Value: key})

	key = rotateLeft(key, 10)
	steps = append(steps, Step{Description: "ROL 10", Value: key})

	key = swapBytes(key) + 0xF8DA
	steps = append(steps, Step{Description: "SWAP + ADD 0xF8DA", Value: key})

	key -= 0x3F52
	steps = append(steps, Step{Description: "SUB 0x3F52", Value: key})

	return steps, nil
}

func (s Step) String() string {
	return fmt.Sprintf("%s: 0x%04X", s.Description, s.Value)
}
