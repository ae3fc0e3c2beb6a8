package seedkey

import "github.com/opentech2/go-tech2/protocol"

// Trionic8 is the level-aware security access derivation used during a
// live diagnostic session. A shared base transform is followed by a
// post-processing stage selected by the access level; the basic level
// uses the base transform alone.
type Trionic8 struct{}

func (Trionic8) Name() string { return "trionic8" }

// Compute derives the key for the given seed and access level.
//
// Base transform: rotate the seed right by 5 (expressed as seed>>5 |
// seed<<11), then add 0xB988. Level 0xFD divides by 3 before an
// xor/add/xor sequence; level 0xFB applies a different xor/add/xor
// sequence; level 0x01 stops at the base transform. All arithmetic wraps
// modulo 2^16. The division happens on the unsigned 16-bit value.
func (Trionic8) Compute(seed int, level protocol.AccessLevel) (uint16, error) {
	if err := checkSeed(seed); err != nil {
		return 0, err
	}

	s := uint16(seed)
	key := s>>5 | s<<11
	key += 0xB988

	switch level {
	case protocol.LevelHighest:
		key /= 3
		key ^= 0x8749
		key += 0x0ACF
		key ^= 0x81BF
	case protocol.LevelIntermediate:
		key ^= 0x8749
		key += 0x06D3
		key ^= 0xCFDF
	}

	return key, nil
}
