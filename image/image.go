// Package image extracts vehicle data from a reassembled Tech2 memory
// image: the VIN, the security seed and the device-calculated key live at
// fixed byte offsets. Extraction is a syntactic surface check, not a VIN
// check-digit validation.
package image

import (
	"os"
)

// vinLength is the byte length of a vehicle identification number.
const vinLength = 17

// placeholder substitutes non-printable bytes in the VIN window.
const placeholder = '.'

// Layout holds the byte offsets of the extractable fields. Offsets vary
// between firmware dump variants, so they are configuration rather than
// constants.
type Layout struct {
	// VINOffset is the start of the 17-byte VIN window
	VINOffset int

	// SeedOffset is the start of the big-endian 16-bit security seed
	SeedOffset int

	// KeyOffset is the start of the big-endian 16-bit device-calculated key
	KeyOffset int
}

// DefaultLayout matches the download-mode memory image. The VIN window
// starts one byte past 0x15 to skip a filler byte.
var DefaultLayout = Layout{
	VINOffset:  0x16,
	SeedOffset: 0x30,
	KeyOffset:  0x32,
}

// FileLayout matches dump files produced by older capture tooling, which
// place the VIN window at 0x10.
var FileLayout = Layout{
	VINOffset:  0x10,
	SeedOffset: 0x30,
	KeyOffset:  0x32,
}

// Info is the parsed content of a memory image. A zero-value field with
// its ok flag false means the image was too short or the field did not
// pass the surface check.
type Info struct {
	VIN  string
	Seed uint16
	Key  uint16

	HasVIN  bool
	HasSeed bool
	HasKey  bool
}

// ExtractVIN reads the 17-byte VIN window. Non-printable bytes map to a
// placeholder; the result is accepted only when every character is
// alphanumeric or the placeholder. Returns ok=false when the window lies
// outside the image or the result fails the filter.
func (l Layout) ExtractVIN(img []byte) (string, bool) {
	if l.VINOffset < 0 || len(img) < l.VINOffset+vinLength {
		return "", false
	}

	buf := make([]byte, vinLength)
	for i, b := range img[l.VINOffset : l.VINOffset+vinLength] {
		if b >= 32 && b <= 126 {
			buf[i] = b
		} else {
			buf[i] = placeholder
		}
	}

	for _, c := range buf {
		if !isAlphanumeric(c) && c != placeholder {
			return "", false
		}
	}
	return string(buf), true
}

// ExtractSeed reads the security seed as a big-endian 16-bit integer.
// Returns ok=false when the image is too short.
func (l Layout) ExtractSeed(img []byte) (uint16, bool) {
	return l.readUint16(img, l.SeedOffset)
}

// ExtractKey reads the device-calculated key as a big-endian 16-bit
// integer. Returns ok=false when the image is too short.
func (l Layout) ExtractKey(img []byte) (uint16, bool) {
	return l.readUint16(img, l.KeyOffset)
}

func (l Layout) readUint16(img []byte, offset int) (uint16, bool) {
	if offset < 0 || len(img) < offset+2 {
		return 0, false
	}
	return uint16(img[offset])<<8 | uint16(img[offset+1]), true
}

// Parse extracts every field the image is long enough to hold.
func (l Layout) Parse(img []byte) Info {
	var info Info
	info.VIN, info.HasVIN = l.ExtractVIN(img)
	info.Seed, info.HasSeed = l.ExtractSeed(img)
	info.Key, info.HasKey = l.ExtractKey(img)
	return info
}

// IsValidVINChar reports whether c may appear in a real VIN: uppercase
// letters except I, O and Q, and digits.
func IsValidVINChar(c byte) bool {
	if c >= 'A' && c <= 'Z' {
		return c != 'I' && c != 'O' && c != 'Q'
	}
	return c >= '0' && c <= '9'
}

func isAlphanumeric(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// Load reads an image file: a bare binary blob with no header.
func Load(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Save writes an image to a file as a bare binary blob.
func Save(path string, img []byte) error {
	return os.WriteFile(path, img, 0o644)
}
