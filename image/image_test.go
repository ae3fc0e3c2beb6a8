package image

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testImage builds a 714-byte image with a VIN, seed and key at the
// default offsets.
func testImage(vin string) []byte {
	img := make([]byte, 714)
	copy(img[DefaultLayout.VINOffset:], vin)
	img[DefaultLayout.SeedOffset] = 0x3B
	img[DefaultLayout.SeedOffset+1] = 0x86
	img[DefaultLayout.KeyOffset] = 0x55
	img[DefaultLayout.KeyOffset+1] = 0xB1
	return img
}

func TestExtractVIN(t *testing.T) {
	vin := "W0L0XCP0842000000"
	got, ok := DefaultLayout.ExtractVIN(testImage(vin))
	if !ok {
		t.Fatal("expected VIN to be present")
	}
	if got != vin {
		t.Errorf("vin = %q, want %q", got, vin)
	}
}

func TestExtractVINPlaceholders(t *testing.T) {
	// Non-printable bytes become placeholders but the VIN is still
	// accepted when the rest is alphanumeric.
	img := testImage("W0L0XCP0842000000")
	img[DefaultLayout.VINOffset+3] = 0x00
	img[DefaultLayout.VINOffset+9] = 0xFF

	got, ok := DefaultLayout.ExtractVIN(img)
	if !ok {
		t.Fatal("expected VIN to be present")
	}
	if got != "W0L.XCP08.2000000" {
		t.Errorf("vin = %q", got)
	}
}

func TestExtractVINRejectsNonAlphanumeric(t *testing.T) {
	// Printable punctuation is not a placeholder and fails the filter.
	img := testImage("W0L0XCP08!2000000")
	if got, ok := DefaultLayout.ExtractVIN(img); ok {
		t.Errorf("accepted %q, want rejection", got)
	}
}

func TestExtractVINShortImage(t *testing.T) {
	if _, ok := DefaultLayout.ExtractVIN(make([]byte, 0x16+10)); ok {
		t.Error("expected ok=false for a short image")
	}
	if _, ok := DefaultLayout.ExtractVIN(nil); ok {
		t.Error("expected ok=false for a nil image")
	}
}

func TestExtractSeedAndKey(t *testing.T) {
	img := testImage("W0L0XCP0842000000")

	seed, ok := DefaultLayout.ExtractSeed(img)
	if !ok || seed != 0x3B86 {
		t.Errorf("seed = 0x%04X ok=%v, want 0x3B86", seed, ok)
	}

	key, ok := DefaultLayout.ExtractKey(img)
	if !ok || key != 0x55B1 {
		t.Errorf("key = 0x%04X ok=%v, want 0x55B1", key, ok)
	}
}

func TestExtractSeedShortImage(t *testing.T) {
	// One byte short of the full seed.
	if _, ok := DefaultLayout.ExtractSeed(make([]byte, 0x31)); ok {
		t.Error("expected ok=false for a short image")
	}
}

func TestParse(t *testing.T) {
	info := DefaultLayout.Parse(testImage("W0L0XCP0842000000"))
	if !info.HasVIN || info.VIN != "W0L0XCP0842000000" {
		t.Errorf("vin = %q has=%v", info.VIN, info.HasVIN)
	}
	if !info.HasSeed || info.Seed != 0x3B86 {
		t.Errorf("seed = 0x%04X has=%v", info.Seed, info.HasSeed)
	}
	if !info.HasKey || info.Key != 0x55B1 {
		t.Errorf("key = 0x%04X has=%v", info.Key, info.HasKey)
	}
}

func TestParseShortImage(t *testing.T) {
	info := DefaultLayout.Parse([]byte{0x01, 0x02})
	if info.HasVIN || info.HasSeed || info.HasKey {
		t.Errorf("short image parsed as %+v", info)
	}
}

func TestFileLayout(t *testing.T) {
	img := make([]byte, 714)
	copy(img[FileLayout.VINOffset:], "W0L0XCP0842000000")
	img[FileLayout.SeedOffset] = 0x12
	img[FileLayout.SeedOffset+1] = 0x34

	vin, ok := FileLayout.ExtractVIN(img)
	if !ok || vin != "W0L0XCP0842000000" {
		t.Errorf("vin = %q ok=%v", vin, ok)
	}
	seed, ok := FileLayout.ExtractSeed(img)
	if !ok || seed != 0x1234 {
		t.Errorf("seed = 0x%04X ok=%v", seed, ok)
	}
}

func TestIsValidVINChar(t *testing.T) {
	for _, c := range []byte("ABCHJKLMNPRSTUVWXYZ0123456789") {
		if !IsValidVINChar(c) {
			t.Errorf("IsValidVINChar(%q) = false", c)
		}
	}
	for _, c := range []byte("IOQioq .-?") {
		if IsValidVINChar(c) {
			t.Errorf("IsValidVINChar(%q) = true", c)
		}
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.bin")
	img := testImage("W0L0XCP0842000000")

	if err := Save(path, img); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(got, img) {
		t.Error("round trip changed the image")
	}

	// The file is a bare blob, no header.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 714 {
		t.Errorf("file size = %d, want 714", len(raw))
	}
}
