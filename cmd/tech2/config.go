package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/opentech2/go-tech2/image"
	"github.com/opentech2/go-tech2/protocol"
	"github.com/opentech2/go-tech2/transport"
)

// Config is the CLI configuration, loadable from a YAML file. Flags
// override whatever the file sets.
type Config struct {
	Port    string      `mapstructure:"port"`
	Baud    int         `mapstructure:"baud"`
	Level   string      `mapstructure:"level"`
	Retries int         `mapstructure:"retries"`
	Log     LogConfig   `mapstructure:"log"`
	Image   ImageConfig `mapstructure:"image"`
}

type LogConfig struct {
	Filename string `mapstructure:"filename"`
}

// ImageConfig overrides the extraction offsets for unusual dump variants.
// Zero values keep the defaults.
type ImageConfig struct {
	VINOffset  int `mapstructure:"vin_offset"`
	SeedOffset int `mapstructure:"seed_offset"`
	KeyOffset  int `mapstructure:"key_offset"`
}

func defaultCLIConfig() Config {
	return Config{
		Baud:    transport.DefaultBaudRate,
		Level:   "highest",
		Retries: 3,
		Log:     LogConfig{Filename: "tech2.log"},
	}
}

// loadConfig reads a YAML config file over the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultCLIConfig()
	if path == "" {
		return cfg, nil
	}

	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// layout resolves the extraction offsets, falling back to the defaults
// for fields the config leaves at zero.
func (c Config) layout() image.Layout {
	l := image.DefaultLayout
	if c.Image.VINOffset > 0 {
		l.VINOffset = c.Image.VINOffset
	}
	if c.Image.SeedOffset > 0 {
		l.SeedOffset = c.Image.SeedOffset
	}
	if c.Image.KeyOffset > 0 {
		l.KeyOffset = c.Image.KeyOffset
	}
	return l
}

// parseLevel maps a level name or numeric value to an access level.
func parseLevel(s string) (protocol.AccessLevel, error) {
	switch strings.ToLower(s) {
	case "basic":
		return protocol.LevelBasic, nil
	case "intermediate":
		return protocol.LevelIntermediate, nil
	case "highest", "":
		return protocol.LevelHighest, nil
	}

	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown access level %q", s)
	}
	switch protocol.AccessLevel(n) {
	case protocol.LevelBasic, protocol.LevelIntermediate, protocol.LevelHighest:
		return protocol.AccessLevel(n), nil
	}
	return 0, fmt.Errorf("unknown access level %q", s)
}

// parseUint16 accepts decimal or 0x-prefixed hex.
func parseUint16(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

// parseHexBytes decodes a space- or comma-separated hex byte list, e.g.
// "01 A6 FF".
func parseHexBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
	out := make([]byte, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(strings.TrimPrefix(f, "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad hex byte %q", f)
		}
		out = append(out, byte(n))
	}
	return out, nil
}
