package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cmdrvl/rvl/internal/align"
	"github.com/cmdrvl/rvl/internal/csvio"
)

var (
	_ pflag.Value = (*delimiterFlag)(nil)
	_ pflag.Value = (*keyFlag)(nil)
)

// delimiterFlag is a pflag.Value decoding --delimiter's three accepted
// forms: a recognized name, a 0xNN hex byte, or a single ASCII byte.
type delimiterFlag struct {
	value byte
	set   bool
}

func (f *delimiterFlag) String() string {
	if !f.set {
		return ""
	}
	return string(rune(f.value))
}

func (f *delimiterFlag) Type() string { return "delimiter" }

func (f *delimiterFlag) Set(raw string) error {
	b, err := decodeDelimiter(raw)
	if err != nil {
		return err
	}
	f.value = b
	f.set = true
	return nil
}

func decodeDelimiter(raw string) (byte, error) {
	switch strings.ToLower(raw) {
	case "comma":
		return ',', nil
	case "tab":
		return '\t', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	case "caret":
		return '^', nil
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		n, err := strconv.ParseUint(raw[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid --delimiter hex byte %q: %w", raw, err)
		}
		return validateDelimiterByte(byte(n))
	}
	if len(raw) != 1 {
		return 0, fmt.Errorf("--delimiter must be a name, 0xNN, or a single ASCII byte, got %q", raw)
	}
	return validateDelimiterByte(raw[0])
}

func validateDelimiterByte(b byte) (byte, error) {
	if !csvio.IsValidDelimiter(b) {
		return 0, fmt.Errorf("--delimiter byte 0x%02X is not a valid CSV delimiter", b)
	}
	return b, nil
}

// keyFlag is a pflag.Value decoding --key's plain/u8:/hex: forms via the
// same identifier grammar the pipeline itself uses for join-key lookup.
type keyFlag struct {
	value []byte
	set   bool
}

func (f *keyFlag) String() string {
	if !f.set {
		return ""
	}
	return string(f.value)
}

func (f *keyFlag) Type() string { return "key" }

func (f *keyFlag) Set(raw string) error {
	decoded, err := align.ParseKeyIdentifier(raw)
	if err != nil {
		return fmt.Errorf("invalid --key %q: %w", raw, err)
	}
	f.value = decoded
	f.set = true
	return nil
}
