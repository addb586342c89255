package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Local id ranges for light and full origin scopes.
const (
	LightLocalMax uint32 = 0xFFF
	FullLocalMax  uint32 = 0xFFFFFF
)

// FormID is the stable identifier of a catalog entry: an origin scope plus
// an id local to that scope.
type FormID struct {
	Origin string
	Local  uint32
}

// IsZero reports whether the id is unset.
func (id FormID) IsZero() bool { return id.Origin == "" && id.Local == 0 }

// LocalKey renders the local id the way patch documents key it.
func (id FormID) LocalKey() string { return FormatLocal(id.Local) }

func (id FormID) String() string {
	return id.Origin + "|" + FormatLocal(id.Local)
}

// FormatLocal renders a local id as 0x-prefixed, six hex digits.
func FormatLocal(local uint32) string {
	return fmt.Sprintf("0x%06X", local)
}

// ParseLocal accepts "0x00ABCD" or "00ABCD". Local ids are always hex.
func ParseLocal(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	digits := s
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse local id %q: %w", s, err)
	}
	return uint32(v), nil
}

// ParseFormID parses "Origin.esp|0x00ABCD".
func ParseFormID(s string) (FormID, error) {
	origin, local, ok := strings.Cut(s, "|")
	if !ok || origin == "" {
		return FormID{}, fmt.Errorf("parse form id %q: want origin|local", s)
	}
	l, err := ParseLocal(local)
	if err != nil {
		return FormID{}, err
	}
	return FormID{Origin: origin, Local: l}, nil
}
