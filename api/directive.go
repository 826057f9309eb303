package api

import (
	"fmt"
	"strconv"
	"strings"
)

// DirectiveKind selects how the transformer reading is resolved
type DirectiveKind int

// Directive kinds
const (
	NoAdjustment DirectiveKind = iota
	Equalize
	TargetOffset
)

// Directive tokens as exchanged with the input surface
const (
	TokenAuto  = "Auto"
	TokenEqual = "Equal"
)

// OffsetTokens are the offsets offered by the input surface
var OffsetTokens = []string{"100", "200", "300", "400", "500"}

// Directive is the adjustment policy applied to the transformer reading
type Directive struct {
	Kind   DirectiveKind
	Offset float64
}

// Auto returns the no-adjustment directive
func Auto() Directive {
	return Directive{Kind: NoAdjustment}
}

// Equal returns the directive equalizing both normalized deltas
func Equal() Directive {
	return Directive{Kind: Equalize}
}

// Offset returns the directive forcing a difference of n between both normalized deltas
func Offset(n int) Directive {
	return Directive{Kind: TargetOffset, Offset: float64(n)}
}

// ParseDirective converts a directive token into a Directive
func ParseDirective(s string) (Directive, error) {
	switch s = strings.TrimSpace(s); {
	case s == "", strings.EqualFold(s, TokenAuto):
		return Auto(), nil
	case strings.EqualFold(s, TokenEqual):
		return Equal(), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Directive{}, fmt.Errorf("invalid adjustment: %s", s)
	}

	return Offset(n), nil
}

// Adjusting returns true if the directive back-solves the transformer reading
func (d Directive) Adjusting() bool {
	return d.Kind != NoAdjustment
}

// String returns the directive token
func (d Directive) String() string {
	switch d.Kind {
	case Equalize:
		return TokenEqual
	case TargetOffset:
		return strconv.FormatFloat(d.Offset, 'f', -1, 64)
	default:
		return TokenAuto
	}
}

// MarshalText implements encoding.TextMarshaler
func (d Directive) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Directive) UnmarshalText(text []byte) error {
	res, err := ParseDirective(string(text))
	if err == nil {
		*d = res
	}
	return err
}
