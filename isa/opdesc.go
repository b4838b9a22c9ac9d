package isa

import (
	"fmt"
	"strings"
)

// OpdescMask is the fixed mask word stored next to every operand descriptor.
const OpdescMask = 0x0000000F

// MaxOpdescSources is the number of per-source swizzles a descriptor holds.
const MaxOpdescSources = 3

var swizzleValues = map[byte]uint32{'x': 0, 'y': 1, 'z': 2, 'w': 3}

// Swizzle is a per-source component selection with optional negation.
type Swizzle struct {
	Components [4]uint8
	Negate     bool
}

// Opdesc is an operand descriptor: destination write mask plus up to three
// source swizzles.
type Opdesc struct {
	Mask    uint8 // bit 3 is x, bit 0 is w
	Sources [MaxOpdescSources]Swizzle
}

// ParseOpdesc builds a descriptor from a destination mask pattern and up to
// three swizzle patterns. In the mask, '_' marks an unwritten component.
// Swizzles are four characters over xyzw with an optional leading '-'.
// Sources that are not given keep a zero swizzle (xxxx).
func ParseOpdesc(mask string, swizzles ...string) (Opdesc, error) {
	var d Opdesc
	mask = strings.ToLower(strings.TrimSpace(mask))
	if len(mask) != 4 {
		return d, errorf(KindGrammar, "destination mask %q must have 4 components", mask)
	}
	for k := 0; k < 4; k++ {
		c := mask[k]
		if c == '_' {
			continue
		}
		if _, ok := swizzleValues[c]; !ok {
			return d, errorf(KindGrammar, "invalid component %q in destination mask %q", c, mask)
		}
		d.Mask |= 1 << (3 - k)
	}

	if len(swizzles) > MaxOpdescSources {
		return d, errorf(KindGrammar, "operand descriptor takes at most %d swizzles, got %d", MaxOpdescSources, len(swizzles))
	}
	for i, s := range swizzles {
		sw, err := parseSwizzle(s)
		if err != nil {
			return d, err
		}
		d.Sources[i] = sw
	}
	return d, nil
}

func parseSwizzle(s string) (Swizzle, error) {
	var sw Swizzle
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "-") {
		sw.Negate = true
		s = s[1:]
	}
	if len(s) != 4 {
		return sw, errorf(KindGrammar, "swizzle %q must have 4 components", s)
	}
	for k := 0; k < 4; k++ {
		v, ok := swizzleValues[s[k]]
		if !ok {
			return sw, errorf(KindGrammar, "invalid component %q in swizzle %q", s[k], s)
		}
		sw.Components[k] = uint8(v)
	}
	return sw, nil
}

func (s Swizzle) bits() uint32 {
	var v uint32
	for _, c := range s.Components {
		v = v<<2 | uint32(c)
	}
	return v
}

func (s Swizzle) String() string {
	var sb strings.Builder
	if s.Negate {
		sb.WriteByte('-')
	}
	for _, c := range s.Components {
		sb.WriteByte("xyzw"[c&3])
	}
	return sb.String()
}

// Word packs the descriptor:
//
//	31     1
//	30:23  src3 swizzle   22  src3 negate
//	21:14  src2 swizzle   13  src2 negate
//	12:5   src1 swizzle    4  src1 negate
//	3:0    destination mask
func (d Opdesc) Word() uint32 {
	w := uint32(1)<<31 | uint32(d.Mask&0xF)
	shifts := [MaxOpdescSources]uint{5, 14, 23}
	for i, s := range d.Sources {
		w |= s.bits() << shifts[i]
		w |= boolBit(s.Negate) << (shifts[i] - 1)
	}
	return w
}

// DecodeOpdesc unpacks a descriptor word.
func DecodeOpdesc(w uint32) Opdesc {
	d := Opdesc{Mask: uint8(w & 0xF)}
	shifts := [MaxOpdescSources]uint{5, 14, 23}
	for i, shift := range shifts {
		bits := (w >> shift) & 0xFF
		for k := 0; k < 4; k++ {
			d.Sources[i].Components[k] = uint8(bits >> (6 - 2*k) & 3)
		}
		d.Sources[i].Negate = (w>>(shift-1))&1 == 1
	}
	return d
}

// MaskString renders the destination mask in the ParseOpdesc syntax.
func (d Opdesc) MaskString() string {
	b := []byte("____")
	for k := 0; k < 4; k++ {
		if d.Mask&(1<<(3-k)) != 0 {
			b[k] = "xyzw"[k]
		}
	}
	return string(b)
}

func (d Opdesc) String() string {
	return fmt.Sprintf("%s, %s, %s, %s", d.MaskString(), d.Sources[0], d.Sources[1], d.Sources[2])
}
