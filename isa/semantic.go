package isa

import (
	"fmt"
	"strings"
)

// OutputSemantic identifies what an output register carries.
type OutputSemantic uint16

const (
	OutputPosition   OutputSemantic = 0x0
	OutputNormalQuat OutputSemantic = 0x1
	OutputColor      OutputSemantic = 0x2
	OutputTexCoord0  OutputSemantic = 0x3
	OutputTexCoord0W OutputSemantic = 0x4
	OutputTexCoord1  OutputSemantic = 0x5
	OutputTexCoord2  OutputSemantic = 0x6
	OutputView       OutputSemantic = 0x8
)

const outputPrefix = "result."

var outputSemantics = map[string]OutputSemantic{
	"position":   OutputPosition,
	"normalquat": OutputNormalQuat,
	"color":      OutputColor,
	"texcoord0":  OutputTexCoord0,
	"texcoord0w": OutputTexCoord0W,
	"texcoord1":  OutputTexCoord1,
	"texcoord2":  OutputTexCoord2,
	"view":       OutputView,
}

// LookupOutputSemantic accepts "result.position" or the bare "position".
func LookupOutputSemantic(name string) (OutputSemantic, bool) {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), outputPrefix)
	s, ok := outputSemantics[name]
	return s, ok
}

func (s OutputSemantic) String() string {
	for name, v := range outputSemantics {
		if v == s {
			return outputPrefix + name
		}
	}
	return fmt.Sprintf("semantic(0x%x)", uint16(s))
}

// MaxOutputMask is the widest component write mask of an output binding.
const MaxOutputMask = 0xF

// Uniform register bases. A uniform binding of cN..cM occupies registers
// 0x10+N through 0x10+M in the input table.
const (
	UniformFloatBase = 0x10
	UniformIntBase   = 0x70
	UniformBoolBase  = 0x78
)

// Number of registers in each uniform file.
const (
	NumFloatUniforms = NumUniforms
	NumIntUniforms   = 4
	NumBoolUniforms  = 16
)

// UniformFile returns the register base and size of a uniform class prefix
// (c, i or b).
func UniformFile(class byte) (base, size uint32, ok bool) {
	switch class {
	case 'c':
		return UniformFloatBase, NumFloatUniforms, true
	case 'i':
		return UniformIntBase, NumIntUniforms, true
	case 'b':
		return UniformBoolBase, NumBoolUniforms, true
	}
	return 0, 0, false
}

// PackIntVector packs four integer constant components into one word,
// x in the low byte. Components must fit a byte, signed or unsigned.
func PackIntVector(v [4]int64) (uint32, error) {
	var w uint32
	for i, c := range v {
		if c < -128 || c > 255 {
			return 0, errorf(KindRange, "integer constant component %d out of range [-128, 255]", c)
		}
		w |= uint32(uint8(c)) << (8 * i)
	}
	return w, nil
}
