package dvl

import "fmt"

// Section magics, "DVLB", "DVLP" and "DVLE" read as little-endian words.
const (
	MagicDVLB = 0x424C5644
	MagicDVLP = 0x504C5644
	MagicDVLE = 0x454C5644
)

// Section and record sizes in bytes.
const (
	dvlbHeaderSize = 0x08 // plus 4 per entry point
	dvlpHeaderSize = 0x28
	dvleHeaderSize = 0x40
	opdescSize     = 0x08
	constantSize   = 0x14
	labelSize      = 0x10
	outputSize     = 0x08
	inputSize      = 0x08
)

// Stage is the shader stage an entry point runs in.
type Stage uint32

const (
	StageVertex   Stage = 0x0
	StageGeometry Stage = 0x1
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("stage(%d)", uint32(s))
	}
}

// ConstantKind tags a constant record.
type ConstantKind uint32

const (
	ConstantBool  ConstantKind = 0x0
	ConstantInt   ConstantKind = 0x1
	ConstantFloat ConstantKind = 0x2
)

func (k ConstantKind) String() string {
	switch k {
	case ConstantBool:
		return "bool"
	case ConstantInt:
		return "int"
	case ConstantFloat:
		return "float"
	default:
		return fmt.Sprintf("constant(%d)", uint32(k))
	}
}

// Constant is a constant register initializer. Values holds the already
// packed words: the 0/1 value for bool, the packed bytes for int, four
// float24 words for float.
type Constant struct {
	Kind     ConstantKind
	Register uint16
	Values   [4]uint32
}

// Label maps a code offset to an interned name.
type Label struct {
	Offset uint32
	Symbol uint32
	Name   string
}

// Output binds an output register to a semantic and write mask.
type Output struct {
	Semantic uint16
	Register uint16
	Mask     uint32
}

// Input binds a uniform register range to an interned name. Start and End
// are inclusive and already include the register file base.
type Input struct {
	Start  uint16
	End    uint16
	Symbol uint32
	Name   string
}

// Opdesc is an operand descriptor word and its mask.
type Opdesc struct {
	Word uint32
	Mask uint32
}
