package isa

import "fmt"

// Format identifies an operand grammar and its bit layout.
type Format uint8

const (
	FormatArith         Format = iota // dst, src1, src2 (desc)
	FormatCondBranch                  // ifc l1, l2, condition
	FormatNone                        // no operands
	FormatUnary                       // dst, src1 (desc)
	FormatCompare                     // cmp src1, opx, opy, src2 (desc)
	FormatArithImm                    // arithmetic grammar, alternate layout
	FormatLoop                        // loop label, iN
	FormatUniformBranch               // ifu l1, l2, bN
	FormatSetEmit                     // setemit vtxN, prim, winding
	FormatCall                        // call l1, l2
	FormatMad                         // dst, src1, src2, src3 (desc)
	FormatMadi                        // dst, src1, src2, src3 (desc), alternate layout
	numFormats
)

var formatNames = [numFormats]string{
	FormatArith:         "arith",
	FormatCondBranch:    "condbranch",
	FormatNone:          "none",
	FormatUnary:         "unary",
	FormatCompare:       "compare",
	FormatArithImm:      "arithimm",
	FormatLoop:          "loop",
	FormatUniformBranch: "uniformbranch",
	FormatSetEmit:       "setemit",
	FormatCall:          "call",
	FormatMad:           "mad",
	FormatMadi:          "madi",
}

func (f Format) String() string {
	if f < numFormats {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Opcode is the 6-bit value in bits 31:26 of an instruction word.
type Opcode uint8

// Mnemonic is one entry of the instruction table.
type Mnemonic struct {
	Name   string
	Opcode Opcode
	Format Format
}

var mnemonics = []Mnemonic{
	{"add", 0x00, FormatArith},
	{"dp3", 0x01, FormatArith},
	{"dp4", 0x02, FormatArith},
	{"dph", 0x03, FormatArith},
	{"op4", 0x04, FormatArith},
	{"ex2", 0x05, FormatUnary},
	{"lg2", 0x06, FormatUnary},
	{"op7", 0x07, FormatUnary},
	{"mul", 0x08, FormatArith},
	{"sge", 0x09, FormatArith},
	{"slt", 0x0A, FormatArith},
	{"flr", 0x0B, FormatUnary},
	{"max", 0x0C, FormatArith},
	{"min", 0x0D, FormatArith},
	{"rcp", 0x0E, FormatUnary},
	{"rsq", 0x0F, FormatUnary},
	{"mova", 0x12, FormatUnary},
	{"mov", 0x13, FormatUnary},
	{"dphi", 0x18, FormatArithImm},
	{"op19", 0x19, FormatArithImm},
	{"sgei", 0x1A, FormatArithImm},
	{"slti", 0x1B, FormatArithImm},
	{"nop", 0x21, FormatNone},
	{"end", 0x22, FormatNone},
	{"call", 0x24, FormatCall},
	{"ifu", 0x27, FormatUniformBranch},
	{"ifc", 0x28, FormatCondBranch},
	{"loop", 0x29, FormatLoop},
	{"emit", 0x2A, FormatNone},
	{"setemit", 0x2B, FormatSetEmit},
	{"cmp", 0x2E, FormatCompare},
	{"madi", 0x30, FormatMadi},
	{"mad", 0x38, FormatMad},
}

var (
	byName   = make(map[string]Mnemonic, len(mnemonics))
	byOpcode = make(map[Opcode]Mnemonic, len(mnemonics))
)

func init() {
	for _, m := range mnemonics {
		byName[m.Name] = m
		byOpcode[m.Opcode] = m
	}
}

// Lookup returns the table entry for a lowercase mnemonic.
func Lookup(name string) (Mnemonic, bool) {
	m, ok := byName[name]
	return m, ok
}

// LookupOpcode returns the table entry for the opcode bits of word.
// The mad family uses only the top three opcode bits, the rest belong to
// the destination field. cmp uses the top five, bit 26 is part of cmpx.
func LookupOpcode(word uint32) (Mnemonic, bool) {
	op := Opcode(word >> 26)
	switch {
	case op>>3 == 0x7:
		op = 0x38
	case op>>3 == 0x6:
		op = 0x30
	case op>>1 == 0x17:
		op = 0x2E
	}
	m, ok := byOpcode[op]
	return m, ok
}

// Mnemonics returns a copy of the instruction table in opcode order.
func Mnemonics() []Mnemonic {
	out := make([]Mnemonic, len(mnemonics))
	copy(out, mnemonics)
	return out
}
