package isa

import (
	"fmt"
	"strings"
)

// Instruction is a decoded instruction word.
type Instruction struct {
	Mnemonic Mnemonic
	Fields   Fields
}

// signedField sign-extends a two's complement field.
func signedField(w uint32, width, shift uint) int32 {
	return int32(field(w, width, shift)<<(32-width)) >> (32 - width)
}

func field(w uint32, width, shift uint) uint32 {
	return (w >> shift) & (1<<width - 1)
}

// Decode unpacks an instruction word using the layout of its opcode.
func Decode(w uint32) (Instruction, error) {
	m, ok := LookupOpcode(w)
	if !ok {
		return Instruction{}, errorf(KindUnknownSymbol, "unknown opcode 0x%02x", w>>26)
	}

	var f Fields
	switch m.Format {
	case FormatArith:
		f.Dst, f.Idx = field(w, 5, 21), RelIndex(field(w, 2, 19))
		f.Src1, f.Src2, f.Desc = field(w, 7, 12), field(w, 5, 7), field(w, 7, 0)
	case FormatArithImm:
		f.Dst = field(w, 5, 21)
		f.Src1, f.Src2, f.Desc = field(w, 5, 14), field(w, 7, 7), field(w, 7, 0)
	case FormatUnary:
		f.Dst, f.Idx = field(w, 5, 21), RelIndex(field(w, 2, 19))
		f.Src1, f.Desc = field(w, 7, 12), field(w, 7, 0)
	case FormatCompare:
		f.CmpX, f.CmpY = CompareOp(field(w, 3, 24)), CompareOp(field(w, 3, 21))
		f.Src1, f.Src2, f.Desc = field(w, 7, 12), field(w, 5, 7), field(w, 7, 0)
	case FormatCondBranch, FormatCall:
		f.Flags, f.Addr, f.Num = field(w, 4, 22), field(w, 12, 10), signedField(w, 10, 0)
	case FormatLoop:
		f.Int, f.Addr, f.Num = field(w, 4, 22), field(w, 12, 10), signedField(w, 10, 0)
	case FormatUniformBranch:
		f.Bool, f.Addr, f.Num = field(w, 4, 22), field(w, 12, 10), signedField(w, 10, 0)
	case FormatSetEmit:
		f.Vtx, f.Prim, f.Winding = field(w, 2, 24), field(w, 1, 23) == 1, field(w, 1, 22) == 1
	case FormatMad:
		f.Dst, f.Src1, f.Src2 = field(w, 5, 24), field(w, 7, 17), field(w, 7, 10)
		f.Src3, f.Desc = field(w, 5, 5), field(w, 5, 0)
	case FormatMadi:
		f.Dst, f.Src1, f.Src2 = field(w, 5, 24), field(w, 7, 17), field(w, 5, 12)
		f.Src3, f.Desc = field(w, 7, 5), field(w, 5, 0)
	}
	return Instruction{Mnemonic: m, Fields: f}, nil
}

// LabelNamer names a code address for disassembly. It returns false when
// no label is known at addr.
type LabelNamer func(addr uint32) (string, bool)

func addrName(names LabelNamer, addr uint32) string {
	if names != nil {
		if name, ok := names(addr); ok {
			return name
		}
	}
	return fmt.Sprintf("@0x%03x", addr)
}

func src1Name(reg uint32, idx RelIndex) string {
	name := RegisterName(reg, ContextSrc1)
	if idx != RelNone {
		name += "[" + idx.String() + "]"
	}
	return name
}

// Text renders the instruction in assembler syntax. Branch targets are
// named through names, or printed as @0xNNN addresses.
func (in Instruction) Text(names LabelNamer) string {
	f := in.Fields
	name := in.Mnemonic.Name
	switch in.Mnemonic.Format {
	case FormatArith:
		return fmt.Sprintf("%s %s, %s, %s (0x%x)", name,
			RegisterName(f.Dst, ContextDst), src1Name(f.Src1, f.Idx), RegisterName(f.Src2, ContextSrc2), f.Desc)
	case FormatArithImm:
		return fmt.Sprintf("%s %s, %s, %s (0x%x)", name,
			RegisterName(f.Dst, ContextDst), RegisterName(f.Src1, ContextSrc2), RegisterName(f.Src2, ContextSrc2), f.Desc)
	case FormatUnary:
		return fmt.Sprintf("%s %s, %s (0x%x)", name,
			RegisterName(f.Dst, ContextDst), src1Name(f.Src1, f.Idx), f.Desc)
	case FormatCompare:
		return fmt.Sprintf("%s %s, %s, %s, %s (0x%x)", name,
			RegisterName(f.Src1, ContextSrc1), f.CmpX, f.CmpY, RegisterName(f.Src2, ContextSrc2), f.Desc)
	case FormatNone:
		return name
	case FormatCondBranch:
		return fmt.Sprintf("%s %s, %s, %s", name,
			addrName(names, f.Addr+uint32(f.Num)), addrName(names, f.Addr), conditionText(f.Flags))
	case FormatCall:
		return fmt.Sprintf("%s %s, %s", name,
			addrName(names, f.Addr), addrName(names, f.Addr+uint32(f.Num)))
	case FormatLoop:
		return fmt.Sprintf("%s %s, i%d", name, addrName(names, f.Addr+1), f.Int)
	case FormatUniformBranch:
		return fmt.Sprintf("%s %s, %s, b%d", name,
			addrName(names, f.Addr+uint32(f.Num)), addrName(names, f.Addr), f.Bool)
	case FormatSetEmit:
		return fmt.Sprintf("%s vtx%d, %t, %t", name, f.Vtx, f.Prim, f.Winding)
	case FormatMad:
		return fmt.Sprintf("%s %s, %s, %s, %s (0x%x)", name, RegisterName(f.Dst, ContextDst),
			RegisterName(f.Src1, ContextSrc1), RegisterName(f.Src2, ContextSrc1), RegisterName(f.Src3, ContextSrc2), f.Desc)
	case FormatMadi:
		return fmt.Sprintf("%s %s, %s, %s, %s (0x%x)", name, RegisterName(f.Dst, ContextDst),
			RegisterName(f.Src1, ContextSrc1), RegisterName(f.Src2, ContextSrc2), RegisterName(f.Src3, ContextSrc1), f.Desc)
	}
	return name
}

func conditionText(flags uint32) string {
	test := func(bit uint32, flag string) string {
		if flags&bit != 0 {
			return "cmp." + flag
		}
		return "!cmp." + flag
	}
	x, y := test(condRefX, "x"), test(condRefY, "y")
	switch flags & 0x3 {
	case CondOr:
		return x + " || " + y
	case CondAnd:
		return x + " && " + y
	case CondXOnly:
		return x
	default:
		return y
	}
}

// Disassemble renders one word, falling back to a raw .word for unknown
// opcodes.
func Disassemble(w uint32, names LabelNamer) string {
	in, err := Decode(w)
	if err != nil {
		return fmt.Sprintf(".word 0x%08x", w)
	}
	return strings.TrimSpace(in.Text(names))
}
