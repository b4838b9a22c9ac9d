// Package isa describes the PICA200 vertex/geometry shader instruction set.
//
// The package is the leaf of the assembler pipeline. It knows how to:
//   - Resolve register tokens (o0, v3, r12, c40[a0.x], d1f) to register ids
//   - Encode IEEE-754 floats into the 24-bit float used by constant registers
//   - Parse the operand list of every instruction format and pack it into an
//     instruction word
//   - Build operand descriptor words from mask and swizzle patterns
//   - Decode instruction words back into readable assembly
//
// # Instruction Words
//
// Every instruction is a single 32-bit word with the opcode in bits 31:26.
// The remaining bits are laid out by one of twelve formats:
//
//	Arith     dst, src1, src2 (desc)          add dp3 dp4 dph op4 mul sge slt max min
//	CondBranch l1, l2, [!]cmp.x && [!]cmp.y   ifc
//	None                                      nop end emit
//	Unary     dst, src1 (desc)                ex2 lg2 op7 flr rcp rsq mova mov
//	Compare   src1, op, op, src2 (desc)       cmp
//	ArithImm  dst, src1, src2 (desc)          dphi op19 sgei slti
//	Loop      label, iN                       loop
//	UniformBranch l1, l2, bN                  ifu
//	SetEmit   vtxN, prim, winding             setemit
//	Call      l1, l2                          call
//	Mad       dst, src1, src2, src3 (desc)    mad
//	Madi      dst, src1, src2, src3 (desc)    madi
//
// Field values are range checked before packing. A value that does not fit
// its field is an error, never truncated.
//
// The numeric tables in this package (opcodes, output semantics, uniform
// register bases, descriptor layout) match what the GPU firmware expects and
// must not be renumbered.
package isa
