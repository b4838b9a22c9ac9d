package isa

import (
	"regexp"
	"strconv"
	"strings"
)

// Labels resolves label names to code addresses for branch formats.
type Labels interface {
	LabelAddress(name string) (uint32, bool)
}

// CompareOp is a componentwise comparison used by cmp.
type CompareOp uint8

const (
	CmpEQ CompareOp = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

var compareOpNames = [...]string{"eq", "ne", "lt", "le", "gt", "ge"}

func (c CompareOp) String() string {
	if int(c) < len(compareOpNames) {
		return compareOpNames[c]
	}
	return "cmp(" + strconv.Itoa(int(c)) + ")"
}

func parseCompareOp(s string) (CompareOp, error) {
	for i, name := range compareOpNames {
		if s == name {
			return CompareOp(i), nil
		}
	}
	return 0, errorf(KindUnknownSymbol, "unknown comparison %q", s)
}

// Condition flag bits of the ifc flags field. A flag bit is set when the
// corresponding cmp flag must be true, cleared when it is negated.
const (
	condRefX = 1 << 3
	condRefY = 1 << 2

	CondOr    = 0x0 // flag x || flag y
	CondAnd   = 0x1 // flag x && flag y
	CondXOnly = 0x2 // flag x alone
	CondYOnly = 0x3 // flag y alone
)

// Fields is the decoded operand record of one instruction. Which fields
// are meaningful depends on the format.
type Fields struct {
	Dst  uint32
	Src1 uint32
	Src2 uint32
	Src3 uint32
	Idx  RelIndex
	Desc uint32

	CmpX CompareOp
	CmpY CompareOp

	Flags uint32
	Addr  uint32
	Num   int32
	Int   uint32
	Bool  uint32

	Vtx     uint32
	Prim    bool
	Winding bool
}

type format struct {
	parse  func(labels Labels, operands string) (Fields, error)
	encode func(m Mnemonic, f Fields) (uint32, error)
}

var formats [numFormats]format

func init() {
	formats = [numFormats]format{
		FormatArith:         {parseArith, encodeArith},
		FormatCondBranch:    {parseCondBranch, encodeBranch},
		FormatNone:          {parseNone, encodeNone},
		FormatUnary:         {parseUnary, encodeUnary},
		FormatCompare:       {parseCompare, encodeCompare},
		FormatArithImm:      {parseArith, encodeArithImm},
		FormatLoop:          {parseLoop, encodeLoop},
		FormatUniformBranch: {parseUniformBranch, encodeUniformBranch},
		FormatSetEmit:       {parseSetEmit, encodeSetEmit},
		FormatCall:          {parseCall, encodeBranch},
		FormatMad:           {parseMad, encodeMad},
		FormatMadi:          {parseMadi, encodeMadi},
	}
}

const (
	operandPat = `([^\s,]+)`
	descPat    = `\(\s*(0x[0-9a-f]+|[0-9]+)\s*\)`
	sep        = `\s*,\s*`
)

var (
	arithRe  = regexp.MustCompile(`^\s*` + operandPat + sep + operandPat + sep + operandPat + `\s*` + descPat + `\s*$`)
	unaryRe  = regexp.MustCompile(`^\s*` + operandPat + sep + operandPat + `\s*` + descPat + `\s*$`)
	madRe    = regexp.MustCompile(`^\s*` + operandPat + sep + operandPat + sep + operandPat + sep + operandPat + `\s*` + descPat + `\s*$`)
	compRe   = regexp.MustCompile(`^\s*` + operandPat + sep + `([a-z]+)` + sep + `([a-z]+)` + sep + operandPat + `\s*` + descPat + `\s*$`)
	condRe   = regexp.MustCompile(`^\s*` + operandPat + sep + operandPat + sep + `(!?)\s*cmp\.([xy])\s*(?:(&&|\|\|)\s*(!?)\s*cmp\.([xy]))?\s*$`)
	loopRe   = regexp.MustCompile(`^\s*` + operandPat + sep + `i([0-9]+)\s*$`)
	ifuRe    = regexp.MustCompile(`^\s*` + operandPat + sep + operandPat + sep + `b([0-9]+)\s*$`)
	emitRe   = regexp.MustCompile(`^\s*vtx([0-9]+)` + sep + `(true|false)` + sep + `(true|false)\s*$`)
	callRe   = regexp.MustCompile(`^\s*` + operandPat + sep + operandPat + `\s*$`)
	mnemonRe = regexp.MustCompile(`^\s*(\S+)(.*)$`)
)

// Assemble encodes one instruction statement. The text is matched
// case-insensitively; labels resolves branch targets.
func Assemble(text string, labels Labels) (uint32, error) {
	r := mnemonRe.FindStringSubmatch(strings.ToLower(text))
	if r == nil {
		return 0, errorf(KindGrammar, "empty instruction")
	}
	m, ok := Lookup(r[1])
	if !ok {
		return 0, errorf(KindUnknownSymbol, "%s: no such instruction", r[1])
	}
	return Encode(m, r[2], labels)
}

// Encode parses the operand list for m and packs it into an instruction word.
func Encode(m Mnemonic, operands string, labels Labels) (uint32, error) {
	f, err := Parse(m, operands, labels)
	if err != nil {
		return 0, err
	}
	return formats[m.Format].encode(m, f)
}

// Parse converts the operand list of m into a field record.
func Parse(m Mnemonic, operands string, labels Labels) (Fields, error) {
	if m.Format >= numFormats {
		return Fields{}, errorf(KindUnknownSymbol, "%s: unknown format %d", m.Name, m.Format)
	}
	f, err := formats[m.Format].parse(labels, strings.ToLower(operands))
	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == KindGrammar {
			return Fields{}, errorf(KindGrammar, "%s: %s", m.Name, e.Message)
		}
		return Fields{}, err
	}
	return f, nil
}

func malformed(operands string) error {
	return errorf(KindGrammar, "malformed operand list %q", strings.TrimSpace(operands))
}

func parseNumber(s string) (uint32, error) {
	base := 10
	if strings.HasPrefix(s, "0x") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, errorf(KindRange, "number %q out of range", s)
	}
	return uint32(v), nil
}

func resolveAll(tokens []string, ctxs ...Context) ([]Operand, error) {
	ops := make([]Operand, len(ctxs))
	for i, ctx := range ctxs {
		op, err := Resolve(tokens[i], ctx)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}

func labelAddress(labels Labels, name string) (uint32, error) {
	if labels != nil {
		if addr, ok := labels.LabelAddress(name); ok {
			return addr, nil
		}
	}
	return 0, errorf(KindUnresolvedLabel, "undefined label %q", name)
}

func parseArith(_ Labels, s string) (Fields, error) {
	r := arithRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	ops, err := resolveAll(r[1:4], ContextDst, ContextSrc1, ContextSrc2)
	if err != nil {
		return Fields{}, err
	}
	desc, err := parseNumber(r[4])
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		Dst:  ops[0].Register,
		Src1: ops[1].Register,
		Idx:  ops[1].Index,
		Src2: ops[2].Register,
		Desc: desc,
	}, nil
}

func parseUnary(_ Labels, s string) (Fields, error) {
	r := unaryRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	ops, err := resolveAll(r[1:3], ContextDst, ContextSrc1)
	if err != nil {
		return Fields{}, err
	}
	desc, err := parseNumber(r[3])
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		Dst:  ops[0].Register,
		Src1: ops[1].Register,
		Idx:  ops[1].Index,
		Desc: desc,
	}, nil
}

func parseNone(_ Labels, s string) (Fields, error) {
	if strings.TrimSpace(s) != "" {
		return Fields{}, errorf(KindGrammar, "unexpected operands %q", strings.TrimSpace(s))
	}
	return Fields{}, nil
}

func parseCompare(_ Labels, s string) (Fields, error) {
	r := compRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	ops, err := resolveAll([]string{r[1], r[4]}, ContextSrc1, ContextSrc2)
	if err != nil {
		return Fields{}, err
	}
	cmpx, err := parseCompareOp(r[2])
	if err != nil {
		return Fields{}, err
	}
	cmpy, err := parseCompareOp(r[3])
	if err != nil {
		return Fields{}, err
	}
	desc, err := parseNumber(r[5])
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		Src1: ops[0].Register,
		Idx:  ops[0].Index,
		Src2: ops[1].Register,
		CmpX: cmpx,
		CmpY: cmpy,
		Desc: desc,
	}, nil
}

// branchPair resolves the two labels of ifc/ifu: the base address is the
// second label, the count runs from it to the first.
func branchPair(labels Labels, first, second string) (addr uint32, num int32, err error) {
	a1, err := labelAddress(labels, first)
	if err != nil {
		return 0, 0, err
	}
	a2, err := labelAddress(labels, second)
	if err != nil {
		return 0, 0, err
	}
	return a2, int32(a1) - int32(a2), nil
}

func parseCondBranch(labels Labels, s string) (Fields, error) {
	r := condRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	negated := [2]bool{r[3] == "!", r[6] == "!"}
	flag := [2]string{r[4], r[7]}
	op := r[5]
	if flag[0] == flag[1] {
		return Fields{}, errorf(KindCondition, "invalid or redundant condition %q", strings.TrimSpace(s))
	}

	var flags uint32
	for i := range flag {
		if flag[i] == "" || negated[i] {
			continue
		}
		if flag[i] == "x" {
			flags |= condRefX
		} else {
			flags |= condRefY
		}
	}
	switch {
	case op == "&&":
		flags |= CondAnd
	case op == "||":
		flags |= CondOr
	case flag[0] == "y":
		flags |= CondYOnly
	default:
		flags |= CondXOnly
	}

	addr, num, err := branchPair(labels, r[1], r[2])
	if err != nil {
		return Fields{}, err
	}
	return Fields{Flags: flags, Addr: addr, Num: num}, nil
}

func parseCall(labels Labels, s string) (Fields, error) {
	r := callRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	target, err := labelAddress(labels, r[1])
	if err != nil {
		return Fields{}, err
	}
	ret, err := labelAddress(labels, r[2])
	if err != nil {
		return Fields{}, err
	}
	return Fields{Addr: target, Num: int32(ret) - int32(target)}, nil
}

func parseLoop(labels Labels, s string) (Fields, error) {
	r := loopRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	addr, err := labelAddress(labels, r[1])
	if err != nil {
		return Fields{}, err
	}
	if addr == 0 {
		return Fields{}, errorf(KindRange, "loop end label %q must follow at least one instruction", r[1])
	}
	reg, err := parseNumber(r[2])
	if err != nil {
		return Fields{}, err
	}
	return Fields{Addr: addr - 1, Int: reg}, nil
}

func parseUniformBranch(labels Labels, s string) (Fields, error) {
	r := ifuRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	reg, err := parseNumber(r[3])
	if err != nil {
		return Fields{}, err
	}
	addr, num, err := branchPair(labels, r[1], r[2])
	if err != nil {
		return Fields{}, err
	}
	return Fields{Bool: reg, Addr: addr, Num: num}, nil
}

func parseSetEmit(_ Labels, s string) (Fields, error) {
	r := emitRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	vtx, err := parseNumber(r[1])
	if err != nil {
		return Fields{}, err
	}
	return Fields{Vtx: vtx, Prim: r[2] == "true", Winding: r[3] == "true"}, nil
}

// parseMadOperands parses the four mad/madi operands. A relative-index
// suffix is accepted by the grammar only so that encodeMad and encodeMadi
// can reject it: neither format has an index field.
func parseMadOperands(s string, ctxs ...Context) (Fields, error) {
	r := madRe.FindStringSubmatch(s)
	if r == nil {
		return Fields{}, malformed(s)
	}
	ops, err := resolveAll(r[1:5], ctxs...)
	if err != nil {
		return Fields{}, err
	}
	desc, err := parseNumber(r[5])
	if err != nil {
		return Fields{}, err
	}
	f := Fields{
		Dst:  ops[0].Register,
		Src1: ops[1].Register,
		Src2: ops[2].Register,
		Src3: ops[3].Register,
		Desc: desc,
	}
	for _, op := range ops[1:] {
		if op.Index != RelNone {
			f.Idx = op.Index
		}
	}
	return f, nil
}

func parseMad(_ Labels, s string) (Fields, error) {
	return parseMadOperands(s, ContextDst, ContextSrc1, ContextSrc1, ContextSrc2)
}

func parseMadi(_ Labels, s string) (Fields, error) {
	return parseMadOperands(s, ContextDst, ContextSrc1, ContextSrc2, ContextSrc1)
}

// packer accumulates fields into a word and records the first field that
// does not fit.
type packer struct {
	m    Mnemonic
	word uint32
	err  error
}

func newPacker(m Mnemonic) *packer {
	return &packer{m: m, word: uint32(m.Opcode) << 26}
}

func (p *packer) put(name string, v uint32, width, shift uint) {
	if p.err != nil {
		return
	}
	if v >= 1<<width {
		p.err = errorf(KindRange, "%s: %s value 0x%x does not fit in %d bits", p.m.Name, name, v, width)
		return
	}
	p.word |= v << shift
}

// putOffset stores a signed offset of width bits as two's complement.
func (p *packer) putOffset(name string, v int32, width, shift uint) {
	if p.err != nil {
		return
	}
	lo, hi := -int32(1)<<(width-1), int32(1)<<(width-1)-1
	if v < lo || v > hi {
		p.err = errorf(KindRange, "%s: %s %d does not fit in %d bits", p.m.Name, name, v, width)
		return
	}
	p.word |= (uint32(v) & (1<<width - 1)) << shift
}

func (p *packer) noRelative(idx RelIndex) {
	if p.err == nil && idx != RelNone {
		p.err = errorf(KindOperand, "%s: relative addressing [%s] cannot be encoded", p.m.Name, idx)
	}
}

func (p *packer) result() (uint32, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.word, nil
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func encodeArith(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.put("dst", f.Dst, 5, 21)
	p.put("idx", uint32(f.Idx), 2, 19)
	p.put("src1", f.Src1, 7, 12)
	p.put("src2", f.Src2, 5, 7)
	p.put("desc", f.Desc, 7, 0)
	return p.result()
}

func encodeArithImm(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.noRelative(f.Idx)
	p.put("dst", f.Dst, 5, 21)
	p.put("src1", f.Src1, 5, 14)
	p.put("src2", f.Src2, 7, 7)
	p.put("desc", f.Desc, 7, 0)
	return p.result()
}

func encodeUnary(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.put("dst", f.Dst, 5, 21)
	p.put("idx", uint32(f.Idx), 2, 19)
	p.put("src1", f.Src1, 7, 12)
	p.put("desc", f.Desc, 7, 0)
	return p.result()
}

func encodeNone(m Mnemonic, _ Fields) (uint32, error) {
	return newPacker(m).result()
}

func encodeCompare(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.noRelative(f.Idx)
	p.put("cmpx", uint32(f.CmpX), 3, 24)
	p.put("cmpy", uint32(f.CmpY), 3, 21)
	p.put("src1", f.Src1, 7, 12)
	p.put("src2", f.Src2, 5, 7)
	p.put("desc", f.Desc, 7, 0)
	return p.result()
}

func encodeBranch(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.put("flags", f.Flags, 4, 22)
	p.put("address", f.Addr, 12, 10)
	p.putOffset("offset", f.Num, 10, 0)
	return p.result()
}

func encodeLoop(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.put("integer register", f.Int, 4, 22)
	p.put("address", f.Addr, 12, 10)
	p.putOffset("offset", f.Num, 10, 0)
	return p.result()
}

func encodeUniformBranch(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.put("boolean register", f.Bool, 4, 22)
	p.put("address", f.Addr, 12, 10)
	p.putOffset("offset", f.Num, 10, 0)
	return p.result()
}

func encodeSetEmit(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.put("vertex", f.Vtx, 2, 24)
	p.put("primitive", boolBit(f.Prim), 1, 23)
	p.put("winding", boolBit(f.Winding), 1, 22)
	return p.result()
}

func encodeMad(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.noRelative(f.Idx)
	p.put("dst", f.Dst, 5, 24)
	p.put("src1", f.Src1, 7, 17)
	p.put("src2", f.Src2, 7, 10)
	p.put("src3", f.Src3, 5, 5)
	p.put("desc", f.Desc, 5, 0)
	return p.result()
}

func encodeMadi(m Mnemonic, f Fields) (uint32, error) {
	p := newPacker(m)
	p.noRelative(f.Idx)
	p.put("dst", f.Dst, 5, 24)
	p.put("src1", f.Src1, 7, 17)
	p.put("src2", f.Src2, 5, 12)
	p.put("src3", f.Src3, 7, 5)
	p.put("desc", f.Desc, 5, 0)
	return p.result()
}
