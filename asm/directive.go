package asm

import (
	"strconv"
	"strings"

	"github.com/gogpu/shbin/dvl"
	"github.com/gogpu/shbin/isa"
)

// directiveFunc applies one directive to the session.
type directiveFunc func(s *Session, l Line, args []string) error

var directives map[string]directiveFunc

func init() {
	directives = map[string]directiveFunc{
		"const":   (*Session).directiveConst,
		"out":     (*Session).directiveOut,
		"opdesc":  (*Session).directiveOpdesc,
		"uniform": (*Session).directiveUniform,
		"vsh":     (*Session).directiveVsh,
		"gsh":     (*Session).directiveGsh,
	}
}

// entryDecl is the label pair named by a .vsh or .gsh directive.
type entryDecl struct {
	main, end string
	line      Line
}

// splitArgs splits a directive operand list on commas.
func splitArgs(args string) ([]string, error) {
	if strings.TrimSpace(args) == "" {
		return nil, nil
	}
	parts := strings.Split(args, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil, errorf(isa.KindGrammar, "empty operand %d in %q", i+1, strings.TrimSpace(args))
		}
	}
	return parts, nil
}

func wantArgs(name string, args []string, counts ...int) error {
	for _, n := range counts {
		if len(args) == n {
			return nil
		}
	}
	want := make([]string, len(counts))
	for i, n := range counts {
		want[i] = strconv.Itoa(n)
	}
	return errorf(isa.KindGrammar, ".%s takes %s operands, got %d", name, strings.Join(want, " or "), len(args))
}

// parseUint parses a decimal or 0x-prefixed hex number.
func parseUint(s string) (uint64, error) {
	s = strings.ToLower(s)
	if strings.HasPrefix(s, "0x") {
		return strconv.ParseUint(s[2:], 16, 32)
	}
	return strconv.ParseUint(s, 10, 32)
}

// parseInt is parseUint with an optional sign.
func parseInt(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	v, err := parseUint(strings.TrimLeft(s, "+-"))
	if err != nil || len(s)-len(strings.TrimLeft(s, "+-")) > 1 {
		return 0, strconv.ErrSyntax
	}
	if neg {
		return -int64(v), nil
	}
	return int64(v), nil
}

// parseIndex parses a register index written in decimal or 0x hex.
func parseIndex(token, digits string, limit uint32) (uint32, error) {
	if digits == "" {
		return 0, errorf(isa.KindGrammar, "missing register index in %q", token)
	}
	v, err := parseUint(digits)
	if err != nil {
		return 0, errorf(isa.KindGrammar, "malformed register index in %q", token)
	}
	if uint32(v) >= limit {
		return 0, errorf(isa.KindRange, "%s: index %d out of range (max %d)", token, v, limit-1)
	}
	return uint32(v), nil
}

// .const b<n>, 0|1
// .const i<n>, x, y, z, w
// .const c<n>, x, y, z, w
func (s *Session) directiveConst(_ Line, args []string) error {
	if len(args) == 0 {
		return errorf(isa.KindGrammar, ".const needs a register operand")
	}
	reg := strings.ToLower(args[0])
	c := dvl.Constant{}
	switch reg[0] {
	case 'b':
		c.Kind = dvl.ConstantBool
		if err := wantArgs("const", args, 2); err != nil {
			return err
		}
	case 'i':
		c.Kind = dvl.ConstantInt
		if err := wantArgs("const", args, 5); err != nil {
			return err
		}
	case 'c':
		c.Kind = dvl.ConstantFloat
		if err := wantArgs("const", args, 5); err != nil {
			return err
		}
	default:
		return errorf(isa.KindOperand, "%s: constant register must be b, i or c", args[0])
	}
	idx, err := parseIndex(args[0], reg[1:], 1<<16)
	if err != nil {
		return err
	}
	c.Register = uint16(idx)

	switch c.Kind {
	case dvl.ConstantBool:
		v, err := parseUint(args[1])
		if err != nil || v > 1 {
			return errorf(isa.KindRange, "bool constant %q must be 0 or 1", args[1])
		}
		c.Values[0] = uint32(v)
	case dvl.ConstantInt:
		var v [4]int64
		for i, a := range args[1:] {
			n, err := parseInt(a)
			if err != nil {
				return errorf(isa.KindGrammar, "malformed integer %q", a)
			}
			v[i] = n
		}
		w, err := isa.PackIntVector(v)
		if err != nil {
			return err
		}
		c.Values[0] = w
	case dvl.ConstantFloat:
		for i, a := range args[1:] {
			f, err := strconv.ParseFloat(a, 32)
			if err != nil {
				return errorf(isa.KindGrammar, "malformed float %q", a)
			}
			w, err := isa.Float24(float32(f))
			if err != nil {
				return err
			}
			c.Values[i] = w
		}
	}

	s.vertex.AddConstant(c)
	return nil
}

// .out o<n>, <semantic>, <mask>
func (s *Session) directiveOut(_ Line, args []string) error {
	if err := wantArgs("out", args, 3); err != nil {
		return err
	}
	reg := strings.ToLower(args[0])
	if reg[0] != 'o' {
		return errorf(isa.KindOperand, "%s: output binding needs an o register", args[0])
	}
	idx, err := parseIndex(args[0], reg[1:], isa.NumOutputs)
	if err != nil {
		return err
	}
	sem, ok := isa.LookupOutputSemantic(args[1])
	if !ok {
		return errorf(isa.KindUnknownSymbol, "%s: no such output semantic", args[1])
	}
	mask, err := parseUint(args[2])
	if err != nil {
		return errorf(isa.KindGrammar, "malformed output mask %q", args[2])
	}
	if mask > isa.MaxOutputMask {
		return errorf(isa.KindRange, "output mask 0x%x wider than 0x%x", mask, isa.MaxOutputMask)
	}

	s.vertex.AddOutput(dvl.Output{Semantic: uint16(sem), Register: uint16(idx), Mask: uint32(mask)})
	return nil
}

// .opdesc <mask>[, <swizzle>[, <swizzle>[, <swizzle>]]]
func (s *Session) directiveOpdesc(_ Line, args []string) error {
	if err := wantArgs("opdesc", args, 1, 2, 3, 4); err != nil {
		return err
	}
	d, err := isa.ParseOpdesc(args[0], args[1:]...)
	if err != nil {
		return err
	}
	s.container.Program.AddOpdesc(dvl.Opdesc{Word: d.Word(), Mask: isa.OpdescMask})
	return nil
}

// .uniform <c|i|b><n>, <c|i|b><m>, <name>
func (s *Session) directiveUniform(_ Line, args []string) error {
	if err := wantArgs("uniform", args, 3); err != nil {
		return err
	}
	first, last := strings.ToLower(args[0]), strings.ToLower(args[1])
	if first[0] != last[0] {
		return errorf(isa.KindOperand, "inconsistent uniform register classes %s and %s", args[0], args[1])
	}
	base, size, ok := isa.UniformFile(first[0])
	if !ok {
		return errorf(isa.KindOperand, "%s: uniform register must be c, i or b", args[0])
	}
	start, err := parseIndex(args[0], first[1:], size)
	if err != nil {
		return err
	}
	end, err := parseIndex(args[1], last[1:], size)
	if err != nil {
		return err
	}
	if start > end {
		return errorf(isa.KindRange, "uniform range %s..%s is reversed", args[0], args[1])
	}
	if strings.ContainsAny(args[2], " \t\x00") {
		return errorf(isa.KindGrammar, "malformed uniform name %q", args[2])
	}

	s.vertex.AddInput(uint16(base+start), uint16(base+end), args[2])
	return nil
}

// .vsh <main>, <end>
func (s *Session) directiveVsh(l Line, args []string) error {
	return s.declareEntry("vsh", &s.vsh, l, args)
}

// .gsh <main>, <end>
func (s *Session) directiveGsh(l Line, args []string) error {
	return s.declareEntry("gsh", &s.gsh, l, args)
}

func (s *Session) declareEntry(name string, decl **entryDecl, l Line, args []string) error {
	if err := wantArgs(name, args, 2); err != nil {
		return err
	}
	if *decl != nil {
		return errorf(isa.KindDuplicate, ".%s already declared on line %d", name, (*decl).line.Number)
	}
	main, end := strings.ToLower(args[0]), strings.ToLower(args[1])
	for _, label := range []string{main, end} {
		if !validName(label) {
			return errorf(isa.KindGrammar, "malformed label %q", label)
		}
	}
	*decl = &entryDecl{main: main, end: end, line: l}
	return nil
}
