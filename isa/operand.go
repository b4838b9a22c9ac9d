package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// Context is the operand position a register token is resolved for.
// Register files are position specific: outputs are destination only,
// attributes and uniforms are source only, and uniforms are only reachable
// from the first source.
type Context uint8

const (
	ContextDst Context = iota
	ContextSrc1
	ContextSrc2
)

func (c Context) String() string {
	switch c {
	case ContextDst:
		return "dst"
	case ContextSrc1:
		return "src1"
	case ContextSrc2:
		return "src2"
	default:
		return fmt.Sprintf("context(%d)", uint8(c))
	}
}

// RelIndex selects relative addressing for a first-source operand.
type RelIndex uint8

const (
	RelNone RelIndex = iota // no bracket suffix
	RelA0X                  // [a0.x]
	RelA0Y                  // [a0.y]
	RelAL                   // [aL], the loop counter
)

func (r RelIndex) String() string {
	switch r {
	case RelNone:
		return ""
	case RelA0X:
		return "a0.x"
	case RelA0Y:
		return "a0.y"
	case RelAL:
		return "aL"
	default:
		return fmt.Sprintf("rel(%d)", uint8(r))
	}
}

var relIndexNames = map[string]RelIndex{
	"a0.x": RelA0X,
	"a0.y": RelA0Y,
	"al":   RelAL,
}

// Register file offsets added to the source-level index.
const (
	TempOffset    = 0x10
	UniformOffset = 0x20
)

// Register file sizes. Indices past these would alias the next file.
const (
	NumOutputs    = 16
	NumAttributes = 16
	NumTemps      = 16
	NumUniforms   = 96
)

// Operand is a resolved register reference.
type Operand struct {
	Register uint32
	Index    RelIndex
}

// Resolve maps a register token to its numeric register id for the given
// operand position.
//
// Tokens are a class prefix followed by an index: o (output), v (attribute),
// r (temporary), c (uniform) take a decimal or 0x-prefixed hex index; d is a
// raw register id in hex. First-source operands may carry [a0.x], [a0.y] or
// [aL].
func Resolve(token string, ctx Context) (Operand, error) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if tok == "" {
		return Operand{}, errorf(KindGrammar, "missing %s operand", ctx)
	}

	base := tok
	idx := RelNone
	if i := strings.IndexByte(tok, '['); i >= 0 {
		if !strings.HasSuffix(tok, "]") {
			return Operand{}, errorf(KindGrammar, "unterminated relative index in %q", token)
		}
		if ctx != ContextSrc1 {
			return Operand{}, errorf(KindOperand, "%q: relative addressing is only allowed on src1, not %s", token, ctx)
		}
		r, ok := relIndexNames[tok[i+1:len(tok)-1]]
		if !ok {
			return Operand{}, errorf(KindOperand, "%q: unknown relative index register", token)
		}
		idx = r
		base = tok[:i]
	}

	if len(base) < 2 {
		return Operand{}, errorf(KindGrammar, "malformed register %q", token)
	}
	prefix, digits := base[0], base[1:]

	var offset, limit uint32
	switch prefix {
	case 'o':
		if ctx != ContextDst {
			return Operand{}, errorf(KindOperand, "%s cannot be accessed from %s", token, ctx)
		}
		limit = NumOutputs
	case 'v':
		if ctx == ContextDst {
			return Operand{}, errorf(KindOperand, "%s cannot be accessed from %s", token, ctx)
		}
		limit = NumAttributes
	case 'r':
		offset, limit = TempOffset, NumTemps
	case 'c':
		if ctx != ContextSrc1 {
			return Operand{}, errorf(KindOperand, "%s cannot be accessed from %s", token, ctx)
		}
		offset, limit = UniformOffset, NumUniforms
	case 'd':
		v, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return Operand{}, errorf(KindGrammar, "malformed raw register %q", token)
		}
		return Operand{Register: uint32(v), Index: idx}, nil
	default:
		return Operand{}, errorf(KindOperand, "%s is not a valid register name", token)
	}

	n, err := parseRegisterIndex(digits)
	if err != nil {
		return Operand{}, errorf(KindGrammar, "malformed register index in %q", token)
	}
	if n >= limit {
		return Operand{}, errorf(KindRange, "%s: index %d out of range (max %d)", token, n, limit-1)
	}
	return Operand{Register: n + offset, Index: idx}, nil
}

func parseRegisterIndex(s string) (uint32, error) {
	base := 10
	if strings.HasPrefix(s, "0x") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	return uint32(v), err
}

// RegisterName renders a register id as the token Resolve accepts for ctx.
func RegisterName(reg uint32, ctx Context) string {
	switch ctx {
	case ContextDst:
		switch {
		case reg < NumOutputs:
			return fmt.Sprintf("o%d", reg)
		case reg < TempOffset+NumTemps:
			return fmt.Sprintf("r%d", reg-TempOffset)
		}
	case ContextSrc1:
		switch {
		case reg < NumAttributes:
			return fmt.Sprintf("v%d", reg)
		case reg < TempOffset+NumTemps:
			return fmt.Sprintf("r%d", reg-TempOffset)
		case reg < UniformOffset+NumUniforms:
			return fmt.Sprintf("c%d", reg-UniformOffset)
		}
	case ContextSrc2:
		switch {
		case reg < NumAttributes:
			return fmt.Sprintf("v%d", reg)
		case reg < TempOffset+NumTemps:
			return fmt.Sprintf("r%d", reg-TempOffset)
		}
	}
	return fmt.Sprintf("d%x", reg)
}
