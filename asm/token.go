package asm

import "fmt"

// Span represents a source location span.
type Span struct {
	Start  Position
	End    Position
	Source string // Source file name or identifier
}

// Position represents a position in source text. Line and Column are
// 1-based; a zero Line means the position is unknown.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// StatementKind classifies the body of a source line.
type StatementKind uint8

const (
	StmtEmpty StatementKind = iota
	StmtDirective
	StmtInstruction
)

func (k StatementKind) String() string {
	switch k {
	case StmtEmpty:
		return "empty"
	case StmtDirective:
		return "directive"
	case StmtInstruction:
		return "instruction"
	default:
		return fmt.Sprintf("statement(%d)", uint8(k))
	}
}

// Line is one lexed source line: an optional label followed by an optional
// directive or instruction.
type Line struct {
	Number int
	Text   string // raw text, comment included

	Label    string // lowercased, empty if none
	LabelCol int

	Kind    StatementKind
	Name    string // directive name without the dot, or mnemonic; lowercased
	NameCol int
	Args    string // operand text after Name, case preserved
	ArgsCol int
}

func (l Line) span(source string, col int) Span {
	pos := Position{Line: l.Number, Column: col}
	end := Position{Line: l.Number, Column: len(l.Text) + 1}
	if end.Column < col {
		end.Column = col
	}
	return Span{Start: pos, End: end, Source: source}
}
