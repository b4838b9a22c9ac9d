package dvl

// Program is the DVLP section shared by every entry point.
type Program struct {
	Code    []uint32
	Opdescs []Opdesc
}

// NewProgram creates an empty program section.
func NewProgram() *Program {
	return &Program{
		Code:    make([]uint32, 0, 64),
		Opdescs: make([]Opdesc, 0, 16),
	}
}

// AddInstruction appends an instruction word and returns the new code length.
func (p *Program) AddInstruction(word uint32) int {
	p.Code = append(p.Code, word)
	return len(p.Code)
}

// AddOpdesc appends an operand descriptor and returns the new count.
func (p *Program) AddOpdesc(d Opdesc) int {
	p.Opdescs = append(p.Opdescs, d)
	return len(p.Opdescs)
}

// CodeLength is the number of instruction words, i.e. the address of the
// next instruction.
func (p *Program) CodeLength() uint32 {
	return uint32(len(p.Code))
}

// ClearCode discards all instruction words. Operand descriptors are kept.
func (p *Program) ClearCode() {
	p.Code = p.Code[:0]
}
