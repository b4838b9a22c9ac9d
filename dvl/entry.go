package dvl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateLabel is returned when a label name is declared twice.
var ErrDuplicateLabel = errors.New("duplicate label")

// Tables holds the per-entry-point metadata: constants, labels, bindings
// and the symbol pool their names are interned in.
type Tables struct {
	Constants []Constant
	Labels    []Label
	Outputs   []Output
	Inputs    []Input

	symbols   []byte
	symbolIdx map[string]uint32
	labelAddr map[string]uint32
}

// NewTables creates empty tables.
func NewTables() *Tables {
	return &Tables{
		symbolIdx: make(map[string]uint32),
		labelAddr: make(map[string]uint32),
	}
}

// Intern adds name to the symbol pool once and returns its byte offset.
// Later calls with the same name return the same offset.
func (t *Tables) Intern(name string) uint32 {
	if off, ok := t.symbolIdx[name]; ok {
		return off
	}
	off := uint32(len(t.symbols))
	t.symbols = append(t.symbols, name...)
	t.symbols = append(t.symbols, 0)
	t.symbolIdx[name] = off
	return off
}

// Symbols returns the raw symbol pool: NUL-terminated names in interning
// order.
func (t *Tables) Symbols() []byte {
	return t.symbols
}

// SymbolAt returns the name interned at off.
func (t *Tables) SymbolAt(off uint32) (string, bool) {
	if int(off) >= len(t.symbols) {
		return "", false
	}
	end := strings.IndexByte(string(t.symbols[off:]), 0)
	if end < 0 {
		return "", false
	}
	return string(t.symbols[off : int(off)+end]), true
}

// AddConstant appends a constant record.
func (t *Tables) AddConstant(c Constant) {
	t.Constants = append(t.Constants, c)
}

// AddLabel records a label at a code offset. The address of a label never
// changes once added.
func (t *Tables) AddLabel(name string, offset uint32) (Label, error) {
	if prev, ok := t.labelAddr[name]; ok {
		return Label{}, fmt.Errorf("%w %q (already at 0x%03x)", ErrDuplicateLabel, name, prev)
	}
	l := Label{Offset: offset, Symbol: t.Intern(name), Name: name}
	t.Labels = append(t.Labels, l)
	t.labelAddr[name] = offset
	return l, nil
}

// LabelAddress returns the code offset of a declared label.
func (t *Tables) LabelAddress(name string) (uint32, bool) {
	addr, ok := t.labelAddr[name]
	return addr, ok
}

// LabelAt returns the name of the first label declared at addr.
func (t *Tables) LabelAt(addr uint32) (string, bool) {
	for _, l := range t.Labels {
		if l.Offset == addr {
			return l.Name, true
		}
	}
	return "", false
}

// AddOutput appends an output binding.
func (t *Tables) AddOutput(o Output) {
	t.Outputs = append(t.Outputs, o)
}

// AddInput binds the register range start..end to name.
func (t *Tables) AddInput(start, end uint16, name string) Input {
	in := Input{Start: start, End: end, Symbol: t.Intern(name), Name: name}
	t.Inputs = append(t.Inputs, in)
	return in
}

// EntryPoint is a DVLE section: one shader stage's main range over the
// shared program plus its tables.
type EntryPoint struct {
	Stage   Stage
	Main    uint32
	EndMain uint32
	*Tables
}

// NewEntryPoint creates an entry point with empty tables.
func NewEntryPoint(stage Stage) *EntryPoint {
	return &EntryPoint{Stage: stage, Tables: NewTables()}
}

// Derive returns an entry point for another stage over the same tables.
// Main and EndMain start at zero and are resolved by the caller.
func (e *EntryPoint) Derive(stage Stage) *EntryPoint {
	return &EntryPoint{Stage: stage, Tables: e.Tables}
}
