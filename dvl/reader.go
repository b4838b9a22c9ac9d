package dvl

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Decoding errors.
var (
	ErrTruncated = errors.New("dvl: truncated data")
	ErrBadMagic  = errors.New("dvl: bad magic")
)

// Decode parses a DVLB container. Label and input names are resolved
// against each entry point's symbol pool.
func Decode(data []byte) (*Container, error) {
	r := reader{data: data}
	magic, err := r.word(0)
	if err != nil {
		return nil, err
	}
	if magic != MagicDVLB {
		return nil, fmt.Errorf("%w: DVLB 0x%08x", ErrBadMagic, magic)
	}
	n, err := r.word(4)
	if err != nil {
		return nil, err
	}
	if uint64(n)*4+dvlbHeaderSize > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d entry offsets", ErrTruncated, n)
	}

	c := &Container{}
	c.Program, err = r.program(dvlbHeaderSize + 4*int(n))
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		off, _ := r.word(dvlbHeaderSize + 4*i)
		e, err := r.entry(int(off))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

type reader struct {
	data []byte
}

func (r reader) word(offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(r.data) {
		return 0, fmt.Errorf("%w: word at 0x%x", ErrTruncated, offset)
	}
	return binary.LittleEndian.Uint32(r.data[offset:]), nil
}

// words reads count words starting at offset.
func (r reader) words(offset int, count uint32) ([]uint32, error) {
	if uint64(offset)+4*uint64(count) > uint64(len(r.data)) {
		return nil, fmt.Errorf("%w: %d words at 0x%x", ErrTruncated, count, offset)
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(r.data[offset+4*i:])
	}
	return out, nil
}

func (r reader) program(base int) (*Program, error) {
	header, err := r.words(base, dvlpHeaderSize/4)
	if err != nil {
		return nil, err
	}
	if header[0] != MagicDVLP {
		return nil, fmt.Errorf("%w: DVLP 0x%08x", ErrBadMagic, header[0])
	}
	p := &Program{}
	if p.Code, err = r.words(base+int(header[2]), header[3]); err != nil {
		return nil, err
	}
	raw, err := r.words(base+int(header[4]), 2*header[5])
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(raw); i += 2 {
		p.Opdescs = append(p.Opdescs, Opdesc{Word: raw[i], Mask: raw[i+1]})
	}
	return p, nil
}

func (r reader) entry(base int) (*EntryPoint, error) {
	header, err := r.words(base, dvleHeaderSize/4)
	if err != nil {
		return nil, err
	}
	if header[0] != MagicDVLE {
		return nil, fmt.Errorf("%w: DVLE 0x%08x", ErrBadMagic, header[0])
	}
	e := NewEntryPoint(Stage((header[1] >> 16) & 1))
	e.Main, e.EndMain = header[2], header[3]
	t := e.Tables

	symOffset, symSize := base+int(header[14]), int(header[15])
	if symOffset+symSize > len(r.data) {
		return nil, fmt.Errorf("%w: symbol pool", ErrTruncated)
	}
	t.loadSymbols(r.data[symOffset : symOffset+symSize])

	raw, err := r.words(base+int(header[6]), 5*header[7])
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(raw); i += 5 {
		c := Constant{Kind: ConstantKind(raw[i] & 0xFFFF), Register: uint16(raw[i] >> 16)}
		copy(c.Values[:], raw[i+1:i+5])
		t.Constants = append(t.Constants, c)
	}

	if raw, err = r.words(base+int(header[8]), 4*header[9]); err != nil {
		return nil, err
	}
	for i := 0; i < len(raw); i += 4 {
		name, _ := t.SymbolAt(raw[i+3])
		t.Labels = append(t.Labels, Label{Offset: raw[i+1], Symbol: raw[i+3], Name: name})
		if _, dup := t.labelAddr[name]; !dup {
			t.labelAddr[name] = raw[i+1]
		}
	}

	if raw, err = r.words(base+int(header[10]), 2*header[11]); err != nil {
		return nil, err
	}
	for i := 0; i < len(raw); i += 2 {
		t.Outputs = append(t.Outputs, Output{
			Semantic: uint16(raw[i]),
			Register: uint16(raw[i] >> 16),
			Mask:     raw[i+1],
		})
	}

	if raw, err = r.words(base+int(header[12]), 2*header[13]); err != nil {
		return nil, err
	}
	for i := 0; i < len(raw); i += 2 {
		name, _ := t.SymbolAt(raw[i])
		t.Inputs = append(t.Inputs, Input{
			Start:  uint16(raw[i+1]),
			End:    uint16(raw[i+1] >> 16),
			Symbol: raw[i],
			Name:   name,
		})
	}
	return e, nil
}

// loadSymbols installs a decoded symbol pool and indexes its names.
func (t *Tables) loadSymbols(pool []byte) {
	t.symbols = append([]byte(nil), pool...)
	start := 0
	for i, b := range t.symbols {
		if b != 0 {
			continue
		}
		name := string(t.symbols[start:i])
		if _, ok := t.symbolIdx[name]; !ok {
			t.symbolIdx[name] = uint32(start)
		}
		start = i + 1
	}
}
