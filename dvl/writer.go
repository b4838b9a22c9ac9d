package dvl

import "encoding/binary"

// Container is a complete DVLB file: the shared program and the entry
// points that run it.
type Container struct {
	Program *Program
	Entries []*EntryPoint
}

// NewContainer creates a container with an empty program and no entry
// points.
func NewContainer() *Container {
	return &Container{Program: NewProgram()}
}

// AddEntryPoint appends an entry point. Entry points are written in the
// order they are added.
func (c *Container) AddEntryPoint(e *EntryPoint) {
	c.Entries = append(c.Entries, e)
}

// Encode serializes the container. The DVLP section directly follows the
// DVLB header; every DVLE starts on a 4-byte boundary.
func (c *Container) Encode() []byte {
	headerSize := dvlbHeaderSize + 4*len(c.Entries)
	program := c.Program.Encode()

	// Calculate section offsets
	entries := make([][]byte, len(c.Entries))
	offsets := make([]uint32, len(c.Entries))
	size := headerSize + len(program)
	for i, e := range c.Entries {
		size = align4(size)
		offsets[i] = uint32(size)
		entries[i] = e.Encode()
		size += len(entries[i])
	}

	buffer := make([]byte, size)
	offset := writeWords(buffer, 0, MagicDVLB, uint32(len(c.Entries)))
	offset = writeWords(buffer, offset, offsets...)
	copy(buffer[offset:], program)
	for i, data := range entries {
		copy(buffer[offsets[i]:], data)
	}
	return buffer
}

// Encode serializes the DVLP section.
func (p *Program) Encode() []byte {
	codeOffset := uint32(dvlpHeaderSize)
	opdescOffset := codeOffset + 4*uint32(len(p.Code))
	symbolOffset := opdescOffset + opdescSize*uint32(len(p.Opdescs))

	buffer := make([]byte, symbolOffset)
	offset := writeWords(buffer, 0,
		MagicDVLP, 0,
		codeOffset, uint32(len(p.Code)),
		opdescOffset, uint32(len(p.Opdescs)),
		symbolOffset, 0, 0, 0,
	)
	offset = writeWords(buffer, offset, p.Code...)
	for _, d := range p.Opdescs {
		offset = writeWords(buffer, offset, d.Word, d.Mask)
	}
	return buffer
}

// Encode serializes the DVLE section.
func (e *EntryPoint) Encode() []byte {
	t := e.Tables
	constOffset := uint32(dvleHeaderSize)
	labelOffset := constOffset + constantSize*uint32(len(t.Constants))
	outputOffset := labelOffset + labelSize*uint32(len(t.Labels))
	inputOffset := outputOffset + outputSize*uint32(len(t.Outputs))
	symbolOffset := inputOffset + inputSize*uint32(len(t.Inputs))
	total := int(symbolOffset) + len(t.symbols)

	buffer := make([]byte, total)
	offset := writeWords(buffer, 0,
		MagicDVLE, (uint32(e.Stage)&1)<<16,
		e.Main, e.EndMain,
		0, 0,
		constOffset, uint32(len(t.Constants)),
		labelOffset, uint32(len(t.Labels)),
		outputOffset, uint32(len(t.Outputs)),
		inputOffset, uint32(len(t.Inputs)),
		symbolOffset, uint32(len(t.symbols)),
	)
	for _, c := range t.Constants {
		offset = writeWords(buffer, offset, uint32(c.Register)<<16|uint32(c.Kind))
		offset = writeWords(buffer, offset, c.Values[:]...)
	}
	for i, l := range t.Labels {
		offset = writeWords(buffer, offset, uint32(i), l.Offset, 0, l.Symbol)
	}
	for _, o := range t.Outputs {
		offset = writeWords(buffer, offset, uint32(o.Semantic)|uint32(o.Register)<<16, o.Mask)
	}
	for _, in := range t.Inputs {
		offset = writeWords(buffer, offset, in.Symbol, uint32(in.End)<<16|uint32(in.Start))
	}
	copy(buffer[offset:], t.symbols)
	return buffer
}

// writeWords writes little-endian words to buffer and returns the new offset.
func writeWords(buffer []byte, offset int, words ...uint32) int {
	for _, word := range words {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	return offset
}

func align4(n int) int {
	return (n + 3) &^ 3
}
