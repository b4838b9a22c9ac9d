// Package dvl builds and decodes DVLB shader containers.
//
// A container bundles one shared program section with one metadata section
// per shader stage:
//
//	DVLB  container header and absolute section offsets
//	DVLP  program: instruction words and operand descriptors
//	DVLE  entry point: stage, main range, constants, labels,
//	      output and uniform bindings, symbol pool (one per stage)
//
// All multi-byte fields are little-endian 32-bit words. Offsets inside DVLP
// and DVLE are relative to the start of their own section; the DVLB header
// records the absolute offset of every DVLE.
//
// # Building
//
//	c := dvl.NewContainer()
//	c.Program.AddInstruction(0x88000000) // end
//	vsh := dvl.NewEntryPoint(dvl.StageVertex)
//	vsh.EndMain = 1
//	c.AddEntryPoint(vsh)
//	data := c.Encode()
//
// A geometry stage that runs the same program is derived from the vertex
// entry point with Derive, sharing its tables.
//
// # Layout
//
// DVLP header (0x28 bytes):
//
//	0x00 magic "DVLP"          0x04 reserved
//	0x08 code offset           0x0C code word count
//	0x10 opdesc offset         0x14 opdesc count
//	0x18 symbol offset         0x1C-0x24 reserved
//
// DVLE header (0x40 bytes):
//
//	0x00 magic "DVLE"          0x04 stage << 16
//	0x08 main offset           0x0C end of main offset
//	0x10-0x14 reserved
//	0x18 constants   (offset, count)   20 bytes each
//	0x20 labels      (offset, count)   16 bytes each
//	0x28 outputs     (offset, count)    8 bytes each
//	0x30 inputs      (offset, count)    8 bytes each
//	0x38 symbols     (offset, size in bytes)
package dvl
