package shbin

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/shbin/asm"
	"github.com/gogpu/shbin/dvl"
	"github.com/gogpu/shbin/isa"
)

func word(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset:])
}

// TestAssembleSingleInstruction checks the full container of a one-word
// vertex shader.
func TestAssembleSingleInstruction(t *testing.T) {
	data, err := Assemble("start: add r0, v0, v0 (0x0)\nend:\n.vsh start, end\n")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	// 12 DVLB + 44 DVLP + (0x40 header + 2 labels + "start\0end\0") DVLE
	if len(data) != 12+44+0x40+0x20+10 {
		t.Fatalf("size = %d, want %d", len(data), 12+44+0x40+0x20+10)
	}

	tests := []struct {
		name   string
		offset int
		want   uint32
	}{
		{"DVLB magic", 0, dvl.MagicDVLB},
		{"entry count", 4, 1},
		{"DVLE offset", 8, 56},
		{"DVLP magic", 12, dvl.MagicDVLP},
		{"code count", 12 + 0x0C, 1},
		{"code word", 12 + 0x28, 0x02000000},
		{"DVLE magic", 56, dvl.MagicDVLE},
		{"stage", 56 + 0x04, 0},
		{"main", 56 + 0x08, 0},
		{"endmain", 56 + 0x0C, 1},
		{"label count", 56 + 0x24, 2},
		{"symbol size", 56 + 0x3C, 10},
	}
	for _, tt := range tests {
		if got := word(data, tt.offset); got != tt.want {
			t.Errorf("%s = 0x%x, want 0x%x", tt.name, got, tt.want)
		}
	}
	if got := data[12+0x28+3] >> 2; got != 0x00 {
		t.Errorf("opcode = 0x%02x, want 0x00", got)
	}
}

func TestAssembleErrors(t *testing.T) {
	data, err := Assemble("main:\n  add o0, o1, v0 (0x0)\n  frob\n.vsh main, main\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if data != nil {
		t.Errorf("output produced on error: %d bytes", len(data))
	}

	var errs asm.SourceErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error %T does not wrap asm.SourceErrors", err)
	}
	if errs.Len() != 2 {
		t.Errorf("errors = %d, want 2:\n%s", errs.Len(), errs.FormatAll())
	}
	if isa.KindOf(err) != isa.KindOperand {
		t.Errorf("first error kind = %v, want operand class", isa.KindOf(err))
	}
	t.Logf("diagnostics:\n%s", errs.FormatAll())
}

func TestAssembleMaxErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxErrors = 1
	_, err := AssembleWithOptions("main:\n  bad1\n  bad2\n.vsh main, main\n", opts)

	var errs asm.SourceErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error %v does not wrap asm.SourceErrors", err)
	}
	if errs.Len() != 1 {
		t.Errorf("errors = %d, want 1", errs.Len())
	}
}

func TestAssembleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.vsh")
	source := `
; passthrough
.out o0, result.position, 0xf
.out o1, result.color, 0xf
.opdesc xyzw, xyzw
main:
    mov o0, v0 (0x0)
    mov o1, v1 (0x0)
    end
endmain:
.vsh main, endmain
`
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := AssembleFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("AssembleFile failed: %v", err)
	}
	fromString, err := Assemble(source)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(fromString) {
		t.Error("AssembleFile and Assemble outputs differ")
	}

	c, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(c.Program.Code) != 3 || len(c.Program.Opdescs) != 1 {
		t.Errorf("code, opdescs = %d, %d, want 3, 1", len(c.Program.Code), len(c.Program.Opdescs))
	}
	if e := c.Entries[0]; len(e.Outputs) != 2 || e.EndMain != 3 {
		t.Errorf("outputs, endmain = %d, %d, want 2, 3", len(e.Outputs), e.EndMain)
	}
}

func TestAssembleFileMissing(t *testing.T) {
	_, err := AssembleFile(filepath.Join(t.TempDir(), "nope.vsh"), DefaultOptions())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestDecodeError(t *testing.T) {
	if _, err := Decode([]byte("DVLX\x00\x00\x00\x00")); !errors.Is(err, dvl.ErrBadMagic) {
		t.Errorf("Decode error = %v, want ErrBadMagic", err)
	}
}
