package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/shbin"
)

const source = `.const c20, 1.0, 0.5, 0.0, -2.0
.const i1, 4, 0, -1, 0
.const b2, 1
.out o0, result.position, 0xf
.uniform c0, c3, projection
.uniform i0, i0, loops
.opdesc xyzw, xyzw
main:
    mov o0, v0 (0x0)
    end
endmain:
.vsh main, endmain
`

func disassemble(t *testing.T, args ...string) string {
	t.Helper()
	data, err := shbin.Assemble(source)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "shader.shbin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, path))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute failed: %v\n%s", err, out.String())
	}
	return out.String()
}

func TestListing(t *testing.T) {
	out := disassemble(t)
	want := []string{
		"; DVLB: 1 entry point(s)",
		"; DVLP: 2 instruction(s), 1 operand descriptor(s)",
		"main:\n  000: ",
		"  mov o0, v0 (0x0)\n",
		"  001: ",
		"  00: 8000036f  xyzw, xyzw",
		"; DVLE 0: vertex shader, main 0x000, endmain 0x002",
		"  .const c20, 1, 0.5, 0, -2\n",
		"  .const i1, 4, 0, -1, 0\n",
		"  .const b2, 1\n",
		"  .out o0, result.position, 0xf\n",
		"  .uniform c0, c3, projection\n",
		"  .uniform i0, i0, loops\n",
		"  ; label main = 0x000\n",
		"  ; label endmain = 0x002\n",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("listing missing %q:\n%s", w, out)
		}
	}
}

func TestDump(t *testing.T) {
	out := disassemble(t, "--dump")
	for _, w := range []string{"Program:", "Entries:", "EndMain: (uint32) 2"} {
		if !strings.Contains(out, w) {
			t.Errorf("dump missing %q:\n%s", w, out)
		}
	}
}

func TestBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.shbin")
	if err := os.WriteFile(path, []byte("not a shader"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err == nil {
		t.Error("expected decode error")
	}
}
