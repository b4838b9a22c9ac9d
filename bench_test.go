package shbin

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/gogpu/shbin/isa"
)

// ---------------------------------------------------------------------------
// Benchmark sources, realistic shaders at different sizes
// ---------------------------------------------------------------------------

// shaderPassthrough copies position and color through.
const shaderPassthrough = `
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

// shaderTransform applies a 4x4 uniform matrix and a lighting term.
const shaderTransform = `
.const c20, 1.0, 0.0, 0.5, 1.0
.const c21, 0.25, 0.25, 0.25, 1.0
.const i0, 4, 0, 1, 0
.const b0, 1
.out o0, result.position, 0xf
.out o1, result.color, 0xf
.out o2, result.texcoord0, 0x3
.uniform c0, c3, projection
.uniform c4, c7, modelview
.uniform c8, c8, light
.uniform b1, b1, lit
.opdesc xyzw, xyzw, xyzw
.opdesc x___, xyzw, xyzw
.opdesc _y__, xyzw, xyzw
.opdesc __z_, xyzw, xyzw
.opdesc ___w, xyzw, xyzw
.opdesc xyzw, xxxx, -yyyy
main:
    dp4 r0, c4, v0 (0x1)
    dp4 r0, c5, v0 (0x2)
    dp4 r0, c6, v0 (0x3)
    dp4 r0, c7, v0 (0x4)
    dp4 o0, c0, r0 (0x1)
    dp4 o0, c1, r0 (0x2)
    dp4 o0, c2, r0 (0x3)
    dp4 o0, c3, r0 (0x4)
    ifu shade, unlit, b1
    nop
shade:
    dp3 r1, c8, v1 (0x0)
    max r1, r1, v2 (0x0)
    mul o1, c21, r1 (0x0)
    mov o2, v2 (0x0)
unlit:
    end
endmain:
.vsh main, endmain
`

// shaderLoop exercises loops, calls and compare blocks.
var shaderLoop = buildLoopShader(16)

func buildLoopShader(blocks int) string {
	var sb strings.Builder
	sb.WriteString(".opdesc xyzw, xyzw, xyzw\n.const i0, 8, 0, 1, 0\nmain:\n")
	for i := 0; i < blocks; i++ {
		sb.WriteString("    cmp c0, lt, ge, r0 (0x0)\n")
		fmt.Fprintf(&sb, "    ifc b%d_else, b%d_end, cmp.x && !cmp.y\n", i, i)
		sb.WriteString("    add r0, c1, r0 (0x0)\n")
		fmt.Fprintf(&sb, "b%d_else:\n", i)
		fmt.Fprintf(&sb, "    loop b%d_end, i0\n", i)
		sb.WriteString("    mad r1, v0, c2, r1 (0x0)\n")
		fmt.Fprintf(&sb, "b%d_end:\n", i)
		sb.WriteString("    call sub, ret\n")
	}
	sb.WriteString("ret:\n    end\nsub:\n    nop\n    end\nendmain:\n.vsh main, endmain\n")
	return sb.String()
}

type shaderCase struct {
	name   string
	source string
}

var shadersBySize = []shaderCase{
	{"passthrough", shaderPassthrough},
	{"transform", shaderTransform},
	{"loop_blocks", shaderLoop},
}

// ---------------------------------------------------------------------------
// End-to-end assembly
// ---------------------------------------------------------------------------

// BenchmarkAssemble benchmarks both passes plus container encoding.
// Reports allocations and throughput in source bytes/sec.
func BenchmarkAssemble(b *testing.B) {
	for _, sc := range shadersBySize {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.source)))
			b.ResetTimer()

			var result []byte
			for i := 0; i < b.N; i++ {
				var err error
				result, err = Assemble(sc.source)
				if err != nil {
					b.Fatalf("assemble failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkDecode benchmarks parsing an assembled container back.
func BenchmarkDecode(b *testing.B) {
	for _, sc := range shadersBySize {
		data, err := Assemble(sc.source)
		if err != nil {
			b.Fatalf("assemble failed: %v", err)
		}
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := Decode(data); err != nil {
					b.Fatalf("decode failed: %v", err)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Single instruction encoding
// ---------------------------------------------------------------------------

// BenchmarkEncodeInstruction benchmarks one statement per format class.
func BenchmarkEncodeInstruction(b *testing.B) {
	labels := benchLabels{"a": 5, "b": 2}
	statements := []string{
		"dp4 o0, c0[a0.x], r1 (0x1)",
		"mov o0, c4 (0x5)",
		"mad r1, v0, c2, r3 (0x2)",
		"cmp v0, lt, ge, r2 (0x3)",
		"ifc a, b, cmp.x && !cmp.y",
		"loop b, i1",
		"end",
	}
	for _, stmt := range statements {
		b.Run(strings.Fields(stmt)[0], func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := isa.Assemble(stmt, labels); err != nil {
					b.Fatalf("%s: %v", stmt, err)
				}
			}
		})
	}
}

type benchLabels map[string]uint32

func (l benchLabels) LabelAddress(name string) (uint32, bool) {
	addr, ok := l[name]
	return addr, ok
}
