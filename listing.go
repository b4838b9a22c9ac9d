package shbin

import (
	"fmt"
	"strings"

	"github.com/gogpu/shbin/dvl"
	"github.com/gogpu/shbin/isa"
)

// Listing renders a decoded container as annotated assembly text: the code
// section with labels from the first entry point, the operand descriptors,
// then each entry point's tables as directives.
//
// The output is deterministic and stable across runs.
func Listing(c *dvl.Container) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; DVLB: %d entry point(s)\n", len(c.Entries))
	fmt.Fprintf(&sb, "; DVLP: %d instruction(s), %d operand descriptor(s)\n",
		len(c.Program.Code), len(c.Program.Opdescs))

	var names isa.LabelNamer
	labelsAt := make(map[uint32][]string)
	if len(c.Entries) > 0 {
		names = c.Entries[0].LabelAt
		for _, l := range c.Entries[0].Labels {
			labelsAt[l.Offset] = append(labelsAt[l.Offset], l.Name)
		}
	}
	sb.WriteString("\n")
	for addr, w := range c.Program.Code {
		for _, name := range labelsAt[uint32(addr)] {
			fmt.Fprintf(&sb, "%s:\n", name)
		}
		fmt.Fprintf(&sb, "  %03x: %08x  %s\n", addr, w, isa.Disassemble(w, names))
	}

	if len(c.Program.Opdescs) > 0 {
		sb.WriteString("\n; operand descriptors\n")
		for i, d := range c.Program.Opdescs {
			fmt.Fprintf(&sb, "  %02x: %08x  %s\n", i, d.Word, isa.DecodeOpdesc(d.Word))
		}
	}

	for i, e := range c.Entries {
		fmt.Fprintf(&sb, "\n; DVLE %d: %s shader, main 0x%03x, endmain 0x%03x\n", i, e.Stage, e.Main, e.EndMain)
		writeTables(&sb, e.Tables)
	}
	return sb.String()
}

func writeTables(sb *strings.Builder, t *dvl.Tables) {
	for _, c := range t.Constants {
		fmt.Fprintf(sb, "  .const %s\n", constantText(c))
	}
	for _, o := range t.Outputs {
		fmt.Fprintf(sb, "  .out o%d, %s, 0x%x\n", o.Register, isa.OutputSemantic(o.Semantic), o.Mask)
	}
	for _, in := range t.Inputs {
		fmt.Fprintf(sb, "  .uniform %s, %s, %s\n", uniformName(in.Start), uniformName(in.End), in.Name)
	}
	for _, l := range t.Labels {
		fmt.Fprintf(sb, "  ; label %s = 0x%03x\n", l.Name, l.Offset)
	}
}

func constantText(c dvl.Constant) string {
	switch c.Kind {
	case dvl.ConstantBool:
		return fmt.Sprintf("b%d, %d", c.Register, c.Values[0]&1)
	case dvl.ConstantInt:
		v := c.Values[0]
		return fmt.Sprintf("i%d, %d, %d, %d, %d", c.Register,
			int8(v), int8(v>>8), int8(v>>16), int8(v>>24))
	default:
		return fmt.Sprintf("c%d, %g, %g, %g, %g", c.Register,
			isa.DecodeFloat24(c.Values[0]), isa.DecodeFloat24(c.Values[1]),
			isa.DecodeFloat24(c.Values[2]), isa.DecodeFloat24(c.Values[3]))
	}
}

// uniformName maps a uniform register index back to its file and offset.
func uniformName(reg uint16) string {
	for _, class := range []byte{'b', 'i', 'c'} {
		base, size, _ := isa.UniformFile(class)
		if uint32(reg) >= base && uint32(reg) < base+size {
			return fmt.Sprintf("%c%d", class, uint32(reg)-base)
		}
	}
	return fmt.Sprintf("0x%x", reg)
}
