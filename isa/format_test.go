package isa

import (
	"testing"
)

type labelMap map[string]uint32

func (m labelMap) LabelAddress(name string) (uint32, bool) {
	a, ok := m[name]
	return a, ok
}

var testLabels = labelMap{"start": 0, "b": 2, "a": 5}

func TestAssemble_Words(t *testing.T) {
	tests := []struct {
		name string
		text string
		want uint32
	}{
		{"add temp dst", "add r0, v0, v0 (0x0)", 0x02000000},
		{"uppercase", "ADD R0, V0, V0 (0x0)", 0x02000000},
		{"mov uniform", "mov o0, c4 (0x5)", 0x4C024005},
		{"dp4 relative", "dp4 o0, c0[a0.x], r1 (0x1)", 0x080A0881},
		{"decimal desc", "mul r2, r1, v3 (10)", 0x20000000 | 0x12<<21 | 0x11<<12 | 0x3<<7 | 10},
		{"mad", "mad r1, v0, c2, r3 (0x2)", 0xF1008A62},
		{"madi", "madi o1, c1, r2, c3 (0x1)", 0xC0000000 | 0x1<<24 | 0x21<<17 | 0x12<<12 | 0x23<<5 | 0x1},
		{"dphi", "dphi r0, v1, r2 (0x4)", 0x18<<26 | 0x10<<21 | 0x1<<14 | 0x12<<7 | 0x4},
		{"cmp", "cmp v0, lt, ge, r2 (0x3)", 0xBAA00903},
		{"setemit", "setemit vtx2, true, false", 0xAE800000},
		{"nop", "nop", 0x84000000},
		{"end", "end", 0x88000000},
		{"emit", "emit", 0xA8000000},
		{"ifc and", "ifc a, b, cmp.x && !cmp.y", 0xA2400803},
		{"ifc single y", "ifc a, b, cmp.y", 0xA1C00803},
		{"ifc single negated x", "ifc a, b, !cmp.x", 0xA0800803},
		{"ifc or reversed", "ifc a, b, cmp.y || cmp.x", 0xA3000803},
		{"call backwards", "call a, b", 0x900017FD},
		{"loop", "loop b, i1", 0xA4400400},
		{"ifu", "ifu a, b, b3", 0x9CC00803},
		{"raw register", "mov d1f, d7f (0x0)", 0x13<<26 | 0x1F<<21 | 0x7F<<12},
		{"hex index", "mov r0x2, v0x3 (0x0)", 0x13<<26 | 0x12<<21 | 0x3<<12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assemble(tt.text, testLabels)
			if err != nil {
				t.Fatalf("Assemble(%q) error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Assemble(%q) = 0x%08X, want 0x%08X", tt.text, got, tt.want)
			}
		})
	}
}

func TestAssemble_OpcodeInTopBits(t *testing.T) {
	for _, m := range Mnemonics() {
		if m.Format != FormatArith && m.Format != FormatUnary && m.Format != FormatArithImm {
			continue
		}
		text := m.Name + " r0, v0, v1 (0x1)"
		if m.Format == FormatUnary {
			text = m.Name + " r0, v0 (0x1)"
		}
		w, err := Assemble(text, nil)
		if err != nil {
			t.Errorf("Assemble(%q) error: %v", text, err)
			continue
		}
		if Opcode(w>>26) != m.Opcode {
			t.Errorf("%s: opcode bits = 0x%02X, want 0x%02X", m.Name, w>>26, m.Opcode)
		}
		again, _ := Assemble(text, nil)
		if again != w {
			t.Errorf("%s: encoding not deterministic: 0x%08X vs 0x%08X", m.Name, w, again)
		}
	}
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ErrorKind
	}{
		{"unknown mnemonic", "foo r0, v0 (0x0)", KindUnknownSymbol},
		{"output as source", "mov r0, o1 (0x0)", KindOperand},
		{"attribute as dst", "mov v0, v1 (0x0)", KindOperand},
		{"uniform as src2", "add r0, c0, c1 (0x0)", KindOperand},
		{"unknown register class", "mov r0, x1 (0x0)", KindOperand},
		{"relative on src2", "add r0, v0, r1[a0.x] (0x0)", KindOperand},
		{"unknown relative", "mov r0, c0[a1] (0x0)", KindOperand},
		{"desc too wide", "add r0, v0, v0 (0x80)", KindRange},
		{"temp index past file", "mov r16, v0 (0x0)", KindRange},
		{"uniform index past file", "mov r0, c96 (0x0)", KindRange},
		{"raw dst too wide", "mov d20, v0 (0x0)", KindRange},
		{"missing operand", "add r0, v0 (0x0)", KindGrammar},
		{"trailing junk", "mov r0, v0 (0x0) junk", KindGrammar},
		{"operands on nop", "nop r0", KindGrammar},
		{"same flag twice", "ifc a, b, cmp.x && cmp.x", KindCondition},
		{"undefined label", "ifc a, nowhere, cmp.x", KindUnresolvedLabel},
		{"undefined call target", "call nowhere, a", KindUnresolvedLabel},
		{"loop to address zero", "loop start, i0", KindRange},
		{"integer register too wide", "loop a, i16", KindRange},
		{"vertex slot too wide", "setemit vtx4, false, false", KindRange},
		{"imm relative", "dphi r0, v0[a0.x], v1 (0x0)", KindOperand},
		{"imm src1 uniform", "dphi r0, c0, v1 (0x0)", KindRange},
		{"mad relative", "mad r0, v0[a0.y], c1, v2 (0x0)", KindOperand},
		{"madi relative", "madi r0, v0, v1, c2[a0.x] (0x0)", KindOperand},
		{"mad desc too wide", "mad r0, v0, c1, v2 (0x20)", KindRange},
		{"cmp relative", "cmp c0[al], eq, eq, v1 (0x0)", KindOperand},
		{"unknown comparison", "cmp v0, foo, eq, v1 (0x0)", KindUnknownSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Assemble(tt.text, testLabels)
			if err == nil {
				t.Fatalf("Assemble(%q) = 0x%08X, want error", tt.text, w)
			}
			if got := KindOf(err); got != tt.kind {
				t.Errorf("Assemble(%q) error kind = %v, want %v (%v)", tt.text, got, tt.kind, err)
			}
		})
	}
}

func TestAssemble_BranchOffsetLimits(t *testing.T) {
	labels := labelMap{"base": 0x200, "fwd": 0x3FF, "past": 0x400, "back": 0}
	tests := []struct {
		text string
		ok   bool
	}{
		{"call base, fwd", true},   // +511
		{"call base, past", false}, // +512
		{"call base, back", true},  // -512
		{"call fwd, back", false},  // -1023
	}
	for _, tt := range tests {
		_, err := Assemble(tt.text, labels)
		if tt.ok && err != nil {
			t.Errorf("Assemble(%q) error: %v", tt.text, err)
		}
		if !tt.ok && KindOf(err) != KindRange {
			t.Errorf("Assemble(%q) error = %v, want range error", tt.text, err)
		}
	}
}

func TestAssemble_BranchOffsetOutOfRange(t *testing.T) {
	labels := labelMap{"far": 0x600, "near": 0}
	_, err := Assemble("call near, far", labels)
	if KindOf(err) != KindRange {
		t.Fatalf("expected range error for offset 0x600, got %v", err)
	}
	_, err = Assemble("call far, near", labels)
	if KindOf(err) != KindRange {
		t.Fatalf("expected range error for offset -0x600, got %v", err)
	}
}

func TestLookupOpcode_MadFamily(t *testing.T) {
	w, err := Assemble("mad r15, v0, v1, v2 (0x0)", nil)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := LookupOpcode(w)
	if !ok || m.Name != "mad" {
		t.Errorf("LookupOpcode(0x%08X) = %v, %v; want mad", w, m, ok)
	}
	w, err = Assemble("madi r15, v0, v1, v2 (0x0)", nil)
	if err != nil {
		t.Fatal(err)
	}
	m, ok = LookupOpcode(w)
	if !ok || m.Name != "madi" {
		t.Errorf("LookupOpcode(0x%08X) = %v, %v; want madi", w, m, ok)
	}
}

// cmpx shares bit 26 with the opcode, so gt and ge compares carry 0x2F.
func TestLookupOpcode_CompareHighOps(t *testing.T) {
	for _, src := range []string{"cmp r0, gt, eq, v1 (0x0)", "cmp v0, ge, ge, v0 (0x0)"} {
		w, err := Assemble(src, nil)
		if err != nil {
			t.Fatal(err)
		}
		if w>>26 != 0x2F {
			t.Errorf("%q: opcode bits = 0x%02X, want 0x2F", src, w>>26)
		}
		m, ok := LookupOpcode(w)
		if !ok || m.Name != "cmp" {
			t.Errorf("LookupOpcode(0x%08X) = %v, %v; want cmp", w, m, ok)
		}
	}
}
