package ir

import "testing"

func TestWeightOrdering(t *testing.T) {
	for i, a := range Primitives {
		for j, b := range Primitives {
			wa, wb := Weight(a.String()), Weight(b.String())
			switch {
			case i < j && wa >= wb:
				t.Errorf("Weight(%s)=%d should be below Weight(%s)=%d", a, wa, b, wb)
			case i == j && wa != wb:
				t.Errorf("Weight(%s) is not stable: %d vs %d", a, wa, wb)
			}
		}
	}
}

func TestWeightUnknown(t *testing.T) {
	for _, name := range []string{"", "i8", "bool", "F32", "float"} {
		if w := Weight(name); w != -1 {
			t.Errorf("Weight(%q) = %d, want -1", name, w)
		}
	}
}

func TestGetTypeRoundTrip(t *testing.T) {
	for _, typ := range Primitives {
		if got := GetType(typ.String()); got != typ {
			t.Errorf("GetType(%q) = %v, want %v", typ.String(), got, typ)
		}
	}
	if got := GetType("u32"); got != TypeNone {
		t.Errorf("GetType(u32) = %v, want none", got)
	}
}

func TestSizesAndClasses(t *testing.T) {
	tests := []struct {
		typ     Type
		size    int64
		isFloat bool
	}{
		{TypeW, 4, false},
		{TypeL, 8, false},
		{TypeS, 4, true},
		{TypeD, 8, true},
	}
	for _, tt := range tests {
		if got := SizeOfType(tt.typ); got != tt.size {
			t.Errorf("SizeOfType(%s) = %d, want %d", tt.typ, got, tt.size)
		}
		if IsFloat(tt.typ) != tt.isFloat || IsInteger(tt.typ) == tt.isFloat {
			t.Errorf("%s has the wrong class", tt.typ)
		}
	}
}

func TestIsNarrowing(t *testing.T) {
	if !IsNarrowing(F64, I32) {
		t.Error("f64 -> i32 should narrow")
	}
	if IsNarrowing(I32, F32) {
		t.Error("i32 -> f32 should widen")
	}
	if IsNarrowing("bool", I32) || IsNarrowing(I32, "") {
		t.Error("unknown types never narrow")
	}
}
