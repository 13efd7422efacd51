package blocks

import "testing"

func TestSplitHeader(t *testing.T) {
	cases := []struct {
		in   string
		want Header
	}{
		{"A(B)", Header{Name: "A", Badge: "B"}},
		{"A（B）", Header{Name: "A", Badge: "B"}},
		{"A", Header{Name: "A"}},
		{"A(B)(C)", Header{Name: "A(B)", Badge: "C"}},
		{"", Header{}},
		{"  Port A (Q3600) ", Header{Name: "Port A", Badge: "Q3600"}},
		{"Port A()", Header{Name: "Port A"}},
		{"Port A)", Header{Name: "Port A)"}},
		{"Port A(Q", Header{Name: "Port A(Q"}},
		{"A(B(C))", Header{Name: "A", Badge: "B(C)"}},
		{"A(B）", Header{Name: "A(B）"}},
		{"Coal（5500）(CIF)", Header{Name: "Coal（5500）", Badge: "CIF"}},
	}
	for _, tc := range cases {
		if got := SplitHeader(tc.in); got != tc.want {
			t.Errorf("SplitHeader(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
