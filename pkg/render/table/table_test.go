package table

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/render/scene"
)

func rows(n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = []string{fmt.Sprint(i), "Nombre " + fmt.Sprint(i), "HIJO"}
	}
	return out
}

func threeCols() []Column {
	return []Column{{Title: "DNI", Frac: 0.25}, {Title: "Nombre", Frac: 0.55}, {Title: "Parentesco", Frac: 0.20}}
}

func TestEdges(t *testing.T) {
	s := Spec{X: 10, Width: 200, Columns: threeCols()}
	got := s.Edges()
	want := []float64{10, 60, 170, 210}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("edge %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLayoutTruncates(t *testing.T) {
	s := Spec{X: 0, Y: 100, Width: 180, Columns: threeCols(), Rows: rows(40), Header: true, RowHeight: 10, MaxY: 200}
	res, err := Layout(s)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	// header at 100-110, body rows 110-200: 9 rows
	if res.Drawn != 9 {
		t.Errorf("Drawn = %d, want 9", res.Drawn)
	}
	if res.Truncated(s) != 31 {
		t.Errorf("Truncated = %d, want 31", res.Truncated(s))
	}
	if res.Bottom > s.MaxY {
		t.Errorf("Bottom %v exceeds MaxY %v", res.Bottom, s.MaxY)
	}
	if c := Capacity(100, 200, 10, true); c != res.Drawn {
		t.Errorf("Capacity = %d, Layout drew %d", c, res.Drawn)
	}
}

func TestLayoutUnbounded(t *testing.T) {
	res, err := Layout(Spec{Width: 100, Columns: []Column{{Frac: 0.4}, {Frac: 0.6}}, Rows: rows(25)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Drawn != 25 {
		t.Errorf("Drawn = %d, want 25", res.Drawn)
	}
}

func TestLayoutPlaceholders(t *testing.T) {
	s := Spec{Width: 100, Columns: []Column{{Frac: 0.4}, {Frac: 0.6}}, Rows: [][]string{{"", "x"}, {"y"}}}
	res, err := Layout(s)
	if err != nil {
		t.Fatal(err)
	}
	na := 0
	for _, op := range res.Ops {
		if tx, ok := op.(scene.Text); ok && tx.S == kin.NA {
			na++
		}
	}
	if na != 2 {
		t.Errorf("got %d placeholders, want 2", na)
	}
}

func TestLayoutFitsCells(t *testing.T) {
	m := scene.Approx{}
	s := Spec{Width: 40, Columns: []Column{{Frac: 1}}, Rows: [][]string{{"un nombre extremadamente largo para la celda"}}, FontSize: 4, Padding: 1}
	res, err := Layout(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, op := range res.Ops {
		if tx, ok := op.(scene.Text); ok && m.TextWidth(tx.S, tx.Size, tx.Style) > 38 {
			t.Errorf("cell %q overflows its column", tx.S)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Spec
		ok   bool
	}{
		{"ok", Spec{Width: 1, Columns: threeCols()}, true},
		{"no columns", Spec{Width: 1}, false},
		{"zero width", Spec{Columns: threeCols()}, false},
		{"bad sum", Spec{Width: 1, Columns: []Column{{Frac: 0.5}, {Frac: 0.4}}}, false},
		{"negative", Spec{Width: 1, Columns: []Column{{Frac: 1.5}, {Frac: -0.5}}}, false},
	}
	for _, tt := range tests {
		if err := tt.s.Validate(); (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v", tt.name, err)
		}
	}
}

func TestChunk(t *testing.T) {
	got := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(got) != 3 || len(got[2]) != 1 || got[2][0] != 5 {
		t.Errorf("Chunk = %v", got)
	}
	if Chunk([]int{}, 3) != nil {
		t.Error("empty input should produce no chunks")
	}
	if len(Chunk([]int{1, 2}, 0)) != 2 {
		t.Error("n < 1 should be treated as 1")
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		top, maxY, h float64
		header       bool
		want         int
	}{
		{0, 100, 10, false, 10},
		{0, 100, 10, true, 9},
		{95, 100, 10, false, 0},
		{200, 100, 10, false, 0},
		{0, 100, 0, false, 0},
	}
	for _, tt := range tests {
		if got := Capacity(tt.top, tt.maxY, tt.h, tt.header); got != tt.want {
			t.Errorf("Capacity(%v,%v,%v,%v) = %d, want %d", tt.top, tt.maxY, tt.h, tt.header, got, tt.want)
		}
	}
}
