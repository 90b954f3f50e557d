package tree

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/relation"
	"github.com/matzehuels/kinreport/pkg/render/scene"
)

var fixedNow = time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)

func family() []group.Layer {
	principal := kin.Person{ID: "p1", Name: "Juan Pérez", Relation: "Principal"}
	relatives := []kin.Person{
		{ID: "f1", Name: "María García", Relation: "Cónyuge/Pareja"},
		{ID: "f2", Name: "Carlos Pérez", Relation: "Hijo/Hija"},
		{ID: "f3", Name: "Ana Pérez", Relation: "Hijo/Hija"},
		{ID: "f4", Name: "Pedro Pérez", Relation: "Padre/Madre"},
		{ID: "f5", Name: "Elena López", Relation: "Padre/Madre"},
		{ID: "f7", Name: "Javier Pérez", Relation: "Abuelo/Abuela"},
	}
	return group.Layers(principal, relatives)
}

func TestStartXCentersBlock(t *testing.T) {
	for n := 1; n <= 6; n++ {
		want := (Width - (float64(n)*NodeWidth + float64(n-1)*HSpacing)) / 2
		if got := StartX(Width, n); got != want {
			t.Errorf("StartX(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestLayoutPositions(t *testing.T) {
	res := Layout(family(), Options{Name: "Juan Pérez", Now: fixedNow})

	// Tiers: Abuelo(1) Padre(2) Principal(1) Cónyuge(1) Hijo(2)
	if len(res.Layers) != 5 {
		t.Fatalf("got %d tiers, want 5", len(res.Layers))
	}
	for i, l := range res.Layers {
		want := Margin + Header + CaptionOffset + float64(i)*(CaptionOffset+NodeHeight+VSpacing)
		if l.Y != want {
			t.Errorf("tier %d (%s) y = %v, want %v", i, l.Name, l.Y, want)
		}
	}

	f4, _ := res.Node("f4")
	f5, _ := res.Node("f5")
	if f4.X != StartX(Width, 2) || f5.X != f4.X+NodeWidth+HSpacing {
		t.Errorf("parents at x=%v,%v", f4.X, f5.X)
	}
	if f4.Color != relation.Parent.Color() {
		t.Errorf("parent color = %s", f4.Color)
	}

	p1, ok := res.Node("p1")
	if !ok {
		t.Fatal("principal missing from layout")
	}
	if p1.CenterX() != Width/2 {
		t.Errorf("single node should be centered, centerX = %v", p1.CenterX())
	}
}

func TestTrunkConnectors(t *testing.T) {
	res := Layout(family(), Options{Now: fixedNow})
	for _, n := range res.Nodes {
		x, y1, y2, ok := n.Trunk()
		if n.Layer == 0 {
			if ok {
				t.Errorf("first tier node %s should have no trunk", n.ID)
			}
			continue
		}
		if !ok || x != n.CenterX() || y1 != n.Top() || y2 != n.Top()-VSpacing/2 {
			t.Errorf("trunk of %s = (%v, %v→%v, %v)", n.ID, x, y1, y2, ok)
		}
	}

	lines := 0
	for _, op := range res.Page.Ops {
		if p, ok := op.(scene.Path); ok && p.StrokeWidth == ConnectorWidth {
			lines++
		}
	}
	if want := len(res.Nodes) - res.Layers[0].Count; lines != want {
		t.Errorf("drew %d connectors, want %d", lines, want)
	}
}

func TestResolveHeightMatchesLayout(t *testing.T) {
	principal := kin.Person{ID: "p", Relation: "Principal"}
	labels := []string{"Hijo/Hija", "Padre/Madre", "Primo/Prima", "Tío/Tía", "Abuelo/Abuela", "Hermano/Hermana", "Cónyuge/Pareja"}

	for k := 0; k <= len(labels); k++ {
		var rel []kin.Person
		for i := 0; i < k; i++ {
			rel = append(rel, kin.Person{ID: fmt.Sprint(i), Relation: labels[i]})
		}
		layers := group.Layers(principal, rel)
		res := Layout(layers, Options{Name: "X", Now: fixedNow})

		h := ResolveHeight(layers)
		if h != res.Height {
			t.Errorf("k=%d: ResolveHeight = %v, Layout height = %v", k, h, res.Height)
		}
		ext := scene.Extent(res.Page, scene.Approx{})
		if h < ext.MaxY {
			t.Errorf("k=%d: height %v truncates content ending at %v", k, h, ext.MaxY)
		}
		if want := 292 + 165*float64(len(layers)); h != want {
			t.Errorf("k=%d: height = %v, want %v", k, h, want)
		}
	}
}

func TestResolveHeightNoLayers(t *testing.T) {
	if h := ResolveHeight(nil); h != 292 {
		t.Errorf("ResolveHeight(nil) = %v, want 292", h)
	}
	res := Layout(nil, Options{Now: fixedNow})
	if res.Height != 292 || len(res.Nodes) != 0 {
		t.Errorf("empty layout height=%v nodes=%d", res.Height, len(res.Nodes))
	}
}

func TestFooterAndTitle(t *testing.T) {
	res := Layout(family(), Options{Name: "Juan Pérez", Now: fixedNow})

	var texts []string
	for _, op := range res.Page.Ops {
		if tx, ok := op.(scene.Text); ok {
			texts = append(texts, tx.S)
		}
	}
	joined := strings.Join(texts, "|")
	for _, want := range []string{
		"Árbol Genealógico: Juan Pérez",
		"Fuente: ARBOL GENEALOGICO",
		"Generado el: 5/3/2024",
		"Leyenda de Parentesco:",
		"Hijo/Hija (2)",
		"(Padre/Madre)",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing text %q", want)
		}
	}
	if strings.Contains(joined, "(Principal)") {
		t.Error("principal label should not be drawn")
	}
}

func TestAutoWidth(t *testing.T) {
	var rel []kin.Person
	for i := 0; i < 6; i++ {
		rel = append(rel, kin.Person{ID: fmt.Sprint(i), Relation: "HIJO"})
	}
	layers := group.Layers(kin.Person{}, rel)

	fixed := Layout(layers, Options{Now: fixedNow})
	if fixed.Width != Width {
		t.Errorf("fixed width = %v", fixed.Width)
	}
	wide := Layout(layers, Options{Now: fixedNow, AutoWidth: true})
	if want := BlockWidth(6) + 2*Margin; wide.Width != want {
		t.Errorf("auto width = %v, want %v", wide.Width, want)
	}
	first, _ := wide.Node("0")
	if math.Abs(first.X-Margin) > 1e-9 {
		t.Errorf("widest tier should start at the margin, x = %v", first.X)
	}
}

func TestExportRoundTrip(t *testing.T) {
	res := Layout(family(), Options{Now: fixedNow})
	data, err := MarshalExport(res.Export("Juan", fixedNow))
	if err != nil {
		t.Fatalf("MarshalExport: %v", err)
	}
	e, err := UnmarshalExport(data)
	if err != nil {
		t.Fatalf("UnmarshalExport: %v", err)
	}
	if len(e.Nodes) != len(res.Nodes) || len(e.Connectors) != len(res.Nodes)-res.Layers[0].Count {
		t.Errorf("export has %d nodes, %d connectors", len(e.Nodes), len(e.Connectors))
	}

	if _, err := UnmarshalExport([]byte(`{"width":0,"height":1}`)); err == nil {
		t.Error("zero width should fail validation")
	}
	if _, err := UnmarshalExport([]byte(`{"width":1,"height":1,"nodes":[{"id":"a"},{"id":"a"}]}`)); err == nil {
		t.Error("duplicate ids should fail validation")
	}
}

func ExampleResolveHeight() {
	layers := group.Layers(kin.Person{Name: "Juan"}, []kin.Person{
		{Name: "Ana", Relation: "HIJA"},
		{Name: "Luis", Relation: "HIJO"},
	})
	fmt.Println(len(layers), ResolveHeight(layers))
	// Output: 2 622
}
