package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/kinreport/pkg/kin"
)

func family() kin.Lookup {
	age := 52
	return kin.Lookup{
		Principal: kin.Person{ID: "p1", Name: "Juan Pérez", DNI: "12345678"},
		Relatives: []kin.Person{
			{ID: "f1", Name: "Pedro Pérez", Relation: "PADRE", Age: &age},
			{ID: "f2", Name: "Ana Pérez", Relation: "HIJA"},
			{ID: "f3", Name: "Rosa", Relation: "VECINO"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(family(), Options{})

	for _, want := range []string{
		"digraph G {",
		`"p1" [label="Juan Pérez"`,
		`"f1" -> "p1" [label="PADRE"`,
		`"p1" -> "f2" [label="HIJA"`,
		"rank=same;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "VECINO") || strings.Contains(dot, "cluster_other") {
		t.Error("unclassified relatives should be left out by default")
	}
}

func TestToDOTDetailed(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	dot := ToDOT(family(), Options{Detailed: true, IncludeUnclassified: true, Now: now})
	if !strings.Contains(dot, `DNI: 12345678`) || !strings.Contains(dot, `Edad: 52`) {
		t.Errorf("detailed labels missing:\n%s", dot)
	}
	if !strings.Contains(dot, "cluster_other") || !strings.Contains(dot, `"f3"`) {
		t.Errorf("unclassified cluster missing:\n%s", dot)
	}
}

func TestToDOTWithoutIDs(t *testing.T) {
	dot := ToDOT(kin.Lookup{Relatives: []kin.Person{{Relation: "HIJO"}}}, Options{})
	if !strings.Contains(dot, `"n_principal"`) || !strings.Contains(dot, `"n_principal" -> "n_5_0"`) {
		t.Errorf("fallback ids not used:\n%s", dot)
	}
}

func TestToDOTRelativeInPrincipalTier(t *testing.T) {
	l := kin.Lookup{
		Principal: kin.Person{ID: "p1", Name: "Juan Pérez"},
		Relatives: []kin.Person{{ID: "r1", Name: "Luis Pérez", Relation: "TITULAR"}},
	}
	dot := ToDOT(l, Options{})
	if n := strings.Count(dot, `"p1" [label=`); n != 1 {
		t.Errorf("principal node declared %d times:\n%s", n, dot)
	}
	for _, want := range []string{`"p1" [label="Juan Pérez"`, `"r1" [label="Luis Pérez"`, `"p1" -> "r1" [label="TITULAR"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(family(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Juan")) {
		t.Errorf("unexpected svg output: %.200s", svg)
	}
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected a parse error")
	}
}
