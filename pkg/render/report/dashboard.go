package report

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/kinreport/pkg/relation"
	"github.com/matzehuels/kinreport/pkg/render/chart"
	"github.com/matzehuels/kinreport/pkg/render/scene"
)

// KPI is one headline figure on the dashboard.
type KPI struct {
	Label string
	Value int
}

// KPIs returns the dashboard headline figures.
func (d Data) KPIs() []KPI {
	s := d.Stats
	return []KPI{
		{"Total de familiares", s.Total},
		{"Hombres", s.Male},
		{"Mujeres", s.Female},
		{"Hijos", s.Children},
	}
}

const (
	kpiHeight = 22.0
	kpiGap    = 4.0
	donutR    = 16.0
)

func dashboard(pg *scene.Page, d Data, opts Options) {
	s := d.Stats
	header(pg, opts.Measurer, "Resumen estadístico", d.Lookup.Principal.DisplayName())

	y := BodyTop
	kpis := d.KPIs()
	bw := (ContentWidth - kpiGap*float64(len(kpis)-1)) / float64(len(kpis))
	for i, k := range kpis {
		x := Margin + float64(i)*(bw+kpiGap)
		pg.Add(
			scene.Rect{X: x, Y: y, W: bw, H: kpiHeight, Radius: 2, Fill: scene.ColorStripe, Stroke: scene.ColorRule, StrokeWidth: 0.3},
			scene.Text{X: x + bw/2, Y: y + 11, S: strconv.Itoa(k.Value), Size: 8, Style: scene.Bold, Align: scene.Center, Color: ColorAccent},
			scene.Text{X: x + bw/2, Y: y + 18, S: k.Label, Size: 3.2, Align: scene.Center, Color: scene.ColorText},
		)
	}

	y = section(pg, "Distribución por sexo", y+kpiHeight+8)
	cy := y + 22
	for i, g := range []struct {
		label string
		n     int
		color scene.Color
	}{
		{"Hombres", s.Male, ColorMale},
		{"Mujeres", s.Female, ColorFemale},
	} {
		cx := Margin + ContentWidth*float64(2*i+1)/4
		pg.Add(chart.Donut{
			CX: cx, CY: cy, R: donutR, Thickness: 6,
			Percent: s.Percent(g.n), Color: g.color, Track: ColorTrack, LabelSize: 5,
		}.Ops()...)
		pg.Add(scene.Text{X: cx, Y: cy + donutR + 8, S: fmt.Sprintf("%s (%d)", g.label, g.n), Size: 3.5, Align: scene.Center, Color: scene.ColorText})
	}

	y = section(pg, "Familiares por rama", cy+donutR+14)
	branchColors := make([]scene.Color, 0, relation.NumBranches)
	for _, c := range []relation.Category{relation.Principal, relation.Parent, relation.Cousin, relation.Grandparent} {
		branchColors = append(branchColors, scene.Color(c.Color()))
	}
	pg.Add(chart.Bars{
		X: Margin + 10, Y: y + 6, W: ContentWidth - 20, H: 35, Gap: 8,
		Buckets: s.BranchBuckets(), Colors: branchColors, LabelSize: 3.2,
	}.Ops()...)

	y = section(pg, "Distribución por edad", y+6+35+8)
	half := ContentWidth / 2
	pg.Add(chart.Area{
		X: Margin + 5, W: half - 15, Base: y + 35, H: 30,
		Buckets: s.Fine, Color: "#17A2B8", FillOpacity: 0.3, LabelSize: 3,
	}.Ops()...)
	pg.Add(chart.Bars{
		X: Margin + half + 10, Y: y + 5, W: half - 15, H: 30, Gap: 6,
		Buckets: s.Coarse, Colors: []scene.Color{"#28A745", "#FFC107", "#DC3545"}, LabelSize: 3,
	}.Ops()...)

	note(pg, fmt.Sprintf("Edad desconocida: %d · Sexo no registrado: %d · Sexo inferido por parentesco: %d",
		s.UnknownAge, s.UnknownSex, s.Inferred), y+42)
}
