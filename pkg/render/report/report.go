// Package report lays out the paginated A4 documents: the genealogy report
// and the kinship certificate.
//
// All coordinates are millimetres on a portrait A4 page. Long relative
// lists are split over several pages with [table.Capacity] at a fixed
// bottom threshold; a single table never paginates itself.
package report

import (
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/render/scene"
	"github.com/matzehuels/kinreport/pkg/render/table"
	"github.com/matzehuels/kinreport/pkg/stats"
)

// Page geometry in millimetres.
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 15.0
	ContentWidth = PageWidth - 2*Margin

	HeaderHeight = 28.0
	BodyTop      = HeaderHeight + 12
	// BodyBottom is the lowest Y a table row may reach.
	BodyBottom = PageHeight - 22
	FooterY    = PageHeight - 10

	RowHeight   = 8.0
	SectionGap  = 6.0
	SectionSize = 5.0
)

// DefaultSource is printed in the page footer.
const DefaultSource = "RENIEC"

// DateLayout formats dates printed on the documents.
const DateLayout = "02/01/2006"

// Colors used by the document chrome.
const (
	ColorBand   scene.Color = "#2C3E50"
	ColorAccent scene.Color = "#007BFF"
	ColorTrack  scene.Color = "#E9ECEF"
	ColorMale   scene.Color = "#007BFF"
	ColorFemale scene.Color = "#E83E8C"
)

// Column sets.
var (
	PersonColumns = []table.Column{
		{Title: "DNI", Frac: 0.25},
		{Title: "Nombre completo", Frac: 0.55},
		{Title: "Parentesco", Frac: 0.20},
	}
	FieldColumns = []table.Column{
		{Title: "Campo", Frac: 0.40},
		{Title: "Valor", Frac: 0.60},
	}
)

// Data is everything the documents draw from.
type Data struct {
	Lookup   kin.Lookup
	Branches group.Branches
	Stats    stats.Snapshot
}

// NewData groups and aggregates a lookup.
func NewData(l kin.Lookup, opts stats.Options) Data {
	b := group.Split(l.Principal, l.Relatives)
	return Data{Lookup: l, Branches: b, Stats: stats.Aggregate(b, opts)}
}

// Options configures the documents.
type Options struct {
	Now      time.Time
	Source   string
	Measurer scene.Measurer
	// TreeImage, when set, is placed on its own page after the cover.
	TreeImage image.Image
}

func (o *Options) setDefaults() {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.Measurer == nil {
		o.Measurer = scene.Approx{}
	}
}

// PersonRows renders people as DNI / name / relation rows.
func PersonRows(people []kin.Person) [][]string {
	rows := make([][]string, len(people))
	for i, p := range people {
		rows[i] = []string{p.DNI, p.DisplayName(), p.Relation}
	}
	return rows
}

// PrincipalRows renders the principal's record as field / value rows.
// Blank values are left empty for the table placeholder.
func PrincipalRows(l kin.Lookup, now time.Time) [][]string {
	p := l.Principal
	name := p.Name
	if name == "" {
		name = kin.UnknownName
	}
	age := ""
	if a, ok := p.AgeAt(now); ok {
		age = strconv.Itoa(a)
	}
	sex := ""
	switch p.Sex {
	case kin.SexMale:
		sex = "Masculino"
	case kin.SexFemale:
		sex = "Femenino"
	}
	return [][]string{
		{"DNI", p.DNI},
		{"Nombres", name},
		{"Apellido paterno", p.PaternalSurname},
		{"Apellido materno", p.MaternalSurname},
		{"Sexo", sex},
		{"Edad", age},
		{"Fecha de nacimiento", p.BirthDate},
		{"Dígito verificador", l.CheckDigit},
	}
}

// header draws the colored title band.
func header(pg *scene.Page, m scene.Measurer, title, subtitle string) {
	pg.Add(
		scene.Rect{W: PageWidth, H: HeaderHeight, Fill: ColorBand},
		scene.Text{X: Margin, Y: 13, S: scene.Fit(m, title, 7, scene.Bold, ContentWidth), Size: 7, Style: scene.Bold, Color: scene.ColorWhite},
	)
	if subtitle != "" {
		pg.Add(scene.Text{X: Margin, Y: 21, S: scene.Fit(m, subtitle, 4, scene.Regular, ContentWidth), Size: 4, Color: scene.ColorWhite})
	}
}

// section draws a section caption at y and returns the Y below it.
func section(pg *scene.Page, title string, y float64) float64 {
	pg.Add(
		scene.Text{X: Margin, Y: y + SectionSize, S: title, Size: SectionSize, Style: scene.Bold, Color: scene.ColorTitle},
		scene.Line(Margin, y+SectionSize+2, PageWidth-Margin, y+SectionSize+2, ColorAccent, 0.5),
	)
	return y + SectionSize + 5
}

// footers stamps every page with the source and a page counter.
func footers(doc *scene.Document, opts Options) {
	n := len(doc.Pages)
	for i := range doc.Pages {
		pg := &doc.Pages[i]
		pg.Add(
			scene.Line(Margin, FooterY-5, PageWidth-Margin, FooterY-5, scene.ColorRule, 0.3),
			scene.Text{X: Margin, Y: FooterY, S: "Fuente: " + opts.Source + " · Generado el " + opts.Now.Format(DateLayout), Size: 3, Color: scene.ColorSecondary},
			scene.Text{X: PageWidth - Margin, Y: FooterY, S: fmt.Sprintf("Página %d de %d", i+1, n), Size: 3, Align: scene.Right, Color: scene.ColorSecondary},
		)
	}
}

// drawTable lays out a table on pg and returns its result.
func drawTable(pg *scene.Page, m scene.Measurer, y, maxY float64, cols []table.Column, rows [][]string) (table.Result, error) {
	res, err := table.Layout(table.Spec{
		X: Margin, Y: y, Width: ContentWidth,
		Columns: cols, Rows: rows, Header: true,
		RowHeight: RowHeight, MaxY: maxY,
		Measurer: m, Stripe: scene.ColorStripe,
	})
	if err != nil {
		return res, err
	}
	pg.Add(res.Ops...)
	return res, nil
}

// note draws a muted line of text, used for empty sections and truncation.
func note(pg *scene.Page, s string, y float64) {
	pg.Add(scene.Text{X: Margin, Y: y + 4, S: s, Size: 3.2, Style: scene.Italic, Color: scene.ColorSecondary})
}
