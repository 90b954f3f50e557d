package report

import (
	"fmt"
	"math"

	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/relation"
	"github.com/matzehuels/kinreport/pkg/render/scene"
	"github.com/matzehuels/kinreport/pkg/render/table"
)

// SectionKind identifies a page of the genealogy report.
type SectionKind int

const (
	CoverPage SectionKind = iota
	TreePage
	PaternalPage
	MaternalPage
	DashboardPage
)

func (k SectionKind) String() string {
	switch k {
	case CoverPage:
		return "cover"
	case TreePage:
		return "tree"
	case PaternalPage:
		return "paternal"
	case MaternalPage:
		return "maternal"
	case DashboardPage:
		return "dashboard"
	}
	return fmt.Sprintf("section(%d)", int(k))
}

// Section is one planned page.
type Section struct {
	Kind SectionKind
	// People is the slice of the branch listed on this page.
	People []kin.Person
	// Part counts from 1 within a branch; Parts is the branch's page count.
	Part, Parts int
	// Total is the branch size across all parts.
	Total int
}

// RowsPerPage is how many relatives fit on one branch page.
func RowsPerPage() int {
	return table.Capacity(BodyTop+SectionSize+5, BodyBottom, RowHeight, true)
}

// Plan lists the pages of the genealogy report in order: cover, tree (when
// an image is supplied), paternal pages, maternal pages, dashboard.
// Empty branches get no pages.
func Plan(d Data, opts Options) []Section {
	plan := []Section{{Kind: CoverPage}}
	if opts.TreeImage != nil {
		plan = append(plan, Section{Kind: TreePage})
	}
	plan = appendBranch(plan, PaternalPage, d.Branches.PaternalDisplay())
	plan = appendBranch(plan, MaternalPage, d.Branches.MaternalDisplay())
	return append(plan, Section{Kind: DashboardPage})
}

func appendBranch(plan []Section, kind SectionKind, people []kin.Person) []Section {
	chunks := table.Chunk(people, RowsPerPage())
	for i, c := range chunks {
		plan = append(plan, Section{Kind: kind, People: c, Part: i + 1, Parts: len(chunks), Total: len(people)})
	}
	return plan
}

// Genealogy lays out the multi-page genealogy report.
func Genealogy(d Data, opts Options) (scene.Document, error) {
	opts.setDefaults()
	name := d.Lookup.Principal.DisplayName()
	doc := scene.Document{Title: "Reporte Genealógico: " + name, Unit: scene.UnitMM}

	for _, s := range Plan(d, opts) {
		pg := doc.NewPage(PageWidth, PageHeight)
		var err error
		switch s.Kind {
		case CoverPage:
			err = cover(pg, d, opts)
		case TreePage:
			treePage(pg, opts, name)
		case PaternalPage:
			err = branchPage(pg, opts, relation.Paternal.Title(), s)
		case MaternalPage:
			err = branchPage(pg, opts, relation.Maternal.Title(), s)
		case DashboardPage:
			dashboard(pg, d, opts)
		}
		if err != nil {
			return scene.Document{}, fmt.Errorf("%s page: %w", s.Kind, err)
		}
	}
	footers(&doc, opts)
	return doc, nil
}

func cover(pg *scene.Page, d Data, opts Options) error {
	m := opts.Measurer
	header(pg, m, "Reporte Genealógico", d.Lookup.Principal.DisplayName())

	y := section(pg, "Datos del titular", BodyTop)
	res, err := drawTable(pg, m, y, BodyBottom, FieldColumns, PrincipalRows(d.Lookup, opts.Now))
	if err != nil {
		return err
	}

	direct := d.Branches.Direct
	y = section(pg, fmt.Sprintf("%s (%d)", relation.Direct.Title(), len(direct)), res.Bottom+SectionGap)
	if len(direct) == 0 {
		note(pg, "Sin registros.", y)
		return nil
	}
	_, err = drawTable(pg, m, y, BodyBottom, PersonColumns, PersonRows(direct))
	return err
}

func treePage(pg *scene.Page, opts Options, name string) {
	header(pg, opts.Measurer, "Árbol Genealógico", name)
	b := opts.TreeImage.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw <= 0 || ih <= 0 {
		return
	}
	boxH := BodyBottom - BodyTop
	scale := math.Min(ContentWidth/iw, boxH/ih)
	w, h := iw*scale, ih*scale
	pg.Add(scene.Image{X: Margin + (ContentWidth-w)/2, Y: BodyTop, W: w, H: h, Img: opts.TreeImage})
}

func branchPage(pg *scene.Page, opts Options, title string, s Section) error {
	sub := fmt.Sprintf("Parte %d de %d", s.Part, s.Parts)
	header(pg, opts.Measurer, title, sub)
	y := section(pg, fmt.Sprintf("%s (%d)", title, s.Total), BodyTop)
	_, err := drawTable(pg, opts.Measurer, y, BodyBottom, PersonColumns, PersonRows(s.People))
	return err
}
