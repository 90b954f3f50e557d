package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/kinreport/pkg/relation"
	"github.com/matzehuels/kinreport/pkg/render/scene"
)

// certificateTableBottom leaves room below the relatives table for the
// totals and the verification box.
const certificateTableBottom = BodyBottom - 34

// VerificationCode derives a short code from the DNI and the issue date,
// formatted as three dash-separated groups of four hex digits.
func VerificationCode(dni string, at time.Time) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(dni) + "|" + at.Format("20060102")))
	h := strings.ToUpper(hex.EncodeToString(sum[:6]))
	return h[0:4] + "-" + h[4:8] + "-" + h[8:12]
}

// Certificate lays out the one-page kinship certificate. Relatives that do
// not fit the table are left out; the totals still count them.
func Certificate(d Data, opts Options) (scene.Document, error) {
	opts.setDefaults()
	m := opts.Measurer
	p := d.Lookup.Principal
	doc := scene.Document{Title: "Constancia de Parentesco: " + p.DisplayName(), Unit: scene.UnitMM}
	pg := doc.NewPage(PageWidth, PageHeight)

	header(pg, m, "Constancia de Parentesco", p.DisplayName())

	y := section(pg, "Datos del titular", BodyTop)
	res, err := drawTable(pg, m, y, certificateTableBottom, FieldColumns, PrincipalRows(d.Lookup, opts.Now))
	if err != nil {
		return scene.Document{}, fmt.Errorf("principal table: %w", err)
	}

	all := d.Branches.All()
	y = section(pg, fmt.Sprintf("Familiares registrados (%d)", len(all)), res.Bottom+SectionGap)
	bottom := y
	if len(all) == 0 {
		note(pg, "Sin registros.", y)
		bottom = y + 6
	} else {
		res, err = drawTable(pg, m, y, certificateTableBottom, PersonColumns, PersonRows(all))
		if err != nil {
			return scene.Document{}, fmt.Errorf("relatives table: %w", err)
		}
		bottom = res.Bottom
	}

	y = bottom + SectionGap
	c := d.Stats.Branch
	pg.Add(
		scene.Text{X: Margin, Y: y + 4, S: fmt.Sprintf("Total de familiares: %d", d.Stats.Total), Size: 4, Style: scene.Bold, Color: scene.ColorTitle},
		scene.Text{X: Margin, Y: y + 10, S: fmt.Sprintf("%s: %d · %s: %d · %s: %d · %s: %d",
			relation.Direct.Title(), c[relation.Direct],
			relation.Paternal.Title(), c[relation.Paternal],
			relation.Maternal.Title(), c[relation.Maternal],
			relation.Extended.Title(), c[relation.Extended],
		), Size: 3.2, Color: scene.ColorText},
	)

	code := VerificationCode(p.DNI, opts.Now)
	by := y + 15
	pg.Add(
		scene.Rect{X: Margin, Y: by, W: ContentWidth, H: 12, Radius: 2, Fill: scene.ColorStripe, Stroke: ColorAccent, StrokeWidth: 0.4},
		scene.Text{X: PageWidth / 2, Y: by + 7.5, S: "Código de verificación: " + code, Size: 4, Style: scene.Bold, Align: scene.Center, Color: scene.ColorTitle},
	)

	footers(&doc, opts)
	return doc, nil
}
