// Package relation classifies free-text relationship labels.
//
// The civil registry describes every relative with a label such as "HIJO",
// "TIO PATERNO" or "Cónyuge/Pareja". Two classifications are derived from it:
//
//   - [Classify] maps a label to one of eight tree [Category] values, the
//     generational tiers drawn in the family-tree image.
//   - [ClassifyBranch] maps a relative to a report [Branch] (direct family,
//     paternal, maternal or extended), falling back to surname comparison
//     against the principal when the label carries no branch hint.
//
// Both are pure functions over small ordered rule tables. The first rule that
// matches wins; every label has a defined outcome.
package relation

// Category is a tree tier. The numeric order is the top-to-bottom layer order.
type Category int

const (
	Grandparent Category = iota
	Parent
	Principal
	Spouse
	Sibling
	Child
	UncleAunt
	Cousin
)

// NumCategories is the size of the closed category set.
const NumCategories = 8

var categoryNames = [NumCategories]string{
	Grandparent: "Abuelo/Abuela",
	Parent:      "Padre/Madre",
	Principal:   "Principal",
	Spouse:      "Cónyuge/Pareja",
	Sibling:     "Hermano/Hermana",
	Child:       "Hijo/Hija",
	UncleAunt:   "Tío/Tía",
	Cousin:      "Primo/Prima",
}

var categoryColors = [NumCategories]string{
	Grandparent: "#17A2B8",
	Parent:      "#DC3545",
	Principal:   "#007BFF",
	Spouse:      "#FFC107",
	Sibling:     "#6F42C1",
	Child:       "#28A745",
	UncleAunt:   "#FD7E14",
	Cousin:      "#E83E8C",
}

// String returns the display name, e.g. "Hijo/Hija".
func (c Category) String() string {
	if c < 0 || int(c) >= NumCategories {
		return ""
	}
	return categoryNames[c]
}

// Color returns the legend color as a #RRGGBB string.
func (c Category) Color() string {
	if c < 0 || int(c) >= NumCategories {
		return ""
	}
	return categoryColors[c]
}

// Categories returns all categories in layer order.
func Categories() []Category {
	return []Category{Grandparent, Parent, Principal, Spouse, Sibling, Child, UncleAunt, Cousin}
}

// LegendOrder returns the categories in the order the legend lists them.
func LegendOrder() []Category {
	return []Category{Principal, Spouse, Child, Sibling, Parent, Grandparent, UncleAunt, Cousin}
}

// Branch is a report grouping relative to the principal's two surnames.
type Branch int

const (
	Direct Branch = iota
	Paternal
	Maternal
	Extended
)

// NumBranches is the size of the closed branch set.
const NumBranches = 4

var branchKeys = [NumBranches]string{"direct", "paternal", "maternal", "extended"}

var branchTitles = [NumBranches]string{
	Direct:   "Familia directa",
	Paternal: "Rama paterna",
	Maternal: "Rama materna",
	Extended: "Familiar",
}

// String returns a stable lower-case key ("direct", "paternal", ...).
func (b Branch) String() string {
	if b < 0 || int(b) >= NumBranches {
		return ""
	}
	return branchKeys[b]
}

// Title returns the heading used in reports.
func (b Branch) Title() string {
	if b < 0 || int(b) >= NumBranches {
		return ""
	}
	return branchTitles[b]
}

// Branches returns all branches in report order.
func Branches() []Branch {
	return []Branch{Direct, Paternal, Maternal, Extended}
}
