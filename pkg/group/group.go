// Package group buckets classified people into tree layers and report branches.
//
// Layer order and branch order are fixed by [relation.Categories] and
// [relation.Branches]. Empty groups are dropped from output but never shift
// the position of the others. Within a group, input order is kept.
package group

import (
	"strings"

	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/relation"
)

// Layer is one horizontal tier of the family tree.
type Layer struct {
	Category relation.Category
	People   []kin.Person
}

// Name returns the layer caption, e.g. "Hijo/Hija".
func (l Layer) Name() string { return l.Category.String() }

// Layers classifies the principal and every relative into tree layers.
// The principal's relation label is forced to "Principal" when empty.
// People whose label matches no category are left out.
func Layers(principal kin.Person, relatives []kin.Person) []Layer {
	if strings.TrimSpace(principal.Relation) == "" {
		principal.Relation = kin.PrincipalLabel
	}

	var buckets [relation.NumCategories][]kin.Person
	for _, p := range append([]kin.Person{principal}, relatives...) {
		c, ok := relation.Classify(p.Relation)
		if !ok {
			continue
		}
		buckets[c] = append(buckets[c], p)
	}

	layers := make([]Layer, 0, relation.NumCategories)
	for _, c := range relation.Categories() {
		if len(buckets[c]) == 0 {
			continue
		}
		layers = append(layers, Layer{Category: c, People: buckets[c]})
	}
	return layers
}

// Dropped returns the relatives Layers leaves out of the tree.
func Dropped(relatives []kin.Person) []kin.Person {
	var out []kin.Person
	for _, p := range relatives {
		if _, ok := relation.Classify(p.Relation); !ok {
			out = append(out, p)
		}
	}
	return out
}

// Branches holds relatives bucketed for the report documents.
//
// Every relative has exactly one primary branch (Direct, Paternal, Maternal
// or Extended). Children additionally appear in Children, which is a subset
// of Direct, and are listed again by PaternalDisplay.
type Branches struct {
	Direct   []kin.Person
	Children []kin.Person
	Paternal []kin.Person
	Maternal []kin.Person
	Extended []kin.Person
}

// Split applies relation.ClassifyBranch to every relative.
func Split(principal kin.Person, relatives []kin.Person) Branches {
	var b Branches
	for _, p := range relatives {
		r := relation.ClassifyBranch(p, principal)
		switch r.Branch {
		case relation.Direct:
			b.Direct = append(b.Direct, p)
			if r.Child {
				b.Children = append(b.Children, p)
			}
		case relation.Paternal:
			b.Paternal = append(b.Paternal, p)
		case relation.Maternal:
			b.Maternal = append(b.Maternal, p)
		default:
			b.Extended = append(b.Extended, p)
		}
	}
	return b
}

// PaternalDisplay lists children followed by the paternal branch.
// Children therefore show up twice in a report: once under direct family,
// once here.
func (b Branches) PaternalDisplay() []kin.Person {
	out := make([]kin.Person, 0, len(b.Children)+len(b.Paternal))
	out = append(out, b.Children...)
	return append(out, b.Paternal...)
}

// MaternalDisplay lists the maternal branch followed by Extended relatives.
func (b Branches) MaternalDisplay() []kin.Person {
	out := make([]kin.Person, 0, len(b.Maternal)+len(b.Extended))
	out = append(out, b.Maternal...)
	return append(out, b.Extended...)
}

// Counts returns primary-assignment counts indexed by relation.Branch.
// They sum to the number of relatives passed to Split.
func (b Branches) Counts() [relation.NumBranches]int {
	var c [relation.NumBranches]int
	c[relation.Direct] = len(b.Direct)
	c[relation.Paternal] = len(b.Paternal)
	c[relation.Maternal] = len(b.Maternal)
	c[relation.Extended] = len(b.Extended)
	return c
}

// Total returns the number of distinct relatives.
func (b Branches) Total() int {
	return len(b.Direct) + len(b.Paternal) + len(b.Maternal) + len(b.Extended)
}

// All returns every relative once, in branch order.
func (b Branches) All() []kin.Person {
	out := make([]kin.Person, 0, b.Total())
	out = append(out, b.Direct...)
	out = append(out, b.Paternal...)
	out = append(out, b.Maternal...)
	return append(out, b.Extended...)
}
