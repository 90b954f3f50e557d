package relation

import (
	"testing"

	"github.com/matzehuels/kinreport/pkg/kin"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Padre/Madre", "padremadre"},
		{"PadreMadre", "padremadre"},
		{"  Cónyuge/Pareja ", "cnyugepareja"},
		{"Tío/Tía", "tota"},
		{"", ""},
		{"ÑANDÚ", "and"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Padre/Madre", " / á x ", "HERMANO", "Cónyuge/Pareja", "a /", "ÜÑ/ÓÍ", "   ", "İstanbul",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tío Paterno", "TIO PATERNO"},
		{"cónyuge", "CONYUGE"},
		{"Muñoz", "MUNOZ"},
		{"  hija ", "HIJA"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		label  string
		want   Category
		wantOK bool
	}{
		// exact display names
		{"Principal", Principal, true},
		{"Cónyuge/Pareja", Spouse, true},
		{"Hijo/Hija", Child, true},
		{"Hermano/Hermana", Sibling, true},
		{"Padre/Madre", Parent, true},
		{"PadreMadre", Parent, true},
		{"Abuelo/Abuela", Grandparent, true},
		{"Tío/Tía", UncleAunt, true},
		{"Primo/Prima", Cousin, true},
		// registry labels
		{"HIJO", Child, true},
		{"HIJA", Child, true},
		{"PADRE", Parent, true},
		{"MADRE", Parent, true},
		{"ABUELA MATERNA", Grandparent, true},
		{"TIO PATERNO", UncleAunt, true},
		{"PRIMO HERMANO", Cousin, true},
		{"ESPOSA", Spouse, true},
		{"HERMANA", Sibling, true},
		{"TITULAR", Principal, true},
		// dropped
		{"SOBRINO", 0, false},
		{"NIETO", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := Classify(tt.label)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Classify(%q) = (%v, %v), want (%v, %v)", tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestClassifyBranch(t *testing.T) {
	principal := kin.Person{Name: "Juan", PaternalSurname: "Pérez", MaternalSurname: "López"}

	tests := []struct {
		name string
		p    kin.Person
		want BranchResult
	}{
		{"child", kin.Person{Relation: "HIJO"}, BranchResult{Branch: Direct, Child: true}},
		{"daughter display name", kin.Person{Relation: "Hijo/Hija"}, BranchResult{Branch: Direct, Child: true}},
		{"uncle paternal", kin.Person{Relation: "Tío Paterno"}, BranchResult{Branch: Paternal}},
		{"grandmother maternal", kin.Person{Relation: "Abuela Materna"}, BranchResult{Branch: Maternal}},
		{"aunt maternal", kin.Person{Relation: "TIA MATERNA"}, BranchResult{Branch: Maternal}},
		{"father", kin.Person{Relation: "PADRE"}, BranchResult{Branch: Paternal}},
		{"mother", kin.Person{Relation: "MADRE"}, BranchResult{Branch: Maternal}},
		{"parent display name", kin.Person{Relation: "Padre/Madre"}, BranchResult{Branch: Paternal}},
		{"nephew by paternal surname", kin.Person{Relation: "SOBRINO", PaternalSurname: "PEREZ"}, BranchResult{Branch: Paternal}},
		{"niece by maternal surname", kin.Person{Relation: "SOBRINA", PaternalSurname: "LOPEZ"}, BranchResult{Branch: Maternal}},
		{"cousin by maternal surname", kin.Person{Relation: "PRIMO", PaternalSurname: "López"}, BranchResult{Branch: Maternal}},
		{"first cousin by paternal surname", kin.Person{Relation: "PRIMO HERMANO", MaternalSurname: "Perez"}, BranchResult{Branch: Paternal}},
		{"cousin maternal side named", kin.Person{Relation: "PRIMA MATERNA", PaternalSurname: "Perez"}, BranchResult{Branch: Maternal}},
		{"cousin without surname match", kin.Person{Relation: "PRIMA", PaternalSurname: "Ruiz"}, BranchResult{Branch: Extended}},
		{"spouse", kin.Person{Relation: "Cónyuge"}, BranchResult{Branch: Direct}},
		{"sibling", kin.Person{Relation: "HERMANO"}, BranchResult{Branch: Direct}},
		{"surname paternal", kin.Person{Relation: "NIETO", MaternalSurname: "PEREZ"}, BranchResult{Branch: Paternal}},
		{"surname maternal", kin.Person{Relation: "CUÑADO", PaternalSurname: "lópez"}, BranchResult{Branch: Maternal}},
		{"no match", kin.Person{Relation: "SUEGRO", PaternalSurname: "Ruiz"}, BranchResult{Branch: Extended}},
		{"empty label", kin.Person{PaternalSurname: "Pérez"}, BranchResult{Branch: Extended}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyBranch(tt.p, principal); got != tt.want {
				t.Errorf("ClassifyBranch(%q) = %+v, want %+v", tt.p.Relation, got, tt.want)
			}
		})
	}
}

func TestClassifyBranchEmptyPrincipalSurnames(t *testing.T) {
	// Empty surnames on both sides must not count as a match.
	got := ClassifyBranch(kin.Person{Relation: "OTRO"}, kin.Person{})
	if got.Branch != Extended {
		t.Errorf("got %v, want Extended", got.Branch)
	}
}

func TestCategoryMetadata(t *testing.T) {
	if len(Categories()) != NumCategories || len(LegendOrder()) != NumCategories {
		t.Fatal("category lists must cover the closed set")
	}
	seen := map[Category]bool{}
	for _, c := range LegendOrder() {
		if c.String() == "" || c.Color() == "" {
			t.Errorf("category %d lacks metadata", c)
		}
		seen[c] = true
	}
	if len(seen) != NumCategories {
		t.Error("legend order has duplicates")
	}
	if Child.Color() != "#28A745" || Principal.Color() != "#007BFF" {
		t.Error("unexpected legend colors")
	}
	if Category(99).String() != "" {
		t.Error("out-of-range category should have no name")
	}
}
