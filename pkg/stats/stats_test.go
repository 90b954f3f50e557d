package stats

import (
	"testing"
	"time"

	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/relation"
)

var refNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func intp(n int) *int { return &n }

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(group.Branches{}, Options{Now: refNow})

	if s.Total != 0 {
		t.Errorf("Total = %d, want 0", s.Total)
	}
	for _, b := range append(s.Coarse, s.Fine...) {
		if p := s.Percent(b.Count); p != 0 {
			t.Errorf("bracket %s = %v%%, want 0", b.Label, p)
		}
	}
	if s.Percent(s.Male) != 0 || s.Percent(s.Female) != 0 {
		t.Error("sex percentages should be 0 for an empty snapshot")
	}
	if len(s.Coarse) != 3 || len(s.Fine) != 5 {
		t.Errorf("default schemes not applied: %d coarse, %d fine", len(s.Coarse), len(s.Fine))
	}
}

func TestAggregate(t *testing.T) {
	principal := kin.Person{PaternalSurname: "Pérez", MaternalSurname: "López"}
	relatives := []kin.Person{
		{Relation: "HIJO", Sex: kin.SexMale, Age: intp(5)},
		{Relation: "HIJA", Age: intp(15)},                  // inferred female
		{Relation: "ESPOSA", Sex: kin.SexFemale, Age: intp(40)},
		{Relation: "TIO PATERNO", BirthDate: "01/01/1950"}, // inferred male, 74
		{Relation: "MADRE", Sex: kin.SexFemale},            // unknown age
		{Relation: "CUÑADO", Sex: kin.SexMale, Age: intp(60)},
		{Relation: "OTRO PARIENTE", Age: intp(18)}, // ends in E: unknown sex
	}
	b := group.Split(principal, relatives)
	s := Aggregate(b, Options{Now: refNow})

	if s.Total != 7 {
		t.Fatalf("Total = %d, want 7", s.Total)
	}
	if s.Male != 3 || s.Female != 3 || s.UnknownSex != 1 {
		t.Errorf("sex = M%d F%d ?%d, want M3 F3 ?1", s.Male, s.Female, s.UnknownSex)
	}
	if s.Inferred != 2 {
		t.Errorf("Inferred = %d, want 2", s.Inferred)
	}
	if s.UnknownAge != 1 {
		t.Errorf("UnknownAge = %d, want 1", s.UnknownAge)
	}

	wantCoarse := []int{2, 3, 1} // 5,15 | 40,60,18 | 74
	for i, w := range wantCoarse {
		if s.Coarse[i].Count != w {
			t.Errorf("coarse[%s] = %d, want %d", s.Coarse[i].Label, s.Coarse[i].Count, w)
		}
	}
	wantFine := []int{1, 2, 1, 1, 1} // 5 | 15,18 | 40 | 60 | 74
	for i, w := range wantFine {
		if s.Fine[i].Count != w {
			t.Errorf("fine[%s] = %d, want %d", s.Fine[i].Label, s.Fine[i].Count, w)
		}
	}

	sum := 0
	for _, n := range s.Branch {
		sum += n
	}
	if sum != s.Total {
		t.Errorf("branch counts sum %d, want %d", sum, s.Total)
	}
	if s.Children != 2 {
		t.Errorf("Children = %d, want 2", s.Children)
	}
	if s.Branch[relation.Direct] != 3 {
		t.Errorf("Direct = %d, want 3", s.Branch[relation.Direct])
	}
}

func TestPercent(t *testing.T) {
	s := Snapshot{Total: 4}
	if got := s.Percent(1); got != 0.25 {
		t.Errorf("Percent(1) = %v, want 0.25", got)
	}
	if got := s.Percent(4); got != 1 {
		t.Errorf("Percent(4) = %v, want 1", got)
	}
	if got := (Snapshot{}).Percent(3); got != 0 {
		t.Errorf("zero total Percent = %v, want 0", got)
	}
}

func TestInferSex(t *testing.T) {
	tests := []struct {
		label string
		want  kin.Sex
	}{
		{"HIJO", kin.SexMale},
		{"Tía", kin.SexFemale},
		{"primo ", kin.SexMale},
		{"Padre/Madre", kin.SexUnknown},
		{"CONYUGE", kin.SexUnknown},
		{"", kin.SexUnknown},
	}
	for _, tt := range tests {
		if got := InferSex(tt.label); got != tt.want {
			t.Errorf("InferSex(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestSchemes(t *testing.T) {
	c := CoarseScheme()
	for age, want := range map[int]int{0: 0, 17: 0, 18: 1, 60: 1, 61: 2, 99: 2} {
		if got := c.Index(age); got != want {
			t.Errorf("coarse.Index(%d) = %d, want %d", age, got, want)
		}
	}
	f := FineScheme()
	for age, want := range map[int]int{10: 0, 11: 1, 20: 1, 21: 2, 41: 3, 60: 3, 61: 4} {
		if got := f.Index(age); got != want {
			t.Errorf("fine.Index(%d) = %d, want %d", age, got, want)
		}
	}
}

func TestNewScheme(t *testing.T) {
	s, err := NewScheme(12, 30)
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	want := []string{"0-12", "13-30", "30+"}
	for i, l := range want {
		if s.Labels[i] != l {
			t.Errorf("label %d = %q, want %q", i, s.Labels[i], l)
		}
	}
	if _, err := NewScheme(); err == nil {
		t.Error("empty scheme should fail")
	}
	if _, err := NewScheme(30, 12); err == nil {
		t.Error("descending scheme should fail")
	}
	if _, err := NewScheme(12, 12); err == nil {
		t.Error("duplicate breakpoint should fail")
	}
}
