// Package stats aggregates counts for the report dashboard.
//
// [Aggregate] produces an immutable [Snapshot] once per render. Charts read
// from it; nothing writes to it afterwards.
//
// Sex comes from the registry's explicit marker. When the marker is absent,
// [InferSex] guesses from the final vowel of the relationship label. That
// guess is a last resort and is counted apart in [Snapshot.Inferred] so
// callers can tell how much of a split rests on it.
package stats

import (
	"time"

	"github.com/matzehuels/kinreport/pkg/group"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/relation"
)

// Bucket is one labelled count.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Snapshot holds the aggregated counts for one render.
type Snapshot struct {
	Total      int `json:"total"`
	Male       int `json:"male"`
	Female     int `json:"female"`
	UnknownSex int `json:"unknown_sex"`
	// Inferred counts the Male/Female assignments made by InferSex.
	Inferred int `json:"inferred"`

	Coarse     []Bucket `json:"coarse"`
	Fine       []Bucket `json:"fine"`
	UnknownAge int      `json:"unknown_age"`

	Branch   [relation.NumBranches]int `json:"branch"`
	Children int                       `json:"children"`
}

// Percent returns n as a fraction of Total in [0,1].
// The denominator is guarded to 1, so an empty snapshot yields 0.
func (s Snapshot) Percent(n int) float64 {
	if s.Total <= 0 || n <= 0 {
		return 0
	}
	return float64(n) / float64(s.Total)
}

// BranchBuckets returns the branch counts as labelled buckets in branch order.
func (s Snapshot) BranchBuckets() []Bucket {
	out := make([]Bucket, 0, relation.NumBranches)
	for _, b := range relation.Branches() {
		out = append(out, Bucket{Label: b.Title(), Count: s.Branch[b]})
	}
	return out
}

// Options configures Aggregate.
type Options struct {
	// Now is the reference time for ages derived from birth dates.
	Now    time.Time
	Coarse Scheme
	Fine   Scheme
}

// DefaultOptions returns options with the standard age schemes.
func DefaultOptions() Options {
	return Options{Now: time.Now(), Coarse: CoarseScheme(), Fine: FineScheme()}
}

func (o *Options) setDefaults() {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if len(o.Coarse.Upper) == 0 {
		o.Coarse = CoarseScheme()
	}
	if len(o.Fine.Upper) == 0 {
		o.Fine = FineScheme()
	}
}

// Aggregate computes the snapshot for the relatives in b. Children are
// counted once in Total and once more in Children.
func Aggregate(b group.Branches, opts Options) Snapshot {
	opts.setDefaults()

	s := Snapshot{
		Coarse:   opts.Coarse.buckets(),
		Fine:     opts.Fine.buckets(),
		Branch:   b.Counts(),
		Children: len(b.Children),
	}
	for _, p := range b.All() {
		s.Total++
		s.addSex(p)
		age, ok := p.AgeAt(opts.Now)
		if !ok {
			s.UnknownAge++
			continue
		}
		s.Coarse[opts.Coarse.Index(age)].Count++
		s.Fine[opts.Fine.Index(age)].Count++
	}
	return s
}

func (s *Snapshot) addSex(p kin.Person) {
	sex := p.Sex
	if sex == kin.SexUnknown {
		sex = InferSex(p.Relation)
		if sex != kin.SexUnknown {
			s.Inferred++
		}
	}
	switch sex {
	case kin.SexMale:
		s.Male++
	case kin.SexFemale:
		s.Female++
	default:
		s.UnknownSex++
	}
}

// InferSex guesses sex from the final letter of a relationship label:
// "o" means male, "a" female. Anything else is unknown.
func InferSex(label string) kin.Sex {
	folded := relation.Fold(label)
	if folded == "" {
		return kin.SexUnknown
	}
	switch folded[len(folded)-1] {
	case 'O':
		return kin.SexMale
	case 'A':
		return kin.SexFemale
	}
	return kin.SexUnknown
}
