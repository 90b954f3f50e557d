package stats

import (
	"fmt"
	"sort"
)

// Scheme is a set of age brackets. Upper holds the inclusive upper bound of
// every bracket but the last, in ascending order; the last bracket is open.
type Scheme struct {
	Upper  []int
	Labels []string
}

// CoarseScheme returns the <18 / 18–60 / 60+ brackets.
func CoarseScheme() Scheme {
	return Scheme{Upper: []int{17, 60}, Labels: []string{"<18", "18-60", "60+"}}
}

// FineScheme returns the 0–10 / 11–20 / 21–40 / 41–60 / 60+ brackets.
func FineScheme() Scheme {
	return Scheme{Upper: []int{10, 20, 40, 60}, Labels: []string{"0-10", "11-20", "21-40", "41-60", "60+"}}
}

// NewScheme builds a scheme from ascending upper bounds and derives labels.
func NewScheme(upper ...int) (Scheme, error) {
	if len(upper) == 0 {
		return Scheme{}, fmt.Errorf("at least one breakpoint is required")
	}
	if !sort.IntsAreSorted(upper) {
		return Scheme{}, fmt.Errorf("breakpoints must be ascending: %v", upper)
	}
	labels := make([]string, 0, len(upper)+1)
	lo := 0
	for i, u := range upper {
		if i > 0 && u == upper[i-1] {
			return Scheme{}, fmt.Errorf("duplicate breakpoint %d", u)
		}
		labels = append(labels, fmt.Sprintf("%d-%d", lo, u))
		lo = u + 1
	}
	labels = append(labels, fmt.Sprintf("%d+", upper[len(upper)-1]))
	return Scheme{Upper: append([]int(nil), upper...), Labels: labels}, nil
}

// Index returns the bracket that holds age.
func (s Scheme) Index(age int) int {
	for i, u := range s.Upper {
		if age <= u {
			return i
		}
	}
	return len(s.Upper)
}

func (s Scheme) buckets() []Bucket {
	out := make([]Bucket, len(s.Upper)+1)
	for i := range out {
		if i < len(s.Labels) {
			out[i].Label = s.Labels[i]
		}
	}
	return out
}
