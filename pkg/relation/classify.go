package relation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/kinreport/pkg/kin"
)

// Normalize lower-cases label, strips the characters "/áéíóúüñ" and trims
// surrounding spaces. "Padre/Madre" and "PadreMadre" normalize equally.
func Normalize(label string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '/', 'á', 'é', 'í', 'ó', 'ú', 'ü', 'ñ':
			return -1
		}
		return r
	}, strings.ToLower(label))
	return strings.TrimSpace(s)
}

// Fold upper-cases label and removes diacritics: "Tío Paterno" becomes
// "TIO PATERNO". Token rules match against folded labels.
func Fold(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, label)
	if err != nil {
		s = label
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

type categoryRule struct {
	tokens   []string
	category Category
}

// Order matters: "PRIMO HERMANO" must reach PRIM before HERMAN.
var categoryRules = []categoryRule{
	{[]string{"ABUEL"}, Grandparent},
	{[]string{"PRINCIPAL", "TITULAR"}, Principal},
	{[]string{"PRIM"}, Cousin},
	{[]string{"TIO", "TIA"}, UncleAunt},
	{[]string{"CONYUGE", "ESPOS", "PAREJA"}, Spouse},
	{[]string{"HERMAN"}, Sibling},
	{[]string{"HIJ"}, Child},
	{[]string{"PADRE", "MADRE"}, Parent},
}

var normalizedNames = func() map[string]Category {
	m := make(map[string]Category, NumCategories)
	for _, c := range Categories() {
		m[Normalize(c.String())] = c
	}
	return m
}()

// Classify returns the tree category for label. An exact match against the
// normalized category names is tried first, then the token rules. ok is
// false when nothing matches; such people are left out of the tree.
func Classify(label string) (c Category, ok bool) {
	if c, ok := normalizedNames[Normalize(label)]; ok {
		return c, true
	}
	folded := Fold(label)
	if folded == "" {
		return 0, false
	}
	for _, r := range categoryRules {
		if containsAny(folded, r.tokens) {
			return r.category, true
		}
	}
	return 0, false
}

// BranchResult is the report classification of one relative.
type BranchResult struct {
	Branch Branch
	// Child marks sons and daughters. They belong to Direct and are also
	// listed with the paternal branch in reports.
	Child bool
}

type branchRule struct {
	tokens []string
	result BranchResult
	// bySurname defers to the surname comparison. Cousins and nephews
	// carry no side in their label, but must not fall into a later rule
	// ("PRIMO HERMANO" is not a sibling).
	bySurname bool
}

var branchRules = []branchRule{
	{tokens: []string{"HIJO", "HIJA"}, result: BranchResult{Branch: Direct, Child: true}},
	{tokens: []string{"MATERN"}, result: BranchResult{Branch: Maternal}},
	{tokens: []string{"PATERN"}, result: BranchResult{Branch: Paternal}},
	{tokens: []string{"PADRE", "ABUEL", "TIO", "TIA"}, result: BranchResult{Branch: Paternal}},
	{tokens: []string{"MADRE"}, result: BranchResult{Branch: Maternal}},
	{tokens: []string{"PRIM", "SOBRIN"}, bySurname: true},
	{tokens: []string{"CONYUGE", "ESPOS", "PAREJA", "HERMAN"}, result: BranchResult{Branch: Direct}},
}

// ClassifyBranch places relative p in a report branch. Labels without a
// branch hint fall back to comparing p's surnames with the principal's:
// a match on the principal's paternal surname means Paternal, on the
// maternal surname Maternal. Anything else, including an empty label, is
// Extended.
func ClassifyBranch(p, principal kin.Person) BranchResult {
	label := Fold(p.Relation)
	if label == "" {
		return BranchResult{Branch: Extended}
	}
	for _, r := range branchRules {
		if !containsAny(label, r.tokens) {
			continue
		}
		if r.bySurname {
			break
		}
		return r.result
	}
	return BranchResult{Branch: bySurname(p, principal)}
}

func bySurname(p, principal kin.Person) Branch {
	pat := Fold(principal.PaternalSurname)
	mat := Fold(principal.MaternalSurname)
	for _, s := range []string{Fold(p.PaternalSurname), Fold(p.MaternalSurname)} {
		if s != "" && s == pat {
			return Paternal
		}
	}
	for _, s := range []string{Fold(p.PaternalSurname), Fold(p.MaternalSurname)} {
		if s != "" && s == mat {
			return Maternal
		}
	}
	return Extended
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
