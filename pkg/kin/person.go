// Package kin defines the people a genealogy lookup returns.
//
// A [Lookup] holds the principal individual (the person whose record anchors
// every report) and the relatives the civil registry associates with them.
// Values are built from one upstream response, live for a single render and
// are never persisted.
//
// Missing fields are not errors. Renderers call [Person.DisplayName] and
// [OrNA] to substitute the literal placeholders [UnknownName] and [NA].
package kin

import (
	"strings"

	"github.com/google/uuid"
)

// Placeholders substituted for absent fields.
const (
	UnknownName = "Desconocido"
	NA          = "N/A"
)

// PrincipalLabel is the relation label forced onto the principal.
const PrincipalLabel = "Principal"

// Sex is the explicit sex marker reported by the registry.
type Sex int

const (
	SexUnknown Sex = iota
	SexMale
	SexFemale
)

// String returns a one-letter code: "M", "F", or "" when unknown.
func (s Sex) String() string {
	switch s {
	case SexMale:
		return "M"
	case SexFemale:
		return "F"
	}
	return ""
}

// ParseSex reads the registry's sex marker. It accepts single letters,
// Spanish words and the numeric codes 1 (male) and 2 (female).
func ParseSex(v string) Sex {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M", "MASCULINO", "HOMBRE", "VARON", "VARÓN", "1":
		return SexMale
	case "F", "FEMENINO", "MUJER", "2":
		return SexFemale
	}
	return SexUnknown
}

// Person is the principal or one of their relatives.
type Person struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Relation        string `json:"relation"`
	PaternalSurname string `json:"paternal_surname,omitempty"`
	MaternalSurname string `json:"maternal_surname,omitempty"`
	Sex             Sex    `json:"sex,omitempty"`
	Age             *int   `json:"age,omitempty"`
	BirthDate       string `json:"birth_date,omitempty"`
	DNI             string `json:"dni,omitempty"`
}

// DisplayName returns the name with surnames, or UnknownName when all are empty.
func (p Person) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.PaternalSurname, p.MaternalSurname} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return UnknownName
	}
	return strings.Join(parts, " ")
}

// Surnames returns "paternal maternal", skipping empty parts.
func (p Person) Surnames() string {
	return strings.TrimSpace(strings.TrimSpace(p.PaternalSurname) + " " + strings.TrimSpace(p.MaternalSurname))
}

// Lookup is one upstream result: the principal plus relatives.
type Lookup struct {
	Principal  Person   `json:"principal"`
	Relatives  []Person `json:"relatives"`
	Quantity   int      `json:"quantity"`
	CheckDigit string   `json:"check_digit,omitempty"`
}

// EnsureIDs assigns a random UUID to every person lacking an ID and forces
// the principal's empty relation label to PrincipalLabel.
// IDs already present are kept, so calling it twice is a no-op.
func (l *Lookup) EnsureIDs() {
	if l.Principal.ID == "" {
		l.Principal.ID = uuid.NewString()
	}
	if strings.TrimSpace(l.Principal.Relation) == "" {
		l.Principal.Relation = PrincipalLabel
	}
	for i := range l.Relatives {
		if l.Relatives[i].ID == "" {
			l.Relatives[i].ID = uuid.NewString()
		}
	}
}

// OrNA returns s, or NA when s is blank.
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NA
	}
	return s
}
