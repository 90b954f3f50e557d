package registry

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/kinreport/pkg/kin"
)

// response is the registry envelope. Field names differ between registry
// versions, so every record carries both spellings and [first] picks the
// one that was sent.
type response struct {
	Result struct {
		Person       *personRecord      `json:"person"`
		Coincidences []coincidenceRecord `json:"coincidences"`
		Quantity     flexInt            `json:"quantity"`
	} `json:"result"`
}

type personRecord struct {
	DNI             flexString `json:"dni"`
	Nom             flexString `json:"nom"`
	Nombres         flexString `json:"nombres"`
	Ap              flexString `json:"ap"`
	ApellidoPaterno flexString `json:"apellido_paterno"`
	Am              flexString `json:"am"`
	ApellidoMaterno flexString `json:"apellido_materno"`
	Ge              flexString `json:"ge"`
	Sexo            flexString `json:"sexo"`
	Fn              flexString `json:"fn"`
	FechaNacimiento flexString `json:"fecha_nacimiento"`
	Edad            flexInt    `json:"edad"`
	Dv              flexString `json:"dv"`
}

type coincidenceRecord struct {
	Tipo       flexString `json:"tipo"`
	Parentesco flexString `json:"parentesco"`
	Nom        flexString `json:"nom"`
	Nombres    flexString `json:"nombres"`
	Ap         flexString `json:"ap"`
	Am         flexString `json:"am"`
	DNI        flexString `json:"dni"`
	NumDoc     flexString `json:"numDoc"`
	Ge         flexString `json:"ge"`
	Sexo       flexString `json:"sexo"`
	Edad       flexInt    `json:"edad"`
}

func (r personRecord) person() kin.Person {
	return kin.Person{
		DNI:             strings.TrimSpace(string(r.DNI)),
		Name:            first(r.Nom, r.Nombres),
		PaternalSurname: first(r.Ap, r.ApellidoPaterno),
		MaternalSurname: first(r.Am, r.ApellidoMaterno),
		Sex:             kin.ParseSex(first(r.Ge, r.Sexo)),
		BirthDate:       first(r.Fn, r.FechaNacimiento),
		Age:             r.Edad.ptr(),
		Relation:        kin.PrincipalLabel,
	}
}

func (r coincidenceRecord) person() kin.Person {
	return kin.Person{
		Relation:        first(r.Tipo, r.Parentesco),
		Name:            first(r.Nom, r.Nombres),
		PaternalSurname: strings.TrimSpace(string(r.Ap)),
		MaternalSurname: strings.TrimSpace(string(r.Am)),
		DNI:             first(r.DNI, r.NumDoc),
		Sex:             kin.ParseSex(first(r.Ge, r.Sexo)),
		Age:             r.Edad.ptr(),
	}
}

// toLookup converts a decoded envelope. ok is false when there is no
// principal with a DNI.
func (r response) toLookup() (kin.Lookup, bool) {
	if r.Result.Person == nil {
		return kin.Lookup{}, false
	}
	l := kin.Lookup{
		Principal:  r.Result.Person.person(),
		CheckDigit: strings.TrimSpace(string(r.Result.Person.Dv)),
	}
	if l.Principal.DNI == "" {
		return kin.Lookup{}, false
	}
	l.Relatives = make([]kin.Person, 0, len(r.Result.Coincidences))
	for _, c := range r.Result.Coincidences {
		l.Relatives = append(l.Relatives, c.person())
	}
	l.Quantity = len(l.Relatives)
	if r.Result.Quantity.set {
		l.Quantity = r.Result.Quantity.n
	}
	return l, true
}

func first(vals ...flexString) string {
	for _, v := range vals {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// flexString accepts a JSON string, number or null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string. Blank strings, null
// and non-numeric text leave it unset rather than failing the decode.
type flexInt struct {
	n   int
	set bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	v := strings.TrimSpace(string(s))
	if v == "" {
		*f = flexInt{}
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		*f = flexInt{n: n, set: true}
		return nil
	}
	if x, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(x) && math.Abs(x) <= math.MaxInt32 {
		*f = flexInt{n: int(x), set: true}
		return nil
	}
	*f = flexInt{}
	return nil
}

func (f flexInt) ptr() *int {
	if !f.set {
		return nil
	}
	n := f.n
	return &n
}
