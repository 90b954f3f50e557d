package kin

import (
	"strings"
	"time"
)

// BirthDateLayout is the registry's birth date format.
const BirthDateLayout = "02/01/2006"

// AgeAt returns the explicit age, or one derived from BirthDate at now.
// ok is false when neither is usable.
func (p Person) AgeAt(now time.Time) (age int, ok bool) {
	if p.Age != nil && *p.Age >= 0 {
		return *p.Age, true
	}
	born, err := time.Parse(BirthDateLayout, strings.TrimSpace(p.BirthDate))
	if err != nil || born.After(now) {
		return 0, false
	}
	age = now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, true
}
