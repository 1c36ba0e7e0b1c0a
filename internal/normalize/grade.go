package normalize

import (
	"regexp"
	"strings"
)

var gradeRe = regexp.MustCompile(`^\d+([,.]\d+)?[+-]?$`)

// ValidGrade reports whether s is a numeric grade, optionally with a
// decimal part and a trailing "+" or "-".
func ValidGrade(s string) bool {
	return gradeRe.MatchString(s)
}

// CleanGrade strips blanks and spells the half-point sign as ".5".
func CleanGrade(s string) string {
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, "½", ".5")
	return s
}
