package phone

import (
	"regexp"
	"strings"
)

const CountryPrefix = "+998"

var canonical = regexp.MustCompile(`^\+998\d{9}$`)

// Normalize strips whitespace and forces the +998 prefix.
func Normalize(raw string) string {
	p := strings.Join(strings.Fields(raw), "")
	if strings.HasPrefix(p, CountryPrefix) {
		return p
	}
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "998") && len(p) == 12 {
		return "+" + p
	}
	return CountryPrefix + p
}

func Valid(raw string) bool {
	return canonical.MatchString(Normalize(raw))
}
