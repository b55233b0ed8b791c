package util

import (
	"regexp"
	"strings"
)

// Spec-value tokens are electrical/mechanical ratings that ride along in
// description text and are never part identifiers: 480V, 60A, 2.2KW, 5HP,
// 1800RPM, 3PH, 2.6875IN, DC24V, 120/277V.
var specValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:AC|DC)?\d+(?:\.\d+)?(?:/\d+(?:\.\d+)?)?(?:V|VAC|VDC|KV)$`),
	regexp.MustCompile(`^\d+(?:\.\d+)?(?:A|AMP|AMPS|MA)$`),
	regexp.MustCompile(`^\d+(?:\.\d+)?(?:W|KW|HP|VA|KVA)$`),
	regexp.MustCompile(`^\d+(?:\.\d+)?RPM$`),
	regexp.MustCompile(`^\d(?:PH|PHASE)$`),
	regexp.MustCompile(`^\d+(?:\.\d+)?(?:HZ|KHZ)$`),
	regexp.MustCompile(`^\d+(?:[\-/.]\d+)*(?:IN|MM|CM|FT|GA|AWG)$`),
}

// Descriptor-shaped tokens look like counts of features, not parts:
// 4-BOLT, 3-WAY, 700-HOUR, 12-POINT, 2-DI/O.
var descriptorTokenPattern = regexp.MustCompile(`^\d{1,4}-[A-Z][A-Z/]*$`)

// IsSpecValue reports whether token is a rating value (voltage, amperage,
// wattage, rotation speed, phase count, frequency, dimension).
func IsSpecValue(token string) bool {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return false
	}
	for _, p := range specValuePatterns {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}

// IsDescriptorToken reports whether token has the count-dash-noun shape.
func IsDescriptorToken(token string) bool {
	return descriptorTokenPattern.MatchString(strings.ToUpper(strings.TrimSpace(token)))
}

// Standards-body designations (ISO9001, DIN912, ANSI150) read like part
// numbers but identify specifications.
var standardsPrefixes = []string{"ISO", "DIN", "ANSI", "ASTM", "ASME", "NEMA", "IEC", "SAE"}

// HasStandardsPrefix reports whether token starts with a standards-body
// prefix followed by a digit.
func HasStandardsPrefix(token string) bool {
	t := strings.ToUpper(strings.TrimSpace(token))
	for _, p := range standardsPrefixes {
		if strings.HasPrefix(t, p) && len(t) > len(p) {
			if c := t[len(p)]; c >= '0' && c <= '9' {
				return true
			}
		}
	}
	return false
}
