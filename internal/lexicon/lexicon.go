package lexicon

import (
	"regexp"
	"sort"
	"strings"

	"mroparse/internal"
	"mroparse/internal/util"
)

// Lexicon is the merged reference index the pipeline consults: built-in seed
// tables overlaid with mined training data. Immutable after Build.
type Lexicon struct {
	aliases  map[internal.ColumnRole][]string
	keywords map[internal.ColumnRole][]string

	known    []string
	knownSet map[string]struct{}
	knownRes []*regexp.Regexp

	normalize         map[string]string
	distributors      map[string]struct{}
	descriptorTerms   map[string]struct{}
	descriptorKeys    []string
	digitNames        map[string]struct{}
	prefixes          map[string]string
	composites        map[string]string
	invalidPNPrefixes []string
	nonProduct        map[string]struct{}
}

// Roles returns the column-role assignment order.
func Roles() []internal.ColumnRole {
	out := make([]internal.ColumnRole, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// Build merges the built-in tables with optional training data. A nil
// training argument yields the built-ins alone.
func Build(t *TrainingData) *Lexicon {
	lex := &Lexicon{
		aliases:           map[internal.ColumnRole][]string{},
		keywords:          map[internal.ColumnRole][]string{},
		knownSet:          map[string]struct{}{},
		normalize:         map[string]string{},
		distributors:      toSet(builtinDistributors),
		descriptorTerms:   toSet(builtinDescriptorTerms),
		descriptorKeys:    builtinDescriptorKeywords,
		digitNames:        toSet(builtinDigitNames),
		prefixes:          builtinPrefixes,
		composites:        builtinComposites,
		invalidPNPrefixes: builtinInvalidPNPrefixes,
		nonProduct:        toSet(builtinNonProduct),
	}

	for role, names := range builtinAliases {
		lex.aliases[role] = append([]string{}, names...)
	}
	for role, words := range builtinKeywords {
		lex.keywords[role] = append([]string{}, words...)
	}

	if t != nil {
		for role, names := range t.ColumnAliases {
			r := internal.ColumnRole(role)
			for _, name := range names {
				if name != "" && !containsFold(lex.aliases[r], name) {
					lex.aliases[r] = append(lex.aliases[r], name)
				}
			}
		}
		for variant, canonical := range t.MfgNormalization {
			v := util.NormalizeSpaces(strings.ToUpper(variant))
			c := util.NormalizeSpaces(strings.ToUpper(canonical))
			if v == "" || c == "" || v == c {
				continue
			}
			lex.normalize[v] = c
		}
	}
	// Built-in pairs win over mined ones.
	for v, c := range builtinNormalize {
		lex.normalize[v] = c
	}

	for _, name := range builtinKnown {
		lex.addKnown(name)
	}
	if t != nil {
		for _, name := range t.KnownManufacturers {
			lex.addKnown(name)
		}
		for _, name := range t.Distributors {
			n := util.NormalizeSpaces(strings.ToUpper(name))
			if n != "" {
				lex.distributors[n] = struct{}{}
			}
		}
	}

	// Longest first so THOMAS & BETTS wins over a mined THOMAS.
	sort.Slice(lex.known, func(i, j int) bool {
		if len(lex.known[i]) != len(lex.known[j]) {
			return len(lex.known[i]) > len(lex.known[j])
		}
		return lex.known[i] < lex.known[j]
	})
	lex.knownRes = make([]*regexp.Regexp, len(lex.known))
	for i, name := range lex.known {
		lex.knownRes[i] = boundaryPattern(name)
	}

	return lex
}

func (l *Lexicon) addKnown(name string) {
	n := util.NormalizeSpaces(strings.ToUpper(name))
	if n == "" {
		return
	}
	if _, ok := l.knownSet[n]; ok {
		return
	}
	l.knownSet[n] = struct{}{}
	l.known = append(l.known, n)
}

// boundaryPattern matches name only when it is not embedded in a longer
// alphanumeric run, so GE never fires inside GEARBOX or GAUGE.
func boundaryPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^A-Z0-9])` + regexp.QuoteMeta(name) + `(?:[^A-Z0-9]|$)`)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func containsFold(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}

// Aliases returns the header aliases registered for a role.
func (l *Lexicon) Aliases(role internal.ColumnRole) []string {
	return l.aliases[role]
}

// Keywords returns the substring fallbacks registered for a role.
func (l *Lexicon) Keywords(role internal.ColumnRole) []string {
	return l.keywords[role]
}

// KnownManufacturers returns canonical names, longest first.
func (l *Lexicon) KnownManufacturers() []string {
	return l.known
}

func (l *Lexicon) IsKnownManufacturer(name string) bool {
	_, ok := l.knownSet[util.NormalizeSpaces(strings.ToUpper(name))]
	return ok
}

// FindKnown scans uppercase text for a known manufacturer on word
// boundaries, longest name first.
func (l *Lexicon) FindKnown(textUpper string) (string, bool) {
	for i, name := range l.known {
		if !strings.Contains(textUpper, name) {
			continue
		}
		if l.knownRes[i].MatchString(textUpper) {
			return name, true
		}
	}
	return "", false
}

// Normalize maps a manufacturer variant to its canonical form.
func (l *Lexicon) Normalize(name string) string {
	n := util.NormalizeSpaces(strings.ToUpper(name))
	if canonical, ok := l.normalize[n]; ok {
		return canonical
	}
	return n
}

func (l *Lexicon) IsDistributor(name string) bool {
	_, ok := l.distributors[util.NormalizeSpaces(strings.ToUpper(name))]
	return ok
}

// IsDescriptorTerm reports whether name is exactly a descriptor: either an
// SAP abbreviation from the term list or a bare product-family word.
func (l *Lexicon) IsDescriptorTerm(name string) bool {
	if _, ok := l.descriptorTerms[name]; ok {
		return true
	}
	for _, kw := range l.descriptorKeys {
		if name == kw {
			return true
		}
	}
	return false
}

// HasDescriptorKeyword reports whether the candidate contains a
// product-family word such as SWITCH or VALVE.
func (l *Lexicon) HasDescriptorKeyword(name string) bool {
	for _, kw := range l.descriptorKeys {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func (l *Lexicon) IsDigitName(name string) bool {
	_, ok := l.digitNames[name]
	return ok
}

func (l *Lexicon) IsNonProduct(text string) bool {
	t := util.NormalizeSpaces(strings.ToUpper(text))
	if _, ok := l.nonProduct[t]; ok {
		return true
	}
	if i := strings.IndexByte(t, ','); i > 0 {
		if _, ok := l.nonProduct[strings.TrimSpace(t[:i])]; ok {
			return true
		}
	}
	return false
}

func (l *Lexicon) HasInvalidPNPrefix(token string) bool {
	for _, p := range l.invalidPNPrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

var prefixTokenRe = regexp.MustCompile(`^[A-Z][A-Z0-9]+$`)

// DecodePrefix splits a glued manufacturer-prefix token into its canonical
// manufacturer and catalog remainder. Composite (four-letter) prefixes accept
// a pure-digit remainder; shorter prefixes need a letter and a digit in the
// remainder. Returns composite=true when the four-letter table fired.
func (l *Lexicon) DecodePrefix(token string) (mfg, remainder string, composite, ok bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if !prefixTokenRe.MatchString(t) {
		return "", "", false, false
	}

	if len(t) >= 6 {
		if name, found := l.composites[t[:4]]; found {
			rest := t[4:]
			if len(rest) >= 2 && util.ContainsDigit(rest) {
				return name, rest, true, true
			}
		}
	}
	for _, n := range []int{3, 2} {
		if len(t) <= n+1 {
			continue
		}
		name, found := l.prefixes[t[:n]]
		if !found {
			continue
		}
		rest := t[n:]
		if util.ContainsLetter(rest) && util.ContainsDigit(rest) {
			return name, rest, false, true
		}
	}
	return "", "", false, false
}

// CleanSupplier strips parentheticals and corporate suffixes from a supplier
// cell, then normalizes what is left.
func (l *Lexicon) CleanSupplier(raw string) string {
	s := strings.ToUpper(raw)
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	s = util.NormalizeSpaces(s)
	s = strings.Trim(s, ",.")

	for changed := true; changed; {
		changed = false
		for _, suffix := range builtinCorporateSuffixes {
			if strings.HasSuffix(s, " "+suffix) || strings.HasSuffix(s, ","+suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, suffix), ","))
				s = strings.Trim(util.NormalizeSpaces(s), ",.")
				changed = true
			}
		}
	}
	return l.Normalize(s)
}
