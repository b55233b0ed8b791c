package pipeline

import (
	"fmt"
	"strings"

	"mroparse/internal"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
	"mroparse/internal/util"
)

// alphaSampleRows bounds how many rows the content validation pass reads
// per candidate text column.
const alphaSampleRows = 50

// minAlphaShare is the minimum fraction of sampled non-blank values that
// must contain a letter for a text-role column to survive. SAP material
// ID columns are numeric and fall well under it.
const minAlphaShare = 0.30

// MapColumns classifies every header of ds into a semantic role. Matching
// runs in four passes over the role order, each pass skipping columns
// already claimed: exact alias match, case-insensitive alias match, fuzzy
// alias match at ratio >= 0.85, then keyword containment. Text-source
// roles collect multiple columns, output roles take the first match only.
//
// Columns that land in a text role but hold mostly non-alphabetic values
// are dropped again afterwards, so a numeric "Material" column cannot
// masquerade as a description source.
func MapColumns(ds *dataset.Dataset, lex *lexicon.Lexicon) internal.RoleMap {
	var rm internal.RoleMap
	assigned := make(map[string]bool)
	roles := lexicon.Roles()

	// Pass 1+2: exact, then case-insensitive.
	for _, role := range roles {
		aliases := lex.Aliases(role)
		for _, col := range ds.Headers {
			if assigned[col] {
				continue
			}
			if matchesAlias(col, aliases) {
				assignRole(&rm, role, col, assigned)
			}
		}
	}

	// Pass 3: fuzzy with a strict threshold to keep superficially similar
	// headers (e.g. "Vendor Part" vs "Vendor Name") from cross-binding.
	for _, role := range roles {
		aliases := lex.Aliases(role)
		for _, col := range ds.Headers {
			if assigned[col] {
				continue
			}
			colNorm := util.CleanHeader(col)
			for _, alias := range aliases {
				if util.SimilarityRatio(colNorm, util.CleanHeader(alias)) >= 0.85 {
					assignRole(&rm, role, col, assigned)
					break
				}
			}
		}
	}

	// Pass 4: keyword containment fallback.
	for _, role := range roles {
		keywords := lex.Keywords(role)
		if len(keywords) == 0 {
			continue
		}
		for _, col := range ds.Headers {
			if assigned[col] {
				continue
			}
			colNorm := strings.ToLower(util.CleanHeader(col))
			for _, kw := range keywords {
				if strings.Contains(colNorm, strings.ToLower(kw)) {
					assignRole(&rm, role, col, assigned)
					break
				}
			}
		}
	}

	rm.Description = filterAlphabetic(ds, rm.Description)
	rm.POText = filterAlphabetic(ds, rm.POText)
	rm.Notes = filterAlphabetic(ds, rm.Notes)

	if len(rm.Supplier) > 0 {
		rm.SupplierColumn = util.StringPtr(rm.Supplier[0])
	}
	return rm
}

func matchesAlias(col string, aliases []string) bool {
	for _, alias := range aliases {
		if col == alias {
			return true
		}
	}
	colNorm := util.CleanHeader(col)
	for _, alias := range aliases {
		if strings.EqualFold(colNorm, util.CleanHeader(alias)) {
			return true
		}
	}
	return false
}

func assignRole(rm *internal.RoleMap, role internal.ColumnRole, col string, assigned map[string]bool) {
	switch role {
	case internal.RoleDescription:
		rm.Description = append(rm.Description, col)
	case internal.RolePOText:
		rm.POText = append(rm.POText, col)
	case internal.RoleNotes:
		rm.Notes = append(rm.Notes, col)
	case internal.RoleSupplier:
		rm.Supplier = append(rm.Supplier, col)
	case internal.RoleMfgOutput:
		if rm.MfgOutput != nil {
			return
		}
		rm.MfgOutput = util.StringPtr(col)
	case internal.RolePNOutput:
		if rm.PNOutput != nil {
			return
		}
		rm.PNOutput = util.StringPtr(col)
	case internal.RoleSimOutput:
		if rm.SimOutput != nil {
			return
		}
		rm.SimOutput = util.StringPtr(col)
	case internal.RoleItemNumber:
		if rm.ItemNumber != nil {
			return
		}
		rm.ItemNumber = util.StringPtr(col)
	default:
		return
	}
	assigned[col] = true
}

// filterAlphabetic drops columns whose sampled non-blank values are mostly
// free of letters. Columns with no non-blank sample values are kept; an
// empty column is harmless, a numeric one is not.
func filterAlphabetic(ds *dataset.Dataset, cols []string) []string {
	if len(cols) == 0 {
		return cols
	}
	kept := cols[:0]
	limit := ds.RowCount()
	if limit > alphaSampleRows {
		limit = alphaSampleRows
	}
	for _, col := range cols {
		nonBlank := 0
		alpha := 0
		for row := 0; row < limit; row++ {
			v := strings.TrimSpace(ds.Cell(row, col))
			if v == "" {
				continue
			}
			nonBlank++
			if util.ContainsLetter(v) {
				alpha++
			}
		}
		if nonBlank == 0 || float64(alpha)/float64(nonBlank) >= minAlphaShare {
			kept = append(kept, col)
		}
	}
	return kept
}

// ValidateRoleMap reports whether rm can drive an extraction run and lists
// what is missing. Strict mode additionally requires both output columns,
// which batch training relies on.
func ValidateRoleMap(rm internal.RoleMap, strict bool) (bool, []string) {
	var issues []string
	if len(rm.TextSources()) == 0 {
		issues = append(issues, "no source text columns detected, need at least one description or PO text column")
	}
	if strict {
		if rm.MfgOutput == nil {
			issues = append(issues, "no manufacturer output column detected")
		}
		if rm.PNOutput == nil {
			issues = append(issues, "no part number output column detected")
		}
	}
	return len(issues) == 0, issues
}

// RoleMapSummary renders rm for CLI output.
func RoleMapSummary(rm internal.RoleMap) string {
	var b strings.Builder
	b.WriteString("column roles:\n")
	writeMulti := func(label string, cols []string) {
		if len(cols) > 0 {
			fmt.Fprintf(&b, "  %-14s %s\n", label, strings.Join(cols, ", "))
		}
	}
	writeSingle := func(label string, col *string) {
		if col != nil {
			fmt.Fprintf(&b, "  %-14s %s\n", label, *col)
		}
	}
	writeMulti("description:", rm.Description)
	writeMulti("po text:", rm.POText)
	writeMulti("notes:", rm.Notes)
	writeMulti("supplier:", rm.Supplier)
	writeSingle("mfg output:", rm.MfgOutput)
	writeSingle("pn output:", rm.PNOutput)
	writeSingle("sim output:", rm.SimOutput)
	writeSingle("item number:", rm.ItemNumber)
	return b.String()
}
