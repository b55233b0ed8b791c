package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mroparse/internal"
	"mroparse/internal/dataset"
	"mroparse/internal/util"
)

type PNPatterns struct {
	FormatFrequency map[string]int `json:"format_frequency"`
	AvgLength       float64        `json:"avg_length"`
	MaxValidLength  int            `json:"max_valid_length"`
}

// TrainingData is the on-disk accumulation of everything mined from
// completed workbooks.
type TrainingData struct {
	Version            string              `json:"version"`
	GeneratedAt        string              `json:"generated_at"`
	FilesProcessed     int                 `json:"files_processed"`
	TotalRowsAnalyzed  int                 `json:"total_rows_analyzed"`
	MfgNormalization   map[string]string   `json:"mfg_normalization"`
	KnownManufacturers []string            `json:"known_manufacturers"`
	ColumnAliases      map[string][]string `json:"column_aliases"`
	PNPatterns         PNPatterns          `json:"pn_patterns"`
	Distributors       []string            `json:"distributors,omitempty"`
}

func emptyTrainingData() *TrainingData {
	return &TrainingData{
		Version:          "1.0",
		MfgNormalization: map[string]string{},
		ColumnAliases:    map[string][]string{},
		PNPatterns:       PNPatterns{FormatFrequency: map[string]int{}},
	}
}

// LoadTraining reads the training file. A missing file is not an error; it
// yields empty defaults so the lexicon falls back to built-ins alone.
func LoadTraining(path string) (*TrainingData, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyTrainingData(), nil
		}
		return nil, fmt.Errorf("read training data: %w", err)
	}

	data := emptyTrainingData()
	if err := json.Unmarshal(blob, data); err != nil {
		return nil, fmt.Errorf("parse training data %s: %w", path, err)
	}
	if data.MfgNormalization == nil {
		data.MfgNormalization = map[string]string{}
	}
	if data.ColumnAliases == nil {
		data.ColumnAliases = map[string][]string{}
	}
	if data.PNPatterns.FormatFrequency == nil {
		data.PNPatterns.FormatFrequency = map[string]int{}
	}
	return data, nil
}

// SaveTraining writes the training file atomically.
func SaveTraining(data *TrainingData, path string) error {
	data.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// MapFunc resolves a dataset's column roles. Injected by the caller so this
// package stays independent of the pipeline.
type MapFunc func(ds *dataset.Dataset) internal.RoleMap

// ReadFunc loads one tabular file into a dataset.
type ReadFunc func(path string) (*dataset.Dataset, error)

// Miner ingests completed workbooks and accumulates extraction patterns.
type Miner struct {
	MapColumns MapFunc
	ReadFile   ReadFunc
}

type minedFile struct {
	rows       int
	mfgCounts  map[string]int
	pnLengths  []int
	pnFormats  map[string]int
	aliasesFor map[string][]string
}

// MineDirectory walks dir for .xlsx/.xls/.csv files, mines each one, and
// folds the results into existing. Unreadable files are logged and skipped.
func (m *Miner) MineDirectory(dir string, existing *TrainingData) (*TrainingData, error) {
	if existing == nil {
		existing = emptyTrainingData()
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xls", ".csv":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan training dir: %w", err)
	}
	sort.Strings(files)
	fmt.Printf("training: dir=%s files=%d\n", dir, len(files))

	totalRows := 0
	mfgCounts := map[string]int{}
	pnSum, pnCount, pnMax := 0, 0, 0

	for _, path := range files {
		mined, err := m.mineFile(path)
		if err != nil {
			fmt.Printf("training: skip file=%s err=%v\n", filepath.Base(path), err)
			continue
		}
		if mined == nil {
			continue
		}

		totalRows += mined.rows
		for name, n := range mined.mfgCounts {
			mfgCounts[name] += n
		}
		for _, l := range mined.pnLengths {
			pnSum += l
			pnCount++
			if l > pnMax {
				pnMax = l
			}
		}
		for format, n := range mined.pnFormats {
			existing.PNPatterns.FormatFrequency[format] += n
		}
		for role, names := range mined.aliasesFor {
			for _, name := range names {
				if !containsFold(existing.ColumnAliases[role], name) {
					existing.ColumnAliases[role] = append(existing.ColumnAliases[role], name)
				}
			}
		}
		existing.FilesProcessed++
		fmt.Printf("training: file=%s rows=%d\n", filepath.Base(path), mined.rows)
	}

	existing.TotalRowsAnalyzed += totalRows

	canonical := groupVariants(mfgCounts, existing.MfgNormalization)
	kept := map[string]struct{}{}
	for _, name := range existing.KnownManufacturers {
		kept[name] = struct{}{}
	}
	for name, total := range canonical {
		if total >= minMfgOccurrences {
			kept[name] = struct{}{}
		}
	}
	existing.KnownManufacturers = existing.KnownManufacturers[:0]
	for name := range kept {
		existing.KnownManufacturers = append(existing.KnownManufacturers, name)
	}
	sort.Strings(existing.KnownManufacturers)

	// Blend average PN length with the prior batches, weighting by the
	// accumulated format counts.
	if pnCount > 0 {
		priorCount := 0
		for _, n := range existing.PNPatterns.FormatFrequency {
			priorCount += n
		}
		priorCount -= pnCount
		if priorCount < 0 {
			priorCount = 0
		}
		priorSum := existing.PNPatterns.AvgLength * float64(priorCount)
		existing.PNPatterns.AvgLength = (priorSum + float64(pnSum)) / float64(priorCount+pnCount)
	}
	if pnMax > existing.PNPatterns.MaxValidLength {
		existing.PNPatterns.MaxValidLength = pnMax
	}

	return existing, nil
}

// Names seen fewer times than this are noise, not manufacturers.
const minMfgOccurrences = 3

// groupVariants clusters observed manufacturer names by bigram similarity.
// The most frequent member of a cluster becomes canonical; the rest become
// normalization pairs. Returns canonical name → cluster total.
func groupVariants(counts map[string]int, normalization map[string]string) map[string]int {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	canonical := map[string]int{}
	claimed := map[string]bool{}
	for _, name := range names {
		if claimed[name] {
			continue
		}
		claimed[name] = true
		total := counts[name]
		for _, other := range names {
			if claimed[other] {
				continue
			}
			if util.DiceCoefficient(name, other) > variantSimilarity {
				claimed[other] = true
				total += counts[other]
				if _, exists := normalization[other]; !exists {
					normalization[other] = name
				}
			}
		}
		canonical[name] = total
	}
	return canonical
}

const variantSimilarity = 0.5

func (m *Miner) mineFile(path string) (*minedFile, error) {
	ds, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if ds == nil || ds.RowCount() == 0 {
		return nil, nil
	}

	roles := m.MapColumns(ds)
	if roles.MfgOutput == nil || roles.PNOutput == nil {
		fmt.Printf("training: skip file=%s reason=no_output_columns\n", filepath.Base(path))
		return nil, nil
	}

	mined := &minedFile{
		mfgCounts:  map[string]int{},
		pnFormats:  map[string]int{},
		aliasesFor: map[string][]string{},
	}
	recordAlias := func(role internal.ColumnRole, names ...string) {
		for _, name := range names {
			if name != "" {
				mined.aliasesFor[string(role)] = append(mined.aliasesFor[string(role)], name)
			}
		}
	}
	recordAlias(internal.RoleDescription, roles.Description...)
	recordAlias(internal.RolePOText, roles.POText...)
	recordAlias(internal.RoleNotes, roles.Notes...)
	recordAlias(internal.RoleSupplier, roles.Supplier...)
	recordAlias(internal.RoleMfgOutput, *roles.MfgOutput)
	recordAlias(internal.RolePNOutput, *roles.PNOutput)
	if roles.SimOutput != nil {
		recordAlias(internal.RoleSimOutput, *roles.SimOutput)
	}
	if roles.ItemNumber != nil {
		recordAlias(internal.RoleItemNumber, *roles.ItemNumber)
	}

	for row := 0; row < ds.RowCount(); row++ {
		mfg := strings.TrimSpace(ds.Cell(row, *roles.MfgOutput))
		pn := strings.TrimSpace(ds.Cell(row, *roles.PNOutput))
		if mfg == "" || pn == "" {
			continue
		}

		mined.mfgCounts[util.NormalizeSpaces(strings.ToUpper(mfg))]++
		pnClean := strings.ToUpper(pn)
		mined.pnLengths = append(mined.pnLengths, len(pnClean))
		mined.pnFormats[classifyPNFormat(pnClean)]++
		mined.rows++
	}
	return mined, nil
}

// classifyPNFormat reduces a part number to its segment shape, e.g.
// "ABC-123" → "ALPHA-NUMERIC", "XYZ123" → "ALPHANUMERIC".
func classifyPNFormat(pn string) string {
	classify := func(part string) string {
		hasAlpha := util.ContainsLetter(part)
		hasDigit := util.ContainsDigit(part)
		switch {
		case hasAlpha && hasDigit:
			return "ALPHANUM"
		case hasAlpha:
			return "ALPHA"
		case hasDigit:
			return "NUMERIC"
		default:
			return "UNKNOWN"
		}
	}

	for _, sep := range []string{"-", "/"} {
		if strings.Contains(pn, sep) {
			parts := strings.Split(pn, sep)
			shapes := make([]string, len(parts))
			for i, part := range parts {
				shapes[i] = classify(part)
			}
			return strings.Join(shapes, sep)
		}
	}

	switch classify(pn) {
	case "ALPHANUM":
		return "ALPHANUMERIC"
	case "ALPHA":
		return "ALPHA"
	case "NUMERIC":
		return "NUMERIC"
	default:
		return "UNKNOWN"
	}
}
