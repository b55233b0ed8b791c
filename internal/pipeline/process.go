package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mroparse/internal"
	"mroparse/internal/config"
	"mroparse/internal/dataset"
	"mroparse/internal/lexicon"
	"mroparse/internal/storage"
)

// ProcessingService ties the extraction stages together: one call takes a
// file or stored mail from raw input to filled output columns, an exported
// workbook pair and a job record. The db may be nil for callers that only
// want the in-memory result.
type ProcessingService struct {
	db       *storage.DB
	cfg      config.Config
	lex      *lexicon.Lexicon
	profiler *Profiler
}

func NewProcessingService(db *storage.DB, cfg config.Config, lex *lexicon.Lexicon) *ProcessingService {
	return &ProcessingService{
		db:       db,
		cfg:      cfg,
		lex:      lex,
		profiler: NewProfiler(cfg.SampleSize, cfg.SampleSeed),
	}
}

// ProcessOptions selects the work for one dataset run. SimStyle, when
// set, overrides both the instruction and the configured separator.
type ProcessOptions struct {
	Instruction string
	OutputPath  string
	SimStyle    internal.SimStyle
}

// RunResult carries everything one dataset run produced.
type RunResult struct {
	Dataset       *dataset.Dataset
	Instruction   internal.ParsedInstruction
	Roles         internal.RoleMap
	Content       internal.ContentProfile
	Schema        internal.SchemaProfile
	Stats         internal.RunStats
	Corrections   []internal.CorrectionRecord
	LowConfidence []internal.LowConfidenceItem
	Issues        []QAIssue
	MfgColumn     string
	PNColumn      string
	SimColumn     string
}

// ProcessDataset runs the pipeline selected by the instruction over ds,
// mutating its output columns in place.
func (s *ProcessingService) ProcessDataset(ds *dataset.Dataset, opts ProcessOptions) (*RunResult, error) {
	parsed := ParseInstruction(opts.Instruction, ds.Headers)
	res := &RunResult{Dataset: ds, Instruction: parsed}

	rm := MapColumns(ds, s.lex)
	if len(parsed.SourceColumns) > 0 {
		rm.Description = parsed.SourceColumns
		rm.POText = nil
		rm.Notes = nil
	}
	res.Roles = rm

	res.MfgColumn = pickTarget(parsed.MfgColumn, rm.MfgOutput, "MFG")
	res.PNColumn = pickTarget(parsed.PNColumn, rm.PNOutput, "PN")
	res.SimColumn = pickTarget(parsed.SimColumn, rm.SimOutput, "SIM")
	style := s.simStyle(parsed, opts)

	switch parsed.Pipeline {
	case internal.PipelineSim:
		s.runSimOnly(ds, rm, res, style)
	case internal.PipelinePartNumber:
		s.runPartNumberOnly(ds, rm, res)
	default:
		if err := s.runFull(ds, rm, res, parsed, style); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *ProcessingService) runFull(ds *dataset.Dataset, rm internal.RoleMap, res *RunResult, parsed internal.ParsedInstruction, style internal.SimStyle) error {
	if ok, problems := ValidateRoleMap(rm, false); !ok {
		return fmt.Errorf("unusable column layout: %s", strings.Join(problems, "; "))
	}

	prof := s.profiler.Profile(ds, rm, s.lex)
	sp := ClassifySchema(rm, &prof)
	res.Content = prof
	res.Schema = sp

	threshold := sp.Threshold
	if threshold < s.cfg.ThresholdFloor {
		threshold = s.cfg.ThresholdFloor
	}

	cascade := NewCascade(s.lex, sp.Weights, threshold, s.cfg.MaxPNLength)
	stats, low := cascade.Run(ds, rm, RunOptions{
		MfgColumn: res.MfgColumn,
		PNColumn:  res.PNColumn,
		SimColumn: res.SimColumn,
		AddSim:    parsed.AddSim,
		SimStyle:  style,
	})
	stats.Archetype = prof.Archetype
	stats.Template = sp.Template

	TidyOutputs(s.lex, ds, res.MfgColumn, res.PNColumn)
	validator := NewValidator(s.lex, s.cfg.FreqAnomalyShare)
	res.Corrections = validator.Validate(ds, rm, res.MfgColumn, res.PNColumn)
	res.Issues = RunQA(s.lex, ds, res.MfgColumn, res.PNColumn, s.cfg.MaxPNLength)

	res.Stats = stats
	res.LowConfidence = low
	return nil
}

// runPartNumberOnly reworks just the part-number column, leaving any
// manufacturer data as found.
func (s *ProcessingService) runPartNumberOnly(ds *dataset.Dataset, rm internal.RoleMap, res *RunResult) {
	ds.AddColumn(res.PNColumn)
	filled := RefillPartNumbers(s.lex, ds, existingColumns(ds, rm.TextSources()), res.PNColumn)

	validator := NewValidator(s.lex, s.cfg.FreqAnomalyShare)
	res.Corrections = validator.Validate(ds, rm, res.MfgColumn, res.PNColumn)
	res.Issues = RunQA(s.lex, ds, res.MfgColumn, res.PNColumn, s.cfg.MaxPNLength)
	res.Stats = internal.RunStats{Rows: ds.RowCount(), PN: internal.FieldStats{Filled: filled}}
}

// runSimOnly builds SIM identifiers from columns that are already filled.
func (s *ProcessingService) runSimOnly(ds *dataset.Dataset, rm internal.RoleMap, res *RunResult, style internal.SimStyle) {
	itemCol := res.PNColumn
	if rm.ItemNumber != nil {
		itemCol = *rm.ItemNumber
	}
	ds.AddColumn(res.SimColumn)
	filled := FillMissingSims(ds, res.MfgColumn, itemCol, res.SimColumn, style)
	res.Stats = internal.RunStats{Rows: ds.RowCount(), SimFilled: filled}
}

// FileResult is the outcome of one end-to-end file run.
type FileResult struct {
	JobID      int64
	OutputPath string
	QAPath     string
	Run        *RunResult
}

// ProcessFile reads path, runs the pipeline over it and exports the
// result workbook plus its QA report. The job and its audit rows land in
// sqlite when a db is attached.
func (s *ProcessingService) ProcessFile(path string, opts ProcessOptions) (*FileResult, error) {
	ds, err := ReadDatasetFile(path)
	if err != nil {
		return nil, err
	}
	return s.processAndExport(ds, filepath.Base(path), opts)
}

// ProcessInput is ProcessFile with an explicit input kind, for callers
// that pass raw html or files without a telling extension.
func (s *ProcessingService) ProcessInput(kind, input string, opts ProcessOptions) (*FileResult, error) {
	ds, err := DatasetFromInput(kind, input)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(input)
	if kind == "html" && strings.ContainsAny(input, "<>") {
		name = "inline.html"
	}
	return s.processAndExport(ds, name, opts)
}

func (s *ProcessingService) processAndExport(ds *dataset.Dataset, filename string, opts ProcessOptions) (*FileResult, error) {
	res, err := s.ProcessDataset(ds, opts)
	if err != nil {
		return nil, err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(s.cfg.OutputDir, parsedName(filename))
	}
	if err := ExportDataset(ds, outputPath); err != nil {
		return nil, fmt.Errorf("export result: %w", err)
	}
	qaPath := QAReportPath(outputPath)
	if err := ExportQAReport(qaPath, res.Corrections, res.LowConfidence, res.Stats); err != nil {
		return nil, fmt.Errorf("export qa report: %w", err)
	}

	jobID, err := s.recordJob(filename, outputPath, res, opts)
	if err != nil {
		return nil, err
	}
	return &FileResult{JobID: jobID, OutputPath: outputPath, QAPath: qaPath, Run: res}, nil
}

func (s *ProcessingService) recordJob(filename, outputPath string, res *RunResult, opts ProcessOptions) (int64, error) {
	if s.db == nil {
		return 0, nil
	}
	job := internal.JobRow{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Filename:      filename,
		Instruction:   opts.Instruction,
		Pipeline:      string(res.Instruction.Pipeline),
		SourceColumns: res.Instruction.SourceColumns,
		MfgColumn:     &res.MfgColumn,
		PNColumn:      &res.PNColumn,
		SimColumn:     &res.SimColumn,
		AddSim:        res.Instruction.AddSim,
		SimStyle:      string(s.simStyle(res.Instruction, opts)),
		TotalRows:     res.Stats.Rows,
		MfgFilled:     res.Stats.Mfg.Filled,
		PNFilled:      res.Stats.PN.Filled,
		SimFilled:     res.Stats.SimFilled,
		IssuesCount:   len(res.Issues),
		OutputPath:    outputPath,
		Status:        "completed",
	}
	jobID, err := s.db.InsertJob(job)
	if err != nil {
		return 0, fmt.Errorf("record job: %w", err)
	}
	if err := s.db.InsertCorrections(jobID, res.Corrections); err != nil {
		return jobID, err
	}
	if err := s.db.InsertLowConfidence(jobID, res.LowConfidence); err != nil {
		return jobID, err
	}
	return jobID, nil
}

// ProfileFile reads path and reports the detected layout without writing
// anything: the role map, the content profile and the schema template.
func (s *ProcessingService) ProfileFile(path string) (string, error) {
	ds, err := ReadDatasetFile(path)
	if err != nil {
		return "", err
	}
	rm := MapColumns(ds, s.lex)
	prof := s.profiler.Profile(ds, rm, s.lex)
	sp := ClassifySchema(rm, &prof)

	return strings.Join([]string{
		RoleMapSummary(rm),
		ProfileSummary(prof, ds.RowCount()),
		SchemaSummary(sp),
	}, "\n"), nil
}

// MailProcessResult summarizes one processed mail.
type MailProcessResult struct {
	MailID   int
	Datasets int
	Skipped  bool
}

// ProcessMailByProviderMessageID runs the pipeline over one stored mail.
func (s *ProcessingService) ProcessMailByProviderMessageID(provider, messageID string) (MailProcessResult, error) {
	mail, err := s.db.MustMailByProviderMessageID(provider, messageID)
	if err != nil {
		return MailProcessResult{}, err
	}
	return s.ProcessMail(mail)
}

// ProcessPendingMail works through mails in status fetched, oldest first.
// It returns how many mails were handled and how many datasets that
// produced.
func (s *ProcessingService) ProcessPendingMail(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListMailByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	mails, datasets := 0, 0
	for _, mail := range pending {
		if provider != "" && mail.Provider != provider {
			continue
		}
		res, err := s.ProcessMail(mail)
		if err != nil {
			return mails, datasets, err
		}
		mails++
		datasets += res.Datasets
	}
	return mails, datasets, nil
}

// ProcessMail runs every stored sheet attachment of the mail through the
// pipeline. Mails with no attachments still get a chance through their
// HTML body table when the message reads like an order sheet; everything
// else is marked skipped.
func (s *ProcessingService) ProcessMail(mail internal.MailRow) (MailProcessResult, error) {
	raw, err := os.ReadFile(mail.RawRef)
	if err != nil {
		return MailProcessResult{}, err
	}
	src, err := ParseMailSource(raw)
	if err != nil {
		return MailProcessResult{}, err
	}
	atts, err := s.db.ListMailAttachments(mail.ID)
	if err != nil {
		return MailProcessResult{}, err
	}

	detect := DetectOrderSheet(firstNonEmpty(src.Subject, mail.Subject), src.Text, src.HTML, src.AttachmentNames)
	if len(atts) == 0 && !detect.IsOrderSheet {
		if err := s.db.UpdateMailStatus(mail.ID, "skipped"); err != nil {
			return MailProcessResult{}, err
		}
		return MailProcessResult{MailID: mail.ID, Skipped: true}, nil
	}

	datasets := 0
	for _, att := range atts {
		ds, err := ReadDatasetFile(att.Ref)
		if err != nil {
			fmt.Printf("mail=%d attachment=%s unreadable: %v\n", mail.ID, att.Filename, err)
			continue
		}
		out := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("mail_%d_%s", mail.ID, parsedName(att.Filename)))
		if _, err := s.processAndExport(ds, att.Filename, ProcessOptions{OutputPath: out}); err != nil {
			return MailProcessResult{MailID: mail.ID, Datasets: datasets}, err
		}
		datasets++
	}

	if len(atts) == 0 {
		ds, err := DatasetFromMailBody(src)
		if err == nil {
			out := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("mail_%d_body_parsed.xlsx", mail.ID))
			if _, err := s.processAndExport(ds, "mail body", ProcessOptions{OutputPath: out}); err != nil {
				return MailProcessResult{MailID: mail.ID}, err
			}
			datasets++
		}
	}

	status := "processed"
	if datasets == 0 {
		status = "skipped"
	}
	if err := s.db.UpdateMailStatus(mail.ID, status); err != nil {
		return MailProcessResult{}, err
	}
	return MailProcessResult{MailID: mail.ID, Datasets: datasets, Skipped: datasets == 0}, nil
}

// simStyle resolves the SIM separator: explicit option, then instruction,
// then the configured default.
func (s *ProcessingService) simStyle(parsed internal.ParsedInstruction, opts ProcessOptions) internal.SimStyle {
	if opts.SimStyle != "" {
		return opts.SimStyle
	}
	if parsed.SimStyle != "" && parsed.SimStyle != internal.SimSpace {
		return parsed.SimStyle
	}
	switch s.cfg.SimSeparator {
	case "dash":
		return internal.SimDash
	case "compact":
		return internal.SimCompact
	default:
		return internal.SimSpace
	}
}

// pickTarget resolves an output column name: an instruction target that
// differs from the default wins, then a mapped existing column, then the
// default name.
func pickTarget(explicit *string, mapped *string, fallback string) string {
	if explicit != nil && *explicit != fallback {
		return *explicit
	}
	if mapped != nil {
		return *mapped
	}
	if explicit != nil {
		return *explicit
	}
	return fallback
}

func parsedName(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base = "dataset"
	}
	if ext == ".csv" {
		return base + "_parsed.csv"
	}
	return base + "_parsed.xlsx"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
