package internal

type ColumnRole string

const (
	RoleDescription ColumnRole = "source_description"
	RolePOText      ColumnRole = "source_po_text"
	RoleNotes       ColumnRole = "source_notes"
	RoleSupplier    ColumnRole = "source_supplier"
	RoleMfgOutput   ColumnRole = "mfg_output"
	RolePNOutput    ColumnRole = "pn_output"
	RoleSimOutput   ColumnRole = "sim_output"
	RoleItemNumber  ColumnRole = "item_number"
)

// RoleMap is the resolved column layout of one dataset. Source roles are
// multi-valued in priority order; output roles bind a single column.
type RoleMap struct {
	Description    []string
	POText         []string
	Notes          []string
	Supplier       []string
	MfgOutput      *string
	PNOutput       *string
	SimOutput      *string
	ItemNumber     *string
	SupplierColumn *string
}

// TextSources returns the source columns the cascade scans, in scan order.
func (m RoleMap) TextSources() []string {
	out := make([]string, 0, len(m.Description)+len(m.POText)+len(m.Notes))
	out = append(out, m.Description...)
	out = append(out, m.POText...)
	out = append(out, m.Notes...)
	return out
}

type Archetype string

const (
	ArchetypeLabeledRich     Archetype = "LABELED_RICH"
	ArchetypeCompressedShort Archetype = "COMPRESSED_SHORT"
	ArchetypeCatalogOnly     Archetype = "CATALOG_ONLY"
	ArchetypeMixed           Archetype = "MIXED"
)

type Template string

const (
	TemplateSAPStandard      Template = "SAP_STANDARD"
	TemplateSAPShortText     Template = "SAP_SHORT_TEXT"
	TemplateSAPDualSource    Template = "SAP_DUAL_SOURCE"
	TemplateDistributorOrder Template = "DISTRIBUTOR_ORDER"
	TemplateLabeledSpec      Template = "LABELED_SPEC"
	TemplateGeneric          Template = "GENERIC"
)

type Strategy string

const (
	StrategyLabel             Strategy = "label"
	StrategyKnownMfg          Strategy = "known_mfg"
	StrategyContext           Strategy = "context"
	StrategyPrefixDecode      Strategy = "prefix_decode"
	StrategySupplierFallback  Strategy = "supplier_fallback"
	StrategyHeuristic         Strategy = "heuristic"
	StrategyDashCatalog       Strategy = "dash_catalog"
	StrategyTrailingCatalog   Strategy = "trailing_catalog"
	StrategyTrailingNumeric   Strategy = "trailing_numeric"
	StrategyPNStructured      Strategy = "pn_structured"
	StrategyFirstTokenCatalog Strategy = "first_token_catalog"
	StrategyEmbeddedCode      Strategy = "embedded_code"
)

// WeightTable maps a strategy to its confidence multiplier. Lookups for
// strategies absent from the table default to 1.0 so multiplication stays
// a total function.
type WeightTable map[Strategy]float64

func (w WeightTable) For(s Strategy) float64 {
	if w == nil {
		return 1.0
	}
	if v, ok := w[s]; ok {
		return v
	}
	return 1.0
}

type ContentProfile struct {
	Archetype             Archetype   `json:"archetype"`
	SampleSize            int         `json:"sampleSize"`
	PctLabeledPN          float64     `json:"pctLabeledPn"`
	PctLabeledMfg         float64     `json:"pctLabeledMfg"`
	PctKnownMfg           float64     `json:"pctKnownMfg"`
	PctCommaDelimited     float64     `json:"pctCommaDelimited"`
	PctPureCatalog        float64     `json:"pctPureCatalog"`
	PctFreeText           float64     `json:"pctFreeText"`
	PctPrefixCoded        float64     `json:"pctPrefixCoded"`
	AvgTokenCount         float64     `json:"avgTokenCount"`
	HasSupplierColumn     bool        `json:"hasSupplierColumn"`
	OutputPartiallyFilled bool        `json:"outputPartiallyFilled"`
	Weights               WeightTable `json:"weights"`
	Threshold             float64     `json:"threshold"`
}

type SchemaProfile struct {
	Template            Template    `json:"template"`
	DetectionConfidence float64     `json:"detectionConfidence"`
	HasSupplier         bool        `json:"hasSupplier"`
	HasShortText        bool        `json:"hasShortText"`
	HasRichDescription  bool        `json:"hasRichDescription"`
	HasSecondaryText    bool        `json:"hasSecondaryText"`
	HasMfgOutput        bool        `json:"hasMfgOutput"`
	HasPNOutput         bool        `json:"hasPnOutput"`
	Archetype           Archetype   `json:"archetype"`
	Weights             WeightTable `json:"weights"`
	Threshold           float64     `json:"threshold"`
}

// Candidate is one strategy's proposal for one field of one record.
// Confidence is the raw per-strategy base score, before weighting.
type Candidate struct {
	Value      string
	Strategy   Strategy
	Confidence float64
}

// FieldResult is the arbitrated outcome for one field of one record.
// Confidence carries the weighted score of the winning candidate.
type FieldResult struct {
	Value      *string
	Strategy   Strategy
	Confidence float64
}

const (
	FieldMfg = "mfg"
	FieldPN  = "pn"
)

type CorrectionRecord struct {
	Row      int    `json:"row"`
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	Reason   string `json:"reason"`
	Action   string `json:"action"`
}

type LowConfidenceItem struct {
	Row        int      `json:"row"`
	Field      string   `json:"field"`
	Value      string   `json:"value"`
	Strategy   Strategy `json:"strategy"`
	Confidence float64  `json:"confidence"`
}

type SimStyle string

const (
	SimSpace   SimStyle = "space"
	SimDash    SimStyle = "dash"
	SimCompact SimStyle = "compact"
)

type FieldStats struct {
	Filled         int     `json:"filled"`
	MeanConfidence float64 `json:"meanConfidence"`
	AboveThreshold int     `json:"aboveThreshold"`
	BelowThreshold int     `json:"belowThreshold"`
}

type RunStats struct {
	Rows              int        `json:"rows"`
	SkippedNonProduct int        `json:"skippedNonProduct"`
	Mfg               FieldStats `json:"mfg"`
	PN                FieldStats `json:"pn"`
	SimFilled         int        `json:"simFilled"`
	Threshold         float64    `json:"threshold"`
	Archetype         Archetype  `json:"archetype"`
	Template          Template   `json:"template"`
}

type PipelineKind string

const (
	PipelineMfgPN      PipelineKind = "mfg_pn"
	PipelinePartNumber PipelineKind = "part_number"
	PipelineSim        PipelineKind = "sim_generation"
)

type ParsedInstruction struct {
	Pipeline      PipelineKind
	SourceColumns []string
	MfgColumn     *string
	PNColumn      *string
	SimColumn     *string
	AddSim        bool
	SimStyle      SimStyle
	Confidence    float64
	Explanation   string
}

type JobRow struct {
	ID            int
	Timestamp     string
	Filename      string
	Instruction   string
	Pipeline      string
	SourceColumns []string
	MfgColumn     *string
	PNColumn      *string
	SimColumn     *string
	AddSim        bool
	SimStyle      string
	TotalRows     int
	MfgFilled     int
	PNFilled      int
	SimFilled     int
	IssuesCount   int
	OutputPath    string
	Status        string
}

type SavedConfig struct {
	ID          int
	Name        string
	Instruction string
	Pipeline    string
	CreatedAt   string
}

type MailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type MailAttachment struct {
	ID          int
	MailID      int
	Filename    string
	ContentType string
	Ref         string
}

type FetchedMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
