package types

// Formatting finding identifiers
const (
	FindingMultiColumn         = "multiColumnLayout"
	FindingTables              = "tablesDetected"
	FindingImagesOrIcons       = "imagesOrIcons"
	FindingExcessiveCaps       = "excessiveCaps"
	FindingExcessiveWhitespace = "excessiveWhitespace"
	FindingInconsistentBullets = "inconsistentBullets"
	FindingExceedsMaxPages     = "exceedsMaxPages"
)

// LayoutSignals holds layout heuristics
type LayoutSignals struct {
	MultiColumnSuspected bool `json:"multiColumnSuspected"`
	ColumnGapLines       int  `json:"columnGapLines"`
	TableSuspected       bool `json:"tableSuspected"`
	TableLines           int  `json:"tableLines"`
	IconsDetected        bool `json:"iconsDetected"`
	IconCount            int  `json:"iconCount"`
}

// FontSignals holds typography heuristics
type FontSignals struct {
	ExcessiveCaps bool `json:"excessiveCaps"`
	CapsLines     int  `json:"capsLines"`
}

// StructureSignals holds document structure heuristics
type StructureSignals struct {
	ExcessiveWhitespace bool     `json:"excessiveWhitespace"`
	InconsistentBullets bool     `json:"inconsistentBullets"`
	BulletStyles        []string `json:"bulletStyles"`
	EstimatedPages      int      `json:"estimatedPages"`
	MaxPages            int      `json:"maxPages"`
	LineCount           int      `json:"lineCount"`
}

// FormattingResult is the output of the formatting analyzer.
// RuleFindings lists finding IDs in detection order.
type FormattingResult struct {
	LayoutSignals    LayoutSignals    `json:"layoutSignals"`
	FontSignals      FontSignals      `json:"fontSignals"`
	StructureSignals StructureSignals `json:"structureSignals"`
	RuleFindings     []string         `json:"ruleFindings"`
}
