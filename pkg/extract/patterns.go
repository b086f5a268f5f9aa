package extract

import (
	"regexp"

	"github.com/vesselworks/helm-search/pkg/models"
)

// patternFamily is one ordered set of expressions for an entity type.
// Confidence applies to every match the family produces; the merger
// adjusts it per source before filtering.
type patternFamily struct {
	Type       models.EntityType
	Confidence float64
	Patterns   []*regexp.Regexp
}

// patternFamilies are compiled once at init and read-only afterwards.
// Within a family, earlier expressions are more specific; the first
// capturing group (when present) is the entity text, otherwise the
// whole match.
var patternFamilies = []patternFamily{
	{
		Type:       models.EntityTypeFaultCode,
		Confidence: 0.95,
		Patterns: []*regexp.Regexp{
			// J1939 diagnostic pairs: SPN-1234-FMI-5, SPN1234/FMI5, spn 1234 fmi 5
			regexp.MustCompile(`(?i)\b(SPN[\s\-_/:]*\d{1,5}[\s\-_/:]*FMI[\s\-_/:]*\d{1,2})\b`),
			// OBD style: P0301, U0100
			regexp.MustCompile(`\b([PCBU][0-3][0-9A-F]{3})\b`),
			// Vendor alarm/error codes: E-47, ERR 52, ALM-12, FC 233
			regexp.MustCompile(`(?i)\b((?:ERR?|ALM|FC|FLT)[\s\-_]?\d{1,4})\b`),
			// Generic letter+digit code with separator: AL-128, F2:17
			regexp.MustCompile(`\b([A-Z]{1,4}[\-:]\d{2,4})\b`),
		},
	},
	{
		Type:       models.EntityTypePartNumber,
		Confidence: 0.9,
		Patterns: []*regexp.Regexp{
			// Explicitly labelled: p/n 3803750, part no. 21147446
			regexp.MustCompile(`(?i)\bp(?:art)?[\s.]*(?:n(?:o|um(?:ber)?)?\.?|/n)[\s.:#]*([A-Z0-9][A-Z0-9\-/.]{3,})`),
			// Separator-joined alphanumerics: 3583-20991, RE508202-KIT
			regexp.MustCompile(`\b([A-Z0-9]{2,}[\-/][A-Z0-9]{2,}(?:[\-/][A-Z0-9]+)*)\b`),
			// Long bare numerics commonly used as OEM part numbers
			regexp.MustCompile(`\b(\d{6,10})\b`),
		},
	},
	{
		Type:       models.EntityTypeMeasurement,
		Confidence: 0.85,
		Patterns: []*regexp.Regexp{
			// value + unit, with optional sign/decimal: 2.5 bar, -10C, 1800rpm, 24 V
			regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?\s*(?:bar|psi|kpa|mpa|°?[cf]\b|rpm|v(?:olts?)?\b|a(?:mps?)?\b|hz|kw|hp|l(?:iters?|tr)?\b|gal|gph|lph|h(?:ou)?rs?\b|nm)\.?)`),
		},
	},
	{
		Type:       models.EntityTypeModel,
		Confidence: 0.8,
		Patterns: []*regexp.Regexp{
			// Marine engine/genset model designators: 6BTA5.9, D2-75, C32, QSB6.7
			regexp.MustCompile(`\b([A-Z]{1,3}\d{1,2}[A-Z]{0,3}[\-.]?\d(?:\.\d)?[A-Z]{0,3})\b`),
			// Series + number: Series 60, Model 4JH4
			regexp.MustCompile(`(?i)\b(?:model|series)\s+([A-Z0-9][A-Z0-9.\-]{1,10})\b`),
		},
	},
}
