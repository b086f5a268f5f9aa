package merge

import (
	"regexp"
	"strings"

	"github.com/vesselworks/helm-search/pkg/models"
)

var (
	separatorPattern   = regexp.MustCompile(`[-_/:]`)
	letterDigitPattern = regexp.MustCompile(`([A-Za-z])(\d)`)
	digitLetterPattern = regexp.MustCompile(`(\d)([A-Za-z°])`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// CanonicalizeFaultCode produces one unique representation for
// semantically-identical fault codes. The transform is idempotent and
// format-invariant: "SPN-1234-FMI-5", "SPN1234/FMI5" and
// "spn 1234 fmi 5" all canonicalize to "SPN 1234 FMI 5".
func CanonicalizeFaultCode(text string) string {
	canonical := strings.ToUpper(strings.TrimSpace(text))
	canonical = separatorPattern.ReplaceAllString(canonical, " ")
	canonical = letterDigitPattern.ReplaceAllString(canonical, "$1 $2")
	canonical = digitLetterPattern.ReplaceAllString(canonical, "$1 $2")
	canonical = whitespacePattern.ReplaceAllString(canonical, " ")
	return strings.TrimSpace(canonical)
}

// unitReplacements standardizes measurement unit symbols after spacing.
// Keys are lowercased unit tokens as they appear in operator text.
var unitReplacements = map[string]string{
	"c":      "°C",
	"°c":     "°C",
	"f":      "°F",
	"°f":     "°F",
	"psi":    "PSI",
	"kpa":    "kPa",
	"mpa":    "MPa",
	"rpm":    "RPM",
	"v":      "V",
	"volt":   "V",
	"volts":  "V",
	"a":      "A",
	"amp":    "A",
	"amps":   "A",
	"hz":     "Hz",
	"kw":     "kW",
	"nm":     "Nm",
	"l":      "L",
	"ltr":    "L",
	"liters": "L",
	"hr":     "h",
	"hrs":    "h",
	"hours":  "h",
}

// normalizeMeasurement inserts a space between the numeric value and its
// unit, then standardizes the unit symbol. "1800rpm" becomes "1800 RPM".
func normalizeMeasurement(text string) string {
	spaced := digitLetterPattern.ReplaceAllString(strings.TrimSpace(text), "$1 $2")
	spaced = whitespacePattern.ReplaceAllString(spaced, " ")
	spaced = strings.TrimSuffix(spaced, ".")

	fields := strings.Fields(spaced)
	if len(fields) < 2 {
		return spaced
	}
	unit := strings.ToLower(fields[len(fields)-1])
	if replacement, ok := unitReplacements[unit]; ok {
		fields[len(fields)-1] = replacement
	}
	return strings.Join(fields, " ")
}

// properCase capitalizes the first letter of each word, leaving tokens
// that already contain uppercase (model designators, abbreviations) alone.
func properCase(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	for i, field := range fields {
		if field == "" || strings.ToLower(field) != field {
			continue
		}
		runes := []rune(field)
		fields[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(fields, " ")
}

// Normalize applies the per-type deterministic text transform and
// returns the entity with Canonical set. Idempotent for every type.
func Normalize(entity models.Entity) models.Entity {
	normalized := entity
	switch entity.Type {
	case models.EntityTypeFaultCode:
		normalized.Canonical = CanonicalizeFaultCode(entity.Text)
	case models.EntityTypeMeasurement:
		normalized.Canonical = normalizeMeasurement(entity.Text)
	case models.EntityTypeEquipment, models.EntityTypeModel, models.EntityTypeOrganization:
		normalized.Canonical = properCase(entity.Text)
	case models.EntityTypePartNumber:
		normalized.Canonical = strings.ToUpper(strings.TrimSpace(entity.Text))
	case models.EntityTypeStatus, models.EntityTypeSymptom, models.EntityTypeAction, models.EntityTypeLocation:
		normalized.Canonical = strings.ToLower(strings.TrimSpace(entity.Text))
	default:
		normalized.Canonical = strings.TrimSpace(entity.Text)
	}
	return normalized
}
