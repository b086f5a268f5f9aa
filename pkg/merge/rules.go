package merge

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vesselworks/helm-search/pkg/extract"
	"github.com/vesselworks/helm-search/pkg/models"
)

// Validation rules keep or drop entities; they never rewrite one.
// Each rule returns the drop reason, or empty when the entity passes.

// brandAbbreviations maps full brand names to their recognized short
// forms. Grounding accepts either direction: an AI entity saying
// "Caterpillar" is grounded when the text only says "CAT".
var brandAbbreviations = map[string][]string{
	"caterpillar":     {"cat"},
	"volvo penta":     {"volvo"},
	"mtu":             {"mtu friedrichshafen"},
	"northern lights": {"nl"},
	"fischer panda":   {"panda"},
	"side-power":      {"sidepower", "side power"},
}

// canonicalBlacklist lists over-broad canonical labels that match
// everything and inform nothing.
var canonicalBlacklist = map[string]bool{
	"equipment": true,
	"system":    true,
	"systems":   true,
	"machinery": true,
	"component": true,
	"device":    true,
	"general":   true,
	"misc":      true,
	"other":     true,
	"unknown":   true,
	"item":      true,
}

// stopWords flag greedy over-capture when they end an entity.
var stopWords = map[string]bool{
	"and": true, "or": true, "the": true, "a": true, "an": true,
	"of": true, "for": true, "with": true, "to": true, "in": true,
	"on": true, "at": true, "is": true, "was": true, "my": true,
}

var (
	partNumberShapePattern = regexp.MustCompile(`[A-Za-z]*\d|\d[A-Za-z]*|[-/]`)
	multiWordUpperPattern  = regexp.MustCompile(`^[A-Z]{2,}(?:\s+[A-Z]{2,})+$`)
	faultKeywordPattern    = regexp.MustCompile(`(?i)\b(fault|alarm|error|warning|code|shutdown)\b`)
	measurementPattern     = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*([A-Za-z°]+)`)
	digitPattern           = regexp.MustCompile(`\d`)
	letterPattern          = regexp.MustCompile(`[A-Za-z]`)
)

// measurementRange bounds plausible values per unit.
type measurementRange struct {
	Min float64
	Max float64
}

var measurementRanges = map[string]measurementRange{
	"°c":  {Min: -50, Max: 200},
	"c":   {Min: -50, Max: 200},
	"°f":  {Min: -60, Max: 400},
	"f":   {Min: -60, Max: 400},
	"bar": {Min: 0, Max: 500},
	"psi": {Min: 0, Max: 7500},
	"kpa": {Min: 0, Max: 50000},
	"rpm": {Min: 0, Max: 10000},
	"v":   {Min: 0, Max: 1000},
	"a":   {Min: 0, Max: 5000},
	"hz":  {Min: 0, Max: 500},
	"kw":  {Min: 0, Max: 10000},
}

const (
	// symptomConfidenceFloor is the adjusted confidence below which a
	// symptom needs nearby equipment context to survive.
	symptomConfidenceFloor = 0.6
	// symptomEquipmentDistance is the maximum character gap between a
	// low-confidence symptom and supporting equipment.
	symptomEquipmentDistance = 80
	// rpmBatteryDistance is the window for the RPM-near-battery false
	// positive (battery chargers report amps, not revolutions).
	rpmBatteryDistance = 40
)

// validate runs the ordered domain rules for one entity against the
// full candidate set and source text. Returns the first violated rule's
// reason, or empty when all pass.
func validate(entity models.Entity, all []models.Entity, fullText string) models.DropReason {
	loweredFull := strings.ToLower(fullText)

	if entity.Source == models.SourceAI && !grounded(entity.Text, loweredFull) {
		return models.ReasonAIHallucination
	}

	if canonicalBlacklist[strings.ToLower(strings.TrimSpace(entity.DisplayText()))] {
		return models.ReasonCanonicalBlacklist
	}

	if hasGarbageSuffix(entity.Text) {
		return models.ReasonGarbageSuffix
	}

	if reason := validateByType(entity, all, loweredFull); reason != "" {
		return reason
	}

	if completesQuestionTemplate(entity.Text, loweredFull) {
		return models.ReasonQuestionTemplate
	}

	return ""
}

// grounded reports whether the entity text appears in the source text,
// directly or through a registered brand abbreviation.
func grounded(text, loweredFull string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}
	if strings.Contains(loweredFull, lowered) {
		return true
	}
	// Full name extracted, abbreviation present in text (or vice versa).
	if abbrs, ok := brandAbbreviations[lowered]; ok {
		for _, abbr := range abbrs {
			if strings.Contains(loweredFull, abbr) {
				return true
			}
		}
	}
	for full, abbrs := range brandAbbreviations {
		for _, abbr := range abbrs {
			if lowered == abbr && strings.Contains(loweredFull, full) {
				return true
			}
		}
	}
	return false
}

func hasGarbageSuffix(text string) bool {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return false
	}
	return stopWords[fields[len(fields)-1]]
}

func validateByType(entity models.Entity, all []models.Entity, loweredFull string) models.DropReason {
	switch entity.Type {
	case models.EntityTypeOrganization:
		// Equipment vocabulary words misread as manufacturers.
		if extract.EquipmentVocabulary(entity.Text) {
			return models.ReasonTypeRuleViolation
		}

	case models.EntityTypePartNumber:
		// A bare equipment noun is not a part number without a
		// part-number-shaped token somewhere in it.
		if extract.EquipmentVocabulary(entity.Text) && !partNumberShapePattern.MatchString(entity.Text) {
			return models.ReasonTypeRuleViolation
		}

	case models.EntityTypeFaultCode:
		if !letterPattern.MatchString(entity.Text) {
			return models.ReasonTypeRuleViolation
		}
		if !digitPattern.MatchString(entity.Text) {
			upper := strings.TrimSpace(entity.Text)
			if !multiWordUpperPattern.MatchString(upper) && !faultKeywordPattern.MatchString(upper) {
				return models.ReasonTypeRuleViolation
			}
		}

	case models.EntityTypeMeasurement:
		if !measurementPlausible(entity.Text) {
			return models.ReasonMeasurementOutOfBand
		}
		if mentionsRPMNearBattery(entity, loweredFull) {
			return models.ReasonTypeRuleViolation
		}

	case models.EntityTypeSymptom:
		if entity.AdjustedConfidence < symptomConfidenceFloor && !hasNearbyEquipment(entity, all) {
			return models.ReasonTypeRuleViolation
		}
	}
	return ""
}

// measurementPlausible parses the value/unit and checks the unit's
// plausible range. Unknown units pass; only recognized out-of-range
// values are dropped.
func measurementPlausible(text string) bool {
	match := measurementPattern.FindStringSubmatch(text)
	if match == nil {
		return true
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return true
	}
	bounds, ok := measurementRanges[strings.ToLower(match[2])]
	if !ok {
		return true
	}
	return value >= bounds.Min && value <= bounds.Max
}

// mentionsRPMNearBattery drops the known false positive where a battery
// charger's amp reading gets read as an engine speed.
func mentionsRPMNearBattery(entity models.Entity, loweredFull string) bool {
	if !strings.Contains(strings.ToLower(entity.Text), "rpm") {
		return false
	}
	batteryIdx := strings.Index(loweredFull, "battery")
	if batteryIdx < 0 {
		return false
	}
	if entity.Span == nil || !entity.Span.Valid() {
		return true // no position info, assume the worst for this known trap
	}
	distance := entity.Span.Start - (batteryIdx + len("battery"))
	if distance < 0 {
		distance = batteryIdx - entity.Span.End
	}
	return distance >= 0 && distance <= rpmBatteryDistance
}

// hasNearbyEquipment reports whether any equipment-typed candidate sits
// within the bounded distance of the symptom. Symptoms without span
// information are given the benefit of the doubt.
func hasNearbyEquipment(symptom models.Entity, all []models.Entity) bool {
	if symptom.Span == nil || !symptom.Span.Valid() {
		return true
	}
	for _, other := range all {
		if other.Type != models.EntityTypeEquipment || other.Span == nil || !other.Span.Valid() {
			continue
		}
		gap := other.Span.Start - symptom.Span.End
		if gap < 0 {
			gap = symptom.Span.Start - other.Span.End
		}
		if gap <= symptomEquipmentDistance {
			return true
		}
	}
	return false
}

// completesQuestionTemplate drops entities that are really just the
// subject of an interrogative ("what is the <entity> number").
func completesQuestionTemplate(text, loweredFull string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return false
	}
	needle := "what is the " + lowered + " number"
	return strings.Contains(whitespacePattern.ReplaceAllString(loweredFull, " "), needle)
}
