package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vesselworks/helm-search/pkg/models"
)

func TestValidate_CanonicalBlacklist(t *testing.T) {
	for _, text := range []string{"equipment", "System", "machinery", "UNKNOWN"} {
		candidate := models.Entity{Text: text, Type: models.EntityTypeEquipment, AdjustedConfidence: 0.9}
		assert.Equal(t, models.ReasonCanonicalBlacklist, validate(candidate, nil, text), "text %q", text)
	}
}

func TestValidate_GarbageSuffix(t *testing.T) {
	candidate := models.Entity{Text: "generator and", Type: models.EntityTypeEquipment, AdjustedConfidence: 0.9}
	assert.Equal(t, models.ReasonGarbageSuffix, validate(candidate, nil, "generator and the pump"))

	clean := models.Entity{Text: "generator", Type: models.EntityTypeEquipment, AdjustedConfidence: 0.9}
	assert.Empty(t, validate(clean, nil, "generator and the pump"))
}

func TestValidate_OrganizationEquipmentConfusion(t *testing.T) {
	candidate := models.Entity{Text: "generator", Type: models.EntityTypeOrganization, AdjustedConfidence: 0.9}
	assert.Equal(t, models.ReasonTypeRuleViolation, validate(candidate, nil, "the generator brand"))
}

func TestValidate_PartNumberShape(t *testing.T) {
	// A bare equipment noun cannot be a part number.
	noun := models.Entity{Text: "pump", Type: models.EntityTypePartNumber, AdjustedConfidence: 0.9}
	assert.Equal(t, models.ReasonTypeRuleViolation, validate(noun, nil, "order a pump"))

	shaped := models.Entity{Text: "3583-20991", Type: models.EntityTypePartNumber, AdjustedConfidence: 0.9}
	assert.Empty(t, validate(shaped, nil, "order 3583-20991"))
}

func TestValidate_FaultCodeStructure(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason models.DropReason
	}{
		{name: "digits only", text: "12345", reason: models.ReasonTypeRuleViolation},
		{name: "letters with fault keyword", text: "LOW OIL PRESSURE ALARM", reason: ""},
		{name: "multi word upper", text: "HIGH EXHAUST TEMP", reason: ""},
		{name: "single plain word", text: "overheat", reason: models.ReasonTypeRuleViolation},
		{name: "structured code", text: "AL-128", reason: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := models.Entity{Text: tt.text, Type: models.EntityTypeFaultCode, AdjustedConfidence: 0.9}
			assert.Equal(t, tt.reason, validate(candidate, nil, tt.text))
		})
	}
}

func TestValidate_MeasurementRanges(t *testing.T) {
	tests := []struct {
		text   string
		reason models.DropReason
	}{
		{text: "90 C", reason: ""},
		{text: "900 C", reason: models.ReasonMeasurementOutOfBand},
		{text: "-80 C", reason: models.ReasonMeasurementOutOfBand},
		{text: "2.5 bar", reason: ""},
		{text: "12000 rpm", reason: models.ReasonMeasurementOutOfBand},
		{text: "450 furlongs", reason: ""}, // unknown unit passes
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			candidate := models.Entity{Text: tt.text, Type: models.EntityTypeMeasurement, AdjustedConfidence: 0.9}
			assert.Equal(t, tt.reason, validate(candidate, nil, tt.text))
		})
	}
}

func TestValidate_RPMNearBattery(t *testing.T) {
	fullText := "battery charger shows 1800 rpm which makes no sense"
	candidate := models.Entity{
		Text:               "1800 rpm",
		Type:               models.EntityTypeMeasurement,
		AdjustedConfidence: 0.9,
		Span:               span(22, 30),
	}
	assert.Equal(t, models.ReasonTypeRuleViolation, validate(candidate, nil, fullText))

	// Same reading far away from any battery mention is fine.
	engineText := "main engine idling at 1800 rpm"
	engineReading := models.Entity{
		Text:               "1800 rpm",
		Type:               models.EntityTypeMeasurement,
		AdjustedConfidence: 0.9,
		Span:               span(22, 30),
	}
	assert.Empty(t, validate(engineReading, nil, engineText))
}

func TestValidate_SymptomNeedsNearbyEquipment(t *testing.T) {
	lowConfidence := models.Entity{
		Text:               "noise",
		Type:               models.EntityTypeSymptom,
		AdjustedConfidence: 0.55,
		Span:               span(0, 5),
	}

	// No equipment anywhere near: dropped.
	assert.Equal(t, models.ReasonTypeRuleViolation, validate(lowConfidence, nil, "noise"))

	// Equipment within the window rescues it.
	siblings := []models.Entity{
		{Text: "gearbox", Type: models.EntityTypeEquipment, Span: span(11, 18)},
	}
	assert.Empty(t, validate(lowConfidence, siblings, "noise from gearbox"))

	// High confidence needs no support.
	confident := models.Entity{
		Text:               "overheating",
		Type:               models.EntityTypeSymptom,
		AdjustedConfidence: 0.7,
		Span:               span(0, 11),
	}
	assert.Empty(t, validate(confident, nil, "overheating"))
}

func TestValidate_QuestionTemplate(t *testing.T) {
	candidate := models.Entity{Text: "engine", Type: models.EntityTypeEquipment, AdjustedConfidence: 0.9, Span: span(12, 18)}
	assert.Equal(t, models.ReasonQuestionTemplate, validate(candidate, nil, "what is the engine number"))
	assert.Empty(t, validate(candidate, nil, "what is the engine doing"))
}

func TestGrounded(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		fullText string
		expected bool
	}{
		{name: "literal substring", text: "overheating", fullText: "engine overheating badly", expected: true},
		{name: "case insensitive", text: "Volvo", fullText: "the volvo genset", expected: true},
		{name: "abbreviation grounds full name", text: "Caterpillar", fullText: "cat c32 alarm", expected: true},
		{name: "full name grounds abbreviation", text: "volvo", fullText: "volvo penta d2-75", expected: true},
		{name: "not present", text: "cummins", fullText: "cat c32 alarm", expected: false},
		{name: "empty", text: "  ", fullText: "anything", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, grounded(tt.text, tt.fullText))
		})
	}
}
