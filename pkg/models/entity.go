package models

// EntityType classifies what an extracted entity refers to.
type EntityType string

const (
	EntityTypeEquipment    EntityType = "equipment"
	EntityTypeFaultCode    EntityType = "fault_code"
	EntityTypeMeasurement  EntityType = "measurement"
	EntityTypePartNumber   EntityType = "part_number"
	EntityTypeModel        EntityType = "model"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeLocation     EntityType = "location"
	EntityTypeSymptom      EntityType = "symptom"
	EntityTypeStatus       EntityType = "status"
	EntityTypeAction       EntityType = "action"
)

// AllEntityTypes lists every recognized entity type, in precedence order
// used for overlap scoring (earlier types win ties over later ones).
var AllEntityTypes = []EntityType{
	EntityTypeFaultCode,
	EntityTypePartNumber,
	EntityTypeMeasurement,
	EntityTypeModel,
	EntityTypeOrganization,
	EntityTypeEquipment,
	EntityTypeLocation,
	EntityTypeSymptom,
	EntityTypeStatus,
	EntityTypeAction,
}

// EntitySource identifies which extraction path produced an entity.
type EntitySource string

const (
	SourcePattern    EntitySource = "pattern"
	SourceVocabulary EntitySource = "vocabulary"
	SourceAI         EntitySource = "ai"
)

// Span marks the character range of an entity in the source text.
// Start is inclusive, End exclusive. A zero Span means "unknown position".
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the span is a usable range.
func (s Span) Valid() bool {
	return s.End > s.Start && s.Start >= 0
}

// Len returns the character length covered by the span.
func (s Span) Len() int {
	if !s.Valid() {
		return 0
	}
	return s.End - s.Start
}

// Overlaps reports whether two spans intersect.
func (s Span) Overlaps(other Span) bool {
	return s.Valid() && other.Valid() && s.Start < other.End && other.Start < s.End
}

// Entity is one candidate term extracted from an operator query.
// Entities are value objects: every pipeline stage that changes one
// produces a new value rather than mutating in place.
type Entity struct {
	Text       string       `json:"text"`
	Type       EntityType   `json:"type"`
	Confidence float64      `json:"confidence"` // 0.0 - 1.0
	Source     EntitySource `json:"source"`
	Span       *Span        `json:"span,omitempty"`
	Canonical  string       `json:"canonical,omitempty"`

	// Derived during merge.
	AdjustedConfidence float64 `json:"adjusted_confidence,omitempty"`
	OverlapScore       float64 `json:"overlap_score,omitempty"`

	// Semantic modifiers, defaulted explicitly rather than probed.
	Negated   bool    `json:"negated,omitempty"`
	Qualifier string  `json:"qualifier,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`
	Approx    bool    `json:"approx,omitempty"`
}

// DisplayText returns the canonical form when set, otherwise the raw text.
func (e Entity) DisplayText() string {
	if e.Canonical != "" {
		return e.Canonical
	}
	return e.Text
}

// DropReason records why the merger kept or discarded a candidate.
type DropReason string

const (
	ReasonPassedDedup          DropReason = "passed_dedup"
	ReasonDuplicateText        DropReason = "duplicate_text"
	ReasonOverlapLoser         DropReason = "overlap_loser"
	ReasonConfidenceFail       DropReason = "confidence_fail" // suffixed with _<type> when logged
	ReasonCanonicalBlacklist   DropReason = "canonical_blacklist"
	ReasonGarbageSuffix        DropReason = "garbage_suffix"
	ReasonAIHallucination      DropReason = "ai_hallucination_not_in_text"
	ReasonTypeRuleViolation    DropReason = "type_rule_violation"
	ReasonMeasurementOutOfBand DropReason = "measurement_out_of_range"
	ReasonQuestionTemplate     DropReason = "question_template"
)
