package extract

import (
	"regexp"
	"strings"

	"github.com/vesselworks/helm-search/pkg/models"
)

// vocabularySet is a fixed term list for one entity type. Terms are
// matched whole-word and case-insensitively.
type vocabularySet struct {
	Type       models.EntityType
	Confidence float64
	Terms      []string
}

var vocabularySets = []vocabularySet{
	{
		Type:       models.EntityTypeEquipment,
		Confidence: 0.75,
		Terms: []string{
			"bilge pump", "fire pump", "fuel pump", "water pump", "pump",
			"main engine", "engine", "generator", "genset", "gearbox",
			"turbocharger", "turbo", "heat exchanger", "aftercooler",
			"watermaker", "bow thruster", "stern thruster", "thruster",
			"stabilizer", "windlass", "davit", "crane", "compressor",
			"chiller", "air handler", "hvac", "air conditioning",
			"autopilot", "radar", "gps", "vhf", "battery charger",
			"inverter", "shore power", "battery", "alternator",
			"fuel filter", "oil filter", "separator", "purifier",
			"sea strainer", "raw water strainer", "exhaust riser",
			"injector", "starter motor", "hydraulic pump", "steering gear",
		},
	},
	{
		Type:       models.EntityTypeOrganization,
		Confidence: 0.8,
		Terms: []string{
			"caterpillar", "cat", "cummins", "volvo penta", "volvo",
			"mtu", "man", "yanmar", "john deere", "deere", "kohler",
			"onan", "northern lights", "westerbeke", "fischer panda",
			"furuno", "garmin", "raymarine", "simrad", "b&g",
			"victron", "mastervolt", "dometic", "webasto", "sea recovery",
			"alfa laval", "racor", "separ", "side-power", "vetus",
			"naiad", "quantum", "abt trac",
		},
	},
	{
		Type:       models.EntityTypeSymptom,
		Confidence: 0.7,
		Terms: []string{
			"overheating", "overheat", "leaking", "leak", "vibration",
			"vibrating", "noise", "noisy", "smoke", "smoking",
			"low pressure", "high pressure", "pressure low", "pressure high",
			"low voltage", "high temperature", "won't start", "not starting",
			"no start", "hard start", "stalling", "surging", "misfire",
			"alarm", "warning", "tripping", "shutdown", "shut down",
			"corrosion", "corroded", "blocked", "clogged", "fouled",
			"dripping", "grinding", "slipping", "sluggish",
		},
	},
	{
		Type:       models.EntityTypeStatus,
		Confidence: 0.7,
		Terms: []string{
			"open", "pending", "in progress", "completed", "closed",
			"overdue", "scheduled", "deferred", "cancelled", "on hold",
			"awaiting parts", "urgent",
		},
	},
	{
		Type:       models.EntityTypeAction,
		Confidence: 0.65,
		Terms: []string{
			"replace", "repair", "inspect", "service", "overhaul",
			"order", "clean", "flush", "test", "calibrate", "adjust",
			"lubricate", "tighten", "bleed", "prime", "winterize",
			"descale", "troubleshoot",
		},
	},
	{
		Type:       models.EntityTypeLocation,
		Confidence: 0.7,
		Terms: []string{
			"engine room", "bilge", "lazarette", "flybridge", "galley",
			"wheelhouse", "bridge", "foredeck", "aft deck", "swim platform",
			"crew mess", "tender garage", "chain locker", "pump room",
			"forepeak", "sail locker",
		},
	},
}

// compiledVocabulary holds one term's matcher. Built once at extractor
// construction; safe for concurrent use.
type compiledVocabulary struct {
	Type       models.EntityType
	Confidence float64
	Term       string
	Pattern    *regexp.Regexp
}

func compileVocabularies(sets []vocabularySet) []compiledVocabulary {
	compiled := make([]compiledVocabulary, 0, 256)
	for _, set := range sets {
		for _, term := range set.Terms {
			// Whole-word, case-insensitive. Multi-word terms tolerate any
			// run of whitespace between words.
			escaped := regexp.QuoteMeta(term)
			escaped = strings.ReplaceAll(escaped, " ", `\s+`)
			compiled = append(compiled, compiledVocabulary{
				Type:       set.Type,
				Confidence: set.Confidence,
				Term:       term,
				Pattern:    regexp.MustCompile(`(?i)\b` + escaped + `\b`),
			})
		}
	}
	return compiled
}

// EquipmentVocabulary reports whether the term is a known equipment
// noun. The merger uses this to catch equipment words misclassified as
// organizations and part numbers.
func EquipmentVocabulary(term string) bool {
	lowered := strings.ToLower(strings.TrimSpace(term))
	for _, set := range vocabularySets {
		if set.Type != models.EntityTypeEquipment {
			continue
		}
		for _, t := range set.Terms {
			if t == lowered {
				return true
			}
		}
	}
	return false
}
