package results

import (
	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

// capabilityDomains maps capabilities to user-facing result domains.
var capabilityDomains = map[string]string{
	"equipment_by_name":           "equipment",
	"part_by_part_number_or_name": "parts",
	"fault_code_lookup":           "faults",
	"work_order_search":           "work_orders",
	"sensor_reading_search":       "readings",
	"document_search":             "documents",
	"inventory_search":            "inventory",
	"crew_handover_search":        "handovers",
}

// GroupByDomain buckets ranked results by domain, preserving rank order
// inside each bucket. Results whose provenance went missing cannot be
// attributed to a domain and are dropped rather than misfiled.
func GroupByDomain(ranked []models.NormalizedResult, logger *zap.Logger) map[string][]models.NormalizedResult {
	grouped := make(map[string][]models.NormalizedResult)
	for _, result := range ranked {
		capability := stringValue(result.Metadata[models.ProvenanceCapabilityKey])
		if capability == "" {
			logger.Debug("dropping result without capability provenance",
				zap.String("id", result.ID),
				zap.String("type", result.Type))
			continue
		}
		domain, ok := capabilityDomains[capability]
		if !ok {
			domain = capability
		}
		grouped[domain] = append(grouped[domain], result)
	}
	return grouped
}
