package registry

import (
	"github.com/vesselworks/helm-search/pkg/models"
)

// defaultTenantColumn scopes every maintenance table to one vessel.
const defaultTenantColumn = "yacht_id"

// DefaultCapabilities returns the compiled-in capability set for the
// vessel maintenance schema. A YAML definitions file (see Load) can
// replace this wholesale; there is no per-capability merging.
func DefaultCapabilities() []models.Capability {
	return []models.Capability{
		{
			Name:        "equipment_by_name",
			Description: "Installed equipment by name, manufacturer or model",
			Status:      models.CapabilityActive,
			Table: models.TableSpec{
				Name:           "equipment",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				SearchableColumns: []models.SearchableColumn{
					{Name: "name", MatchTypes: []models.MatchType{models.MatchILike, models.MatchTrigram}, IsPrimary: true},
					{Name: "manufacturer", MatchTypes: []models.MatchType{models.MatchILike}},
					{Name: "model", MatchTypes: []models.MatchType{models.MatchILike}},
					{Name: "location", MatchTypes: []models.MatchType{models.MatchILike}},
				},
				ResponseColumns: []string{"id", "name", "manufacturer", "model", "location", "serial_number", "running_hours", "notes"},
			},
			EntityTriggers: []models.EntityType{
				models.EntityTypeEquipment,
				models.EntityTypeModel,
				models.EntityTypeOrganization,
			},
			AvailableActions: []string{"create_work_order", "view_history", "view_manual"},
		},
		{
			Name:        "part_by_part_number_or_name",
			Description: "Spare parts by part number or descriptive name",
			Status:      models.CapabilityActive,
			Table: models.TableSpec{
				Name:           "parts",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				SearchableColumns: []models.SearchableColumn{
					{Name: "part_number", MatchTypes: []models.MatchType{models.MatchExact, models.MatchILike}, IsPrimary: true},
					{Name: "name", MatchTypes: []models.MatchType{models.MatchILike, models.MatchTrigram}},
					{Name: "manufacturer", MatchTypes: []models.MatchType{models.MatchILike}},
				},
				ResponseColumns: []string{"id", "part_number", "name", "manufacturer", "quantity_on_board", "location", "min_stock"},
			},
			EntityTriggers: []models.EntityType{
				models.EntityTypePartNumber,
				models.EntityTypeEquipment,
			},
			AvailableActions: []string{"order_part", "adjust_stock"},
		},
		{
			Name:        "fault_code_lookup",
			Description: "Diagnostic fault codes and their remedies",
			Status:      models.CapabilityActive,
			Table: models.TableSpec{
				Name:           "fault_codes",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				SearchableColumns: []models.SearchableColumn{
					{Name: "code", MatchTypes: []models.MatchType{models.MatchExact, models.MatchILike}, IsPrimary: true},
					{Name: "description", MatchTypes: []models.MatchType{models.MatchILike}},
				},
			},
			EntityTriggers:   []models.EntityType{models.EntityTypeFaultCode},
			AvailableActions: []string{"create_work_order", "view_manual"},
		},
		{
			Name:        "work_order_search",
			Description: "Open and historical work orders",
			Status:      models.CapabilityActive,
			Table: models.TableSpec{
				Name:           "work_orders",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				SearchableColumns: []models.SearchableColumn{
					{Name: "title", MatchTypes: []models.MatchType{models.MatchILike, models.MatchTrigram}, IsPrimary: true},
					{Name: "status", MatchTypes: []models.MatchType{models.MatchExact}},
					{Name: "created_at", MatchTypes: []models.MatchType{models.MatchDateRange}},
				},
				ResponseColumns: []string{"id", "title", "description", "status", "priority", "equipment_id", "assigned_to", "created_at", "due_date"},
			},
			EntityTriggers: []models.EntityType{
				models.EntityTypeEquipment,
				models.EntityTypeSymptom,
				models.EntityTypeStatus,
				models.EntityTypeAction,
			},
			AvailableActions: []string{"complete_work_order", "reassign_work_order", "add_note"},
		},
		{
			Name:        "sensor_reading_search",
			Description: "Recorded sensor and gauge readings",
			Status:      models.CapabilityActive,
			Table: models.TableSpec{
				Name:           "sensor_readings",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				SearchableColumns: []models.SearchableColumn{
					{Name: "sensor_type", MatchTypes: []models.MatchType{models.MatchILike}, IsPrimary: true},
					{Name: "reading_value", MatchTypes: []models.MatchType{models.MatchNumericRange}, Bounds: &models.RangeBounds{Min: -1000, Max: 100000}},
					{Name: "recorded_at", MatchTypes: []models.MatchType{models.MatchDateRange}},
				},
			},
			EntityTriggers:   []models.EntityType{models.EntityTypeMeasurement},
			AvailableActions: []string{"view_trend"},
		},
		{
			Name:        "document_search",
			Description: "Manuals and technical documents via stored full-text search",
			Status:      models.CapabilityActive,
			Table: models.TableSpec{
				Name:           "document_chunks",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				RPCFunction:    "search_documents",
			},
			EntityTriggers: []models.EntityType{
				models.EntityTypeSymptom,
				models.EntityTypeEquipment,
				models.EntityTypeFaultCode,
				models.EntityTypeLocation,
			},
			AvailableActions: []string{"view_document"},
		},
		{
			Name:        "inventory_search",
			Description: "Consumables and provisions inventory",
			Status:      models.CapabilityEmpty,
			Table: models.TableSpec{
				Name:           "inventory_items",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				SearchableColumns: []models.SearchableColumn{
					{Name: "name", MatchTypes: []models.MatchType{models.MatchILike}, IsPrimary: true},
				},
			},
			EntityTriggers:   []models.EntityType{models.EntityTypeEquipment, models.EntityTypePartNumber},
			AvailableActions: []string{"adjust_stock"},
			BlockedReason:    "inventory sync has not completed for this vessel",
		},
		{
			Name:        "crew_handover_search",
			Description: "Crew handover notes (superseded)",
			Status:      models.CapabilityDeprecated,
			Table: models.TableSpec{
				Name:           "handover_notes",
				TenantIDColumn: defaultTenantColumn,
				PrimaryKey:     "id",
				SearchableColumns: []models.SearchableColumn{
					{Name: "body", MatchTypes: []models.MatchType{models.MatchILike}, IsPrimary: true},
				},
			},
			EntityTriggers:   []models.EntityType{models.EntityTypeSymptom, models.EntityTypeStatus},
			AvailableActions: []string{"view_handover"},
			BlockedReason:    "handover search moved to the handover service",
		},
	}
}
