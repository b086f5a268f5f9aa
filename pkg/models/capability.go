package models

// CapabilityStatus describes whether a capability can be executed.
type CapabilityStatus string

const (
	CapabilityActive     CapabilityStatus = "active"
	CapabilityEmpty      CapabilityStatus = "empty"      // backing table exists but has no data yet
	CapabilityMissing    CapabilityStatus = "missing"    // backing table not provisioned
	CapabilityDeprecated CapabilityStatus = "deprecated" // superseded, kept for explainability
)

// MatchType selects how a searchable column is compared against a term.
// The first declared match type on a column is authoritative.
type MatchType string

const (
	MatchExact        MatchType = "EXACT"
	MatchILike        MatchType = "ILIKE"
	MatchTrigram      MatchType = "TRIGRAM"
	MatchNumericRange MatchType = "NUMERIC_RANGE"
	MatchDateRange    MatchType = "DATE_RANGE"
	MatchRPC          MatchType = "RPC"
)

// RangeBounds constrains values accepted by a range-matched column.
type RangeBounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// SearchableColumn declares one allow-listed column on a table.
type SearchableColumn struct {
	Name       string       `json:"name" yaml:"name"`
	MatchTypes []MatchType  `json:"match_types" yaml:"match_types"`
	IsPrimary  bool         `json:"is_primary" yaml:"is_primary"`
	Bounds     *RangeBounds `json:"bounds,omitempty" yaml:"bounds,omitempty"`
}

// PrimaryMatchType returns the authoritative match type for the column.
func (c SearchableColumn) PrimaryMatchType() MatchType {
	if len(c.MatchTypes) == 0 {
		return MatchILike
	}
	return c.MatchTypes[0]
}

// TableSpec binds a capability to one backing table (or stored search
// function) and its allow-listed columns.
type TableSpec struct {
	Name              string             `json:"name" yaml:"name"`
	TenantIDColumn    string             `json:"tenant_id_column" yaml:"tenant_id_column"` // default yacht_id
	PrimaryKey        string             `json:"primary_key" yaml:"primary_key"`
	SearchableColumns []SearchableColumn `json:"searchable_columns" yaml:"searchable_columns"`
	ResponseColumns   []string           `json:"response_columns,omitempty" yaml:"response_columns,omitempty"` // empty = all
	RPCFunction       string             `json:"rpc_function,omitempty" yaml:"rpc_function,omitempty"`
}

// Column returns the searchable column with the given name, if declared.
func (t TableSpec) Column(name string) (SearchableColumn, bool) {
	for _, col := range t.SearchableColumns {
		if col.Name == name {
			return col, true
		}
	}
	return SearchableColumn{}, false
}

// PrimaryColumn returns the column marked primary, falling back to the
// first declared column.
func (t TableSpec) PrimaryColumn() (SearchableColumn, bool) {
	for _, col := range t.SearchableColumns {
		if col.IsPrimary {
			return col, true
		}
	}
	if len(t.SearchableColumns) > 0 {
		return t.SearchableColumns[0], true
	}
	return SearchableColumn{}, false
}

// Capability maps entity types to one security-bounded query target.
type Capability struct {
	Name             string           `json:"name" yaml:"name"`
	Description      string           `json:"description" yaml:"description"`
	Status           CapabilityStatus `json:"status" yaml:"status"`
	Table            TableSpec        `json:"table" yaml:"table"`
	EntityTriggers   []EntityType     `json:"entity_triggers" yaml:"entity_triggers"`
	AvailableActions []string         `json:"available_actions,omitempty" yaml:"available_actions,omitempty"`
	BlockedReason    string           `json:"blocked_reason,omitempty" yaml:"blocked_reason,omitempty"`
}

// TriggeredBy reports whether the capability responds to the entity type.
func (c Capability) TriggeredBy(t EntityType) bool {
	for _, trigger := range c.EntityTriggers {
		if trigger == t {
			return true
		}
	}
	return false
}

// IsActive reports whether the capability may be planned and executed.
func (c Capability) IsActive() bool {
	return c.Status == CapabilityActive
}

// ExecutionPlan binds one merged entity to one capability for execution.
type ExecutionPlan struct {
	Capability    string     `json:"capability"`
	EntityType    EntityType `json:"entity_type"`
	EntityValue   string     `json:"entity_value"`
	SearchColumn  string     `json:"search_column"`
	Blocked       bool       `json:"blocked,omitempty"`
	BlockedReason string     `json:"blocked_reason,omitempty"`
}
