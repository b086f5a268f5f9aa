// Package registry holds the static, validated table of search
// capabilities and the planner that maps merged entities onto them.
// The registry is immutable after construction and safe for
// unsynchronized concurrent reads.
package registry

import (
	"fmt"
	"sort"

	"github.com/vesselworks/helm-search/pkg/apperrors"
	"github.com/vesselworks/helm-search/pkg/models"
)

// Registry is the immutable capability table.
type Registry struct {
	capabilities map[string]models.Capability
	ordered      []string // stable iteration order
}

// NewRegistry validates the capability set and builds the registry.
// Any invalid capability fails construction; a registry is either
// fully trusted or not built at all.
func NewRegistry(capabilities []models.Capability) (*Registry, error) {
	registry := &Registry{capabilities: make(map[string]models.Capability, len(capabilities))}

	for _, capability := range capabilities {
		if err := validateCapability(capability); err != nil {
			return nil, fmt.Errorf("%w: capability %q: %v", apperrors.ErrRegistryInvalid, capability.Name, err)
		}
		if _, exists := registry.capabilities[capability.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate capability %q", apperrors.ErrRegistryInvalid, capability.Name)
		}
		registry.capabilities[capability.Name] = capability
		registry.ordered = append(registry.ordered, capability.Name)
	}
	sort.Strings(registry.ordered)

	return registry, nil
}

func validateCapability(capability models.Capability) error {
	if capability.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch capability.Status {
	case models.CapabilityActive, models.CapabilityEmpty, models.CapabilityMissing, models.CapabilityDeprecated:
	default:
		return fmt.Errorf("unrecognized status %q", capability.Status)
	}
	if !capability.IsActive() && capability.BlockedReason == "" {
		return fmt.Errorf("non-active capability must declare a blocked reason")
	}
	if len(capability.EntityTriggers) == 0 {
		return fmt.Errorf("at least one entity trigger is required")
	}

	table := capability.Table
	if table.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if table.TenantIDColumn == "" {
		return fmt.Errorf("table %q must declare a tenant id column", table.Name)
	}
	if table.RPCFunction == "" && len(table.SearchableColumns) == 0 {
		return fmt.Errorf("table %q declares neither searchable columns nor an rpc function", table.Name)
	}
	for _, column := range table.SearchableColumns {
		if column.Name == "" {
			return fmt.Errorf("table %q has a searchable column without a name", table.Name)
		}
		if len(column.MatchTypes) == 0 {
			return fmt.Errorf("column %q on table %q declares no match types", column.Name, table.Name)
		}
		for _, matchType := range column.MatchTypes {
			switch matchType {
			case models.MatchExact, models.MatchILike, models.MatchTrigram,
				models.MatchNumericRange, models.MatchDateRange, models.MatchRPC:
			default:
				return fmt.Errorf("column %q on table %q has unrecognized match type %q", column.Name, table.Name, matchType)
			}
		}
	}
	return nil
}

// Get returns the named capability, active or not.
func (r *Registry) Get(name string) (models.Capability, bool) {
	capability, ok := r.capabilities[name]
	return capability, ok
}

// All returns every capability in stable name order.
func (r *Registry) All() []models.Capability {
	all := make([]models.Capability, 0, len(r.ordered))
	for _, name := range r.ordered {
		all = append(all, r.capabilities[name])
	}
	return all
}

// ActiveCapabilities returns only capabilities with status active, in
// stable name order.
func (r *Registry) ActiveCapabilities() []models.Capability {
	var active []models.Capability
	for _, name := range r.ordered {
		if capability := r.capabilities[name]; capability.IsActive() {
			active = append(active, capability)
		}
	}
	return active
}
