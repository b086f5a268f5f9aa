package registry

import (
	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/models"
)

// Planner maps merged entities to execution plans.
type Planner struct {
	registry *Registry
	logger   *zap.Logger
}

// NewPlanner builds a planner over an immutable registry.
func NewPlanner(registry *Registry, logger *zap.Logger) *Planner {
	return &Planner{registry: registry, logger: logger.Named("planner")}
}

// Plan emits one plan per (entity, triggered capability) pair, bound to
// the capability's primary searchable column. Capabilities with status
// "empty" are skipped outright: there is nothing behind them, so a
// blocked plan would only add noise. Other non-active statuses produce
// blocked plans carrying the registry's reason, so callers can explain
// why a match went nowhere.
func (p *Planner) Plan(entities []models.Entity) []models.ExecutionPlan {
	var plans []models.ExecutionPlan
	for _, entity := range entities {
		for _, capability := range p.registry.All() {
			if !capability.TriggeredBy(entity.Type) {
				continue
			}
			if capability.Status == models.CapabilityEmpty {
				p.logger.Debug("skipping empty capability",
					zap.String("capability", capability.Name),
					zap.String("entity_type", string(entity.Type)))
				continue
			}

			plan := models.ExecutionPlan{
				Capability:  capability.Name,
				EntityType:  entity.Type,
				EntityValue: entity.DisplayText(),
			}
			if column, ok := capability.Table.PrimaryColumn(); ok {
				plan.SearchColumn = column.Name
			}
			if !capability.IsActive() {
				plan.Blocked = true
				plan.BlockedReason = capability.BlockedReason
			}
			plans = append(plans, plan)
		}
	}
	return plans
}
