package rest

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/FortunateNaruto/pokemon-ranger/game/tracker"
	"github.com/FortunateNaruto/pokemon-ranger/model"
)

// RebuildAll re-derives Calculations for every persisted tracker and
// atomically swaps the registry contents. Used by the periodic rebuild
// task and the admin recalculate endpoint.
func RebuildAll(db *gorm.DB, registry *tracker.Registry) (int, error) {
	var trackers []model.Tracker
	if err := db.Find(&trackers).Error; err != nil {
		return 0, fmt.Errorf("rebuild: load trackers: %w", err)
	}
	var vars []model.TrackerVariable
	if err := db.Find(&vars).Error; err != nil {
		return 0, fmt.Errorf("rebuild: load variables: %w", err)
	}
	varsByTracker := make(map[int64]map[string]any)
	for _, v := range vars {
		if varsByTracker[v.TrackerID] == nil {
			varsByTracker[v.TrackerID] = make(map[string]any)
		}
		varsByTracker[v.TrackerID][v.Name] = v.Coerced()
	}

	calcs := make([]*tracker.Calculations, 0, len(trackers))
	for i := range trackers {
		m := &trackers[i]
		domain, err := m.Domain()
		if err != nil {
			return 0, fmt.Errorf("rebuild: tracker %d: %w", m.ID, err)
		}
		domain.Name = RegistryKey(m.AccountID, m.Name)
		calc := tracker.Build(domain)
		calc.Variables = varsByTracker[m.ID]
		calcs = append(calcs, calc)
	}
	registry.ReplaceAll(calcs)
	return len(calcs), nil
}
