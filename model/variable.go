package model

import (
	"time"

	"github.com/FortunateNaruto/pokemon-ranger/game/tracker"
)

// TrackerVariable is a named route-level variable attached to a
// tracker: a raw string value with a declared type tag, coerced on read.
type TrackerVariable struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackerID int64     `gorm:"index:idx_variable_tracker;uniqueIndex:idx_variable_name,priority:1;not null" json:"tracker_id"`
	Name      string    `gorm:"uniqueIndex:idx_variable_name,priority:2;size:64;not null" json:"name"`
	Type      string    `gorm:"size:16;not null" json:"type"` // number | boolean | string
	Value     *string   `gorm:"size:256" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Coerced returns the variable's value converted per its type tag.
func (v *TrackerVariable) Coerced() any {
	return tracker.CoerceVariable(tracker.VariableType(v.Type), v.Value)
}
