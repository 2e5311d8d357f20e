package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
	"github.com/FortunateNaruto/pokemon-ranger/game/tracker"
)

// Tracker is the persisted form of one tracked creature. Structured
// fields (base stats, EV segments, observations, overrides) live in
// JSON columns; the computation core works on the decoded domain view.
type Tracker struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID     int64  `gorm:"index:idx_tracker_account;uniqueIndex:idx_tracker_name,priority:1;not null" json:"account_id"`
	Name          string `gorm:"uniqueIndex:idx_tracker_name,priority:2;size:64;not null" json:"name"`
	Generation    int    `gorm:"default:4" json:"generation"`
	StartingLevel int    `gorm:"default:5" json:"starting_level"`

	BaseStats    datatypes.JSON `json:"base_stats"`   // [[hp,atk,def,spa,spd,spe], ...] per evolution
	EVSegments   datatypes.JSON `json:"ev_segments"`  // {startLevel: [evs...]}
	Observations datatypes.JSON `json:"observations"` // {evolution: {level: {stat: value}}}

	StaticIVs      datatypes.JSON `json:"static_ivs"`    // {stat: iv}
	StaticNature   datatypes.JSON `json:"static_nature"` // {"decreased":...,"increased":...}
	DirectInput    bool           `gorm:"default:false" json:"direct_input"`
	DirectInputIVs datatypes.JSON `json:"direct_input_ivs"`
	ManualNegative *string        `gorm:"size:16" json:"manual_negative"`
	ManualPositive *string        `gorm:"size:16" json:"manual_positive"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Domain decodes the JSON columns into the computation core's view.
func (m *Tracker) Domain() (*tracker.Tracker, error) {
	t := &tracker.Tracker{
		Name:          m.Name,
		Generation:    m.Generation,
		StartingLevel: m.StartingLevel,
		DirectInput:   m.DirectInput,
	}
	if err := decodeJSON(m.BaseStats, &t.BaseStats); err != nil {
		return nil, err
	}
	if err := decodeJSON(m.EVSegments, &t.EVSegments); err != nil {
		return nil, err
	}
	if err := decodeJSON(m.Observations, &t.Observations); err != nil {
		return nil, err
	}
	if err := decodeJSON(m.StaticIVs, &t.StaticIVs); err != nil {
		return nil, err
	}
	if err := decodeJSON(m.StaticNature, &t.StaticNature); err != nil {
		return nil, err
	}
	if err := decodeJSON(m.DirectInputIVs, &t.DirectInputIVs); err != nil {
		return nil, err
	}
	var err error
	if t.ManualNegative, err = parseStatPtr(m.ManualNegative); err != nil {
		return nil, err
	}
	if t.ManualPositive, err = parseStatPtr(m.ManualPositive); err != nil {
		return nil, err
	}
	return t, nil
}

// SetObservations re-encodes the observation map after a mutation.
func (m *Tracker) SetObservations(obs map[int]map[int]map[stat.Stat]int) error {
	return encodeJSON(&m.Observations, obs)
}

// SetEVSegments re-encodes the EV segment map.
func (m *Tracker) SetEVSegments(segments map[int]stat.Values) error {
	return encodeJSON(&m.EVSegments, segments)
}

// SetBaseStats re-encodes the per-evolution base stat rows.
func (m *Tracker) SetBaseStats(rows []stat.Values) error {
	return encodeJSON(&m.BaseStats, rows)
}

// SetStaticIVs re-encodes the pinned IVs; nil clears the column.
func (m *Tracker) SetStaticIVs(ivs map[stat.Stat]int) error {
	if ivs == nil {
		m.StaticIVs = nil
		return nil
	}
	return encodeJSON(&m.StaticIVs, ivs)
}

// SetStaticNature re-encodes the authoritative nature; nil clears it.
func (m *Tracker) SetStaticNature(n *stat.Nature) error {
	if n == nil {
		m.StaticNature = nil
		return nil
	}
	return encodeJSON(&m.StaticNature, n)
}

// SetDirectInputIVs re-encodes the manually entered IV line.
func (m *Tracker) SetDirectInputIVs(ivs stat.Values) error {
	return encodeJSON(&m.DirectInputIVs, ivs)
}

func decodeJSON(col datatypes.JSON, dst any) error {
	if len(col) == 0 || string(col) == "null" {
		return nil
	}
	return json.Unmarshal(col, dst)
}

func encodeJSON(col *datatypes.JSON, src any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	*col = datatypes.JSON(b)
	return nil
}

func parseStatPtr(name *string) (*stat.Stat, error) {
	if name == nil {
		return nil, nil
	}
	st, err := stat.Parse(*name)
	if err != nil {
		return nil, err
	}
	return stat.StatPtr(st), nil
}
