package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

func TestTrackerDomain_RoundTrip(t *testing.T) {
	m := &Tracker{
		Name:          "torchic",
		Generation:    3,
		StartingLevel: 5,
	}
	require.NoError(t, m.SetBaseStats([]stat.Values{{45, 60, 40, 70, 50, 45}}))
	require.NoError(t, m.SetEVSegments(map[int]stat.Values{5: {0, 1, 0, 0, 0, 0}}))
	require.NoError(t, m.SetObservations(map[int]map[int]map[stat.Stat]int{
		0: {6: {stat.Attack: 12, stat.HP: 21}},
	}))
	require.NoError(t, m.SetStaticIVs(map[stat.Stat]int{stat.Speed: 31}))
	require.NoError(t, m.SetStaticNature(&stat.Nature{Increased: stat.StatPtr(stat.Attack)}))

	dom, err := m.Domain()
	require.NoError(t, err)
	assert.Equal(t, "torchic", dom.Name)
	assert.Equal(t, 3, dom.Generation)
	require.Len(t, dom.BaseStats, 1)
	assert.Equal(t, 60, dom.BaseStats[0][stat.Attack])
	assert.Equal(t, stat.Values{0, 1, 0, 0, 0, 0}, dom.EVSegments[5])
	assert.Equal(t, 12, dom.Observations[0][6][stat.Attack])
	assert.Equal(t, 31, dom.StaticIVs[stat.Speed])
	require.NotNil(t, dom.StaticNature)
	assert.Equal(t, stat.Attack, *dom.StaticNature.Increased)
	assert.Nil(t, dom.StaticNature.Decreased)
}

func TestTrackerDomain_EmptyColumns(t *testing.T) {
	m := &Tracker{Name: "empty", Generation: 4}
	dom, err := m.Domain()
	require.NoError(t, err)
	assert.Empty(t, dom.BaseStats)
	assert.Empty(t, dom.Observations)
	assert.Nil(t, dom.StaticNature)
}

func TestTrackerDomain_ManualPins(t *testing.T) {
	name := "spAttack"
	m := &Tracker{Name: "pins", ManualNegative: &name}
	dom, err := m.Domain()
	require.NoError(t, err)
	require.NotNil(t, dom.ManualNegative)
	assert.Equal(t, stat.SpAttack, *dom.ManualNegative)

	bad := "accuracy"
	m.ManualPositive = &bad
	_, err = m.Domain()
	assert.Error(t, err)
}

func TestTrackerDomain_MalformedColumn(t *testing.T) {
	m := &Tracker{Name: "bad", BaseStats: datatypes.JSON(`{"not":"rows"}`)}
	_, err := m.Domain()
	assert.Error(t, err)
}

func TestSetStaticIVs_NilClears(t *testing.T) {
	m := &Tracker{Name: "clear"}
	require.NoError(t, m.SetStaticIVs(map[stat.Stat]int{stat.HP: 1}))
	require.NotEmpty(t, m.StaticIVs)
	require.NoError(t, m.SetStaticIVs(nil))
	assert.Empty(t, m.StaticIVs)
}
