package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/FortunateNaruto/pokemon-ranger/cache"
	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
	"github.com/FortunateNaruto/pokemon-ranger/game/tracker"
)

// CalcHandler serves derived-calculation read endpoints. Reads come
// from the registry snapshot, falling back to the shared snapshot
// cache (another instance may have built it); a fully missing snapshot
// is rebuilt on demand.
type CalcHandler struct {
	db       *gorm.DB
	registry *tracker.Registry
	cache    cache.Cache
}

// NewCalcHandler creates a new CalcHandler.
func NewCalcHandler(db *gorm.DB, registry *tracker.Registry, c cache.Cache) *CalcHandler {
	return &CalcHandler{db: db, registry: registry, cache: c}
}

// GetCalculations handles GET /api/trackers/:id/calculations.
func (h *CalcHandler) GetCalculations(c *gin.Context) {
	m, ok := loadOwnedTracker(c, h.db)
	if !ok {
		return
	}

	key := RegistryKey(m.AccountID, m.Name)
	calc, found := h.registry.Get(key)
	if !found {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if snapshot, err := h.cache.HGet(ctx, calcCacheKey(m.AccountID), m.Name); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(snapshot))
			return
		}

		domain, err := m.Domain()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		domain.Name = key
		calc = tracker.Build(domain)
		h.registry.Put(calc)
	}
	c.JSON(http.StatusOK, calc)
}

// GetPossibleValues handles
// GET /api/trackers/:id/possible-values?stat=&level=&evolution=.
func (h *CalcHandler) GetPossibleValues(c *gin.Context) {
	m, ok := loadOwnedTracker(c, h.db)
	if !ok {
		return
	}

	st, err := stat.Parse(c.Query("stat"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stat"})
		return
	}
	level, err := strconv.Atoi(c.Query("level"))
	if err != nil || level < 1 || level > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level"})
		return
	}
	evolution := 0
	if raw := c.Query("evolution"); raw != "" {
		if evolution, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evolution"})
			return
		}
	}

	domain, err := m.Domain()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if evolution < 0 || evolution >= len(domain.BaseStats) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evolution"})
		return
	}

	ranges := make(map[stat.Stat]tracker.RangeSet, len(stat.All))
	for _, s := range stat.All {
		ranges[s] = tracker.CalcIVRange(s, domain)
	}
	nature := tracker.CalcNature(ranges, domain)
	set := tracker.CalcPossibleStats(st, evolution, level, domain, ranges, nature)

	c.JSON(http.StatusOK, gin.H{
		"stat":      st,
		"level":     level,
		"evolution": evolution,
		"possible":  set.Possible,
		"valid":     set.Valid,
	})
}
