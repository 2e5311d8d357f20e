package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/FortunateNaruto/pokemon-ranger/api/sse"
	"github.com/FortunateNaruto/pokemon-ranger/audit"
	"github.com/FortunateNaruto/pokemon-ranger/cache"
	"github.com/FortunateNaruto/pokemon-ranger/config"
	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
	"github.com/FortunateNaruto/pokemon-ranger/game/tracker"
	mw "github.com/FortunateNaruto/pokemon-ranger/middleware"
	"github.com/FortunateNaruto/pokemon-ranger/model"
	"github.com/FortunateNaruto/pokemon-ranger/resource"
)

// calcCacheKey is the cache hash holding serialized Calculations
// snapshots for one account, one field per tracker name. Shared across
// instances when the cache is redis-backed.
func calcCacheKey(accountID int64) string {
	return fmt.Sprintf("calc:%d", accountID)
}

// TrackerHandler handles tracker REST endpoints.
type TrackerHandler struct {
	db       *gorm.DB
	species  *resource.SpeciesLoader
	registry *tracker.Registry
	cache    cache.Cache
	pubsub   cache.PubSub
	auditSvc *audit.Service
	ranger   config.RangerConfig
	logger   *zap.Logger
}

// NewTrackerHandler creates a new TrackerHandler.
func NewTrackerHandler(
	db *gorm.DB,
	species *resource.SpeciesLoader,
	registry *tracker.Registry,
	c cache.Cache,
	pubsub cache.PubSub,
	auditSvc *audit.Service,
	ranger config.RangerConfig,
	logger *zap.Logger,
) *TrackerHandler {
	return &TrackerHandler{
		db:       db,
		species:  species,
		registry: registry,
		cache:    c,
		pubsub:   pubsub,
		auditSvc: auditSvc,
		ranger:   ranger,
		logger:   logger,
	}
}

// RegistryKey namespaces a tracker name by its owning account so two
// accounts can track under the same name.
func RegistryKey(accountID int64, name string) string {
	return fmt.Sprintf("%d/%s", accountID, name)
}

// loadOwnedTracker loads the tracker named in the :id path param if it
// belongs to the authenticated account. Writes the error response and
// returns false otherwise.
func loadOwnedTracker(c *gin.Context, db *gorm.DB) (*model.Tracker, bool) {
	accountID := mw.GetAccountID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var m model.Tracker
	if err := db.Where("id = ? AND account_id = ?", id, accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tracker not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return nil, false
	}
	return &m, true
}

func (h *TrackerHandler) ownedTracker(c *gin.Context) (*model.Tracker, bool) {
	return loadOwnedTracker(c, h.db)
}

// rebuild re-derives the tracker's Calculations, stores the snapshot in
// the registry and the shared cache, and notifies SSE subscribers.
func (h *TrackerHandler) rebuild(c *gin.Context, m *model.Tracker) (*tracker.Calculations, error) {
	domain, err := m.Domain()
	if err != nil {
		return nil, err
	}
	domain.Name = RegistryKey(m.AccountID, m.Name)

	calc := tracker.Build(domain)
	calc.Variables = h.variables(m.ID)
	h.registry.Put(calc)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	// Snapshot cache is best-effort; the registry is the source of truth.
	if snapshot, err := json.Marshal(calc); err == nil {
		if err := h.cache.HSet(ctx, calcCacheKey(m.AccountID), m.Name, string(snapshot)); err != nil {
			h.logger.Warn("calc snapshot cache failed",
				zap.String("tracker", m.Name), zap.Error(err))
		}
	}

	payload, _ := json.Marshal(gin.H{"tracker": m.Name, "account_id": m.AccountID})
	if err := h.pubsub.Publish(ctx, sse.TrackerChannel, string(payload)); err != nil {
		h.logger.Warn("tracker event publish failed",
			zap.String("tracker", m.Name), zap.Error(err))
	}
	return calc, nil
}

// variables loads the tracker's route variables as a coerced map.
func (h *TrackerHandler) variables(trackerID int64) map[string]any {
	var vars []model.TrackerVariable
	if err := h.db.Where("tracker_id = ?", trackerID).Find(&vars).Error; err != nil {
		h.logger.Warn("variable load failed", zap.Int64("tracker_id", trackerID), zap.Error(err))
		return nil
	}
	if len(vars) == 0 {
		return nil
	}
	out := make(map[string]any, len(vars))
	for _, v := range vars {
		out[v.Name] = v.Coerced()
	}
	return out
}

func (h *TrackerHandler) audit(c *gin.Context, m *model.Tracker, action string, req, resp interface{}, errMsg string, start time.Time) {
	accountID := mw.GetAccountID(c)
	entry := audit.AuditEntry{
		TraceID:    mw.GetTraceID(c),
		AccountID:  &accountID,
		Action:     action,
		Request:    req,
		Response:   resp,
		Error:      errMsg,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if m != nil {
		entry.TrackerID = &m.ID
		entry.TrackerName = m.Name
	}
	h.auditSvc.Log(entry)
}

// List handles GET /api/trackers.
func (h *TrackerHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	var trackers []model.Tracker
	if err := h.db.Where("account_id = ?", accountID).Find(&trackers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trackers": trackers})
}

type createTrackerRequest struct {
	Name          string        `json:"name" binding:"required,min=1,max=64"`
	Species       string        `json:"species"`
	Generation    int           `json:"generation"`
	StartingLevel int           `json:"starting_level"`
	BaseStats     [][]int       `json:"base_stats"` // one row per evolution when no species given
	EVSegments    map[int][]int `json:"ev_segments"`
}

// Create handles POST /api/trackers.
// Base stats and generation come from the species definition when a
// species is named, otherwise from the request body.
func (h *TrackerHandler) Create(c *gin.Context) {
	start := time.Now()
	accountID := mw.GetAccountID(c)

	var req createTrackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing []model.Tracker
	if err := h.db.Select("id").Where("account_id = ?", accountID).Find(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if h.ranger.MaxTrackers > 0 && len(existing) >= h.ranger.MaxTrackers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max trackers reached"})
		return
	}

	generation := req.Generation
	baseStats, err := parseBaseStatRows(req.BaseStats)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Species != "" {
		if h.species == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "species lookups disabled"})
			return
		}
		sp := h.species.ByName(req.Species)
		if sp == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown species"})
			return
		}
		baseStats = sp.BaseStats
		if generation == 0 {
			generation = sp.Generation
		}
	}
	if len(baseStats) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "species or base_stats required"})
		return
	}
	if generation <= 0 {
		generation = 4
	}
	startingLevel := req.StartingLevel
	if startingLevel <= 0 {
		startingLevel = 5
	}

	segments, err := parseEVSegments(req.EVSegments)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &model.Tracker{
		AccountID:     accountID,
		Name:          req.Name,
		Generation:    generation,
		StartingLevel: startingLevel,
	}
	if err := m.SetBaseStats(baseStats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if segments != nil {
		if err := m.SetEVSegments(segments); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}

	if err := h.db.Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tracker name already taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	if _, err := h.rebuild(c, m); err != nil {
		h.logger.Error("tracker build failed", zap.Int64("tracker_id", m.ID), zap.Error(err))
	}
	h.audit(c, m, "tracker.create", req, gin.H{"id": m.ID}, "", start)
	c.JSON(http.StatusCreated, m)
}

// Get handles GET /api/trackers/:id.
func (h *TrackerHandler) Get(c *gin.Context) {
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /api/trackers/:id.
func (h *TrackerHandler) Delete(c *gin.Context) {
	start := time.Now()
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}

	if err := h.db.Delete(m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.db.Where("tracker_id = ?", m.ID).Delete(&model.TrackerVariable{})
	h.registry.Delete(RegistryKey(m.AccountID, m.Name))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.cache.HDel(ctx, calcCacheKey(m.AccountID), m.Name); err != nil {
		h.logger.Warn("calc snapshot evict failed",
			zap.String("tracker", m.Name), zap.Error(err))
	}

	h.audit(c, m, "tracker.delete", nil, nil, "", start)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type observationRequest struct {
	Evolution int    `json:"evolution"`
	Level     int    `json:"level" binding:"required,min=1,max=100"`
	Stat      string `json:"stat" binding:"required"`
	Value     int    `json:"value" binding:"min=0"`
}

// PutObservation handles PUT /api/trackers/:id/observations.
func (h *TrackerHandler) PutObservation(c *gin.Context) {
	start := time.Now()
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}

	var req observationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := stat.Parse(req.Stat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stat"})
		return
	}

	domain, err := m.Domain()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if req.Evolution < 0 || req.Evolution >= len(domain.BaseStats) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evolution"})
		return
	}
	if req.Level < domain.StartingLevel {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level below starting level"})
		return
	}

	domain.Record(req.Evolution, req.Level, st, req.Value)
	if err := m.SetObservations(domain.Observations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if err := h.db.Save(m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	calc, err := h.rebuild(c, m)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.audit(c, m, "tracker.observe", req, nil, "", start)
	c.JSON(http.StatusOK, calc)
}

type resetObservationsRequest struct {
	FromLevel int `json:"from_level" binding:"required,min=1,max=100"`
}

// ResetObservations handles DELETE /api/trackers/:id/observations.
// It removes every observation at or above the given level.
func (h *TrackerHandler) ResetObservations(c *gin.Context) {
	start := time.Now()
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}

	var req resetObservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain, err := m.Domain()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	domain.ResetFrom(req.FromLevel)
	if err := m.SetObservations(domain.Observations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if err := h.db.Save(m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	calc, err := h.rebuild(c, m)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.audit(c, m, "tracker.reset", req, nil, "", start)
	c.JSON(http.StatusOK, calc)
}

type overridesRequest struct {
	StaticIVs      map[string]int    `json:"static_ivs"`
	StaticNature   *natureOverride   `json:"static_nature"`
	DirectInput    bool              `json:"direct_input"`
	DirectInputIVs []int             `json:"direct_input_ivs"`
	ManualNegative *string           `json:"manual_negative"`
	ManualPositive *string           `json:"manual_positive"`
}

type natureOverride struct {
	Decreased *string `json:"decreased"`
	Increased *string `json:"increased"`
}

// PutOverrides handles PUT /api/trackers/:id/overrides.
// PUT semantics: the whole override state is replaced; omitted fields
// are cleared.
func (h *TrackerHandler) PutOverrides(c *gin.Context) {
	start := time.Now()
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}

	var req overridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staticIVs, err := parseStaticIVs(req.StaticIVs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staticNature, err := parseNatureOverride(req.StaticNature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	manualNeg, err := parseManualPin(req.ManualNegative)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	manualPos, err := parseManualPin(req.ManualPositive)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := m.SetStaticIVs(staticIVs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if err := m.SetStaticNature(staticNature); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	m.DirectInput = req.DirectInput
	if req.DirectInput {
		line, err := parseIVLine(req.DirectInputIVs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := m.SetDirectInputIVs(line); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	} else {
		m.DirectInputIVs = nil
	}
	m.ManualNegative = manualNeg
	m.ManualPositive = manualPos

	if err := h.db.Save(m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	calc, err := h.rebuild(c, m)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.audit(c, m, "tracker.overrides", req, nil, "", start)
	c.JSON(http.StatusOK, calc)
}

type variableRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=64"`
	Type  string  `json:"type" binding:"required,oneof=number boolean string"`
	Value *string `json:"value"`
}

// PutVariable handles PUT /api/trackers/:id/variables (upsert by name).
func (h *TrackerHandler) PutVariable(c *gin.Context) {
	start := time.Now()
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}

	var req variableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var v model.TrackerVariable
	err := h.db.Where("tracker_id = ? AND name = ?", m.ID, req.Name).First(&v).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		v = model.TrackerVariable{TrackerID: m.ID, Name: req.Name, Type: req.Type, Value: req.Value}
		err = h.db.Create(&v).Error
	case err == nil:
		v.Type = req.Type
		v.Value = req.Value
		err = h.db.Save(&v).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if _, err := h.rebuild(c, m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.audit(c, m, "tracker.variable", req, nil, "", start)
	c.JSON(http.StatusOK, gin.H{"name": v.Name, "value": v.Coerced()})
}

// ListVariables handles GET /api/trackers/:id/variables.
func (h *TrackerHandler) ListVariables(c *gin.Context) {
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}
	vars := h.variables(m.ID)
	if vars == nil {
		vars = map[string]any{}
	}
	c.JSON(http.StatusOK, gin.H{"variables": vars})
}

// DeleteVariable handles DELETE /api/trackers/:id/variables/:name.
func (h *TrackerHandler) DeleteVariable(c *gin.Context) {
	start := time.Now()
	m, ok := h.ownedTracker(c)
	if !ok {
		return
	}
	name := c.Param("name")

	result := h.db.Where("tracker_id = ? AND name = ?", m.ID, name).Delete(&model.TrackerVariable{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "variable not found"})
		return
	}

	if _, err := h.rebuild(c, m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.audit(c, m, "tracker.variable.delete", gin.H{"name": name}, nil, "", start)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ---- request parsing helpers ----

func parseBaseStatRows(rows [][]int) ([]stat.Values, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]stat.Values, len(rows))
	for i, row := range rows {
		if len(row) != len(stat.All) {
			return nil, fmt.Errorf("base_stats row %d must have %d entries", i, len(stat.All))
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("base_stats row %d has negative value", i)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

func parseEVSegments(segments map[int][]int) (map[int]stat.Values, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	out := make(map[int]stat.Values, len(segments))
	for level, row := range segments {
		if level < 0 {
			return nil, fmt.Errorf("ev_segments has negative start level %d", level)
		}
		if len(row) != len(stat.All) {
			return nil, fmt.Errorf("ev_segments row at level %d must have %d entries", level, len(stat.All))
		}
		var values stat.Values
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("ev_segments row at level %d has negative value", level)
			}
			values[j] = v
		}
		out[level] = values
	}
	return out, nil
}

func parseStaticIVs(ivs map[string]int) (map[stat.Stat]int, error) {
	if len(ivs) == 0 {
		return nil, nil
	}
	out := make(map[stat.Stat]int, len(ivs))
	for name, iv := range ivs {
		st, err := stat.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("static_ivs: unknown stat %q", name)
		}
		if iv < 0 || iv > stat.MaxIV {
			return nil, fmt.Errorf("static_ivs: %s out of range", name)
		}
		out[st] = iv
	}
	return out, nil
}

func parseNatureOverride(n *natureOverride) (*stat.Nature, error) {
	if n == nil {
		return nil, nil
	}
	dec, err := parseManualPin(n.Decreased)
	if err != nil {
		return nil, err
	}
	inc, err := parseManualPin(n.Increased)
	if err != nil {
		return nil, err
	}
	nature := &stat.Nature{}
	if dec != nil {
		st, _ := stat.Parse(*dec)
		nature.Decreased = stat.StatPtr(st)
	}
	if inc != nil {
		st, _ := stat.Parse(*inc)
		nature.Increased = stat.StatPtr(st)
	}
	return nature, nil
}

// parseManualPin validates a nature role pin. HP is never
// nature-modified, so it cannot be pinned.
func parseManualPin(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	st, err := stat.Parse(*name)
	if err != nil {
		return nil, fmt.Errorf("unknown stat %q", *name)
	}
	if st == stat.HP {
		return nil, errors.New("hp cannot carry a nature modifier")
	}
	canonical := st.String()
	return &canonical, nil
}

func parseIVLine(row []int) (stat.Values, error) {
	var out stat.Values
	if len(row) != len(stat.All) {
		return out, fmt.Errorf("direct_input_ivs must have %d entries", len(stat.All))
	}
	for j, v := range row {
		if v < 0 || v > stat.MaxIV {
			return out, errors.New("direct_input_ivs out of range")
		}
		out[j] = v
	}
	return out, nil
}
