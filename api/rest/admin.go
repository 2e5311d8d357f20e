package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/FortunateNaruto/pokemon-ranger/game/tracker"
	"github.com/FortunateNaruto/pokemon-ranger/model"
	"github.com/FortunateNaruto/pokemon-ranger/resource"
	"github.com/FortunateNaruto/pokemon-ranger/scheduler"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db       *gorm.DB
	registry *tracker.Registry
	sched    *scheduler.Scheduler
	species  *resource.SpeciesLoader
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	db *gorm.DB,
	registry *tracker.Registry,
	sched *scheduler.Scheduler,
	species *resource.SpeciesLoader,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{db: db, registry: registry, sched: sched, species: species, logger: logger}
}

// Metrics returns server health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	var accounts, trackers int64
	h.db.Model(&model.Account{}).Count(&accounts)
	h.db.Model(&model.Tracker{}).Count(&trackers)

	speciesCount := 0
	if h.species != nil {
		speciesCount = h.species.Count()
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts":        accounts,
		"trackers":        trackers,
		"registry":        h.registry.Len(),
		"species":         speciesCount,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// RecalcAll rebuilds every tracker's calculations and swaps the registry.
// POST /api/admin/recalc
func (h *AdminHandler) RecalcAll(c *gin.Context) {
	count, err := RebuildAll(h.db, h.registry)
	if err != nil {
		h.logger.Error("admin recalc failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rebuild failed"})
		return
	}
	h.logger.Info("admin recalc completed", zap.Int("trackers", count))
	c.JSON(http.StatusOK, gin.H{"rebuilt": count})
}

// ListAccounts returns registered accounts.
// GET /api/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	var accounts []model.Account
	if err := h.db.Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

// BanAccount bans or unbans an account.
// POST /api/admin/accounts/:id/ban
func (h *AdminHandler) BanAccount(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Ban bool `json:"ban"`
	}
	_ = c.ShouldBindJSON(&req)

	status := 1
	if req.Ban {
		status = 0
	}
	result := h.db.Model(&model.Account{}).Where("id = ?", accountID).Update("status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	h.logger.Info("account status changed",
		zap.Int64("account_id", accountID), zap.Int("status", status))
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// ListSchedulerTasks returns names of all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
