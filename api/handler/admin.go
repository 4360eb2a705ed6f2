package handler

import (
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/jvre/memberd/database"
)

// ListSettings handles GET /api/admin/settings.
func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.db.GetAllSettings(c.Request.Context())
	if err != nil {
		log.Error("failed to list settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Name] = s.Value
	}
	c.JSON(http.StatusOK, gin.H{"settings": values})
}

type updateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// UpdateSettings handles PUT /api/admin/settings. Only known setting names
// are accepted.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	known := database.KnownSettingNames()
	for name := range req.Settings {
		if !lo.Contains(known, name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown setting: " + name})
			return
		}
	}

	names := lo.Keys(req.Settings)
	sort.Strings(names)
	for _, name := range names {
		if err := h.db.SetSetting(c.Request.Context(), name, req.Settings[name]); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"updated": len(names)})
}

type purgeRequest struct {
	OlderThanDays int `json:"older_than_days" binding:"omitempty,min=1"`
}

// PurgeUnconfirmed handles POST /api/admin/purge.
func (h *Handler) PurgeUnconfirmed(c *gin.Context) {
	req := purgeRequest{OlderThanDays: 7}
	// An empty body means defaults.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.OlderThanDays <= 0 {
		req.OlderThanDays = 7
	}

	deleted, err := h.svc.PurgeUnconfirmed(c.Request.Context(), time.Duration(req.OlderThanDays)*24*time.Hour)
	if err != nil {
		log.Error("failed to purge unconfirmed accounts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
