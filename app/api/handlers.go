package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func NewHandler(items ItemStats, budget BudgetStatus, sourceCount int, version string) *Handler {
	return &Handler{
		items:       items,
		budget:      budget,
		sourceCount: sourceCount,
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"sources":   h.sourceCount,
	}

	status, err := h.budget.Status()
	if err != nil {
		slog.Error("Failed to read quota status", "error", err)
	}
	health["quota_status"] = string(status)

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, alerted, err := h.items.Stats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := map[string]interface{}{
		"items_total":   total,
		"items_alerted": alerted,
		"sources":       h.sourceCount,
	}

	if remaining, err := h.budget.Remaining(); err == nil {
		stats["quota_remaining"] = remaining
	}
	if status, err := h.budget.Status(); err == nil {
		stats["quota_status"] = string(status)
	}

	c.JSON(http.StatusOK, stats)
}
