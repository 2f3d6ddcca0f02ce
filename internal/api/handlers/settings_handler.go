// backend-go/internal/api/handlers/settings_handler.go
package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/sellerdash/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ColumnSettings interface {
	GetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string) ([]domain.Column, error)
	SaveColumns(ctx context.Context, tenant uuid.UUID, workspaceID string, cols []domain.Column) ([]domain.Column, error)
	ResetColumns(ctx context.Context, tenant uuid.UUID, workspaceID string) ([]domain.Column, error)
}

type SettingsHandler struct {
	settings ColumnSettings
}

func NewSettingsHandler(settings ColumnSettings) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) GetColumns(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	ws := c.Query("workspace_id")
	cols, err := h.settings.GetColumns(c.Request.Context(), tenant, ws)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.ColumnPreferences{WorkspaceID: ws, Columns: cols})
}

func (h *SettingsHandler) PutColumns(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	var req domain.ColumnPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid column settings"})
		return
	}
	ws := c.DefaultQuery("workspace_id", req.WorkspaceID)

	cols, err := h.settings.SaveColumns(c.Request.Context(), tenant, ws, req.Columns)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.ColumnPreferences{WorkspaceID: ws, Columns: cols})
}

// DeleteColumns resets the layout to the defaults.
func (h *SettingsHandler) DeleteColumns(c *gin.Context) {
	tenant, ok := tenantFrom(c)
	if !ok {
		return
	}
	ws := c.Query("workspace_id")
	cols, err := h.settings.ResetColumns(c.Request.Context(), tenant, ws)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.ColumnPreferences{WorkspaceID: ws, Columns: cols})
}
