package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type settingsHandler struct {
	settingsService portssvc.SettingsSvcFacade
}

func registerSettingsRoutes(rg *gin.RouterGroup, settingsService portssvc.SettingsSvcFacade) {
	h := &settingsHandler{settingsService: settingsService}

	settings := rg.Group("/settings")
	{
		settings.GET("", h.listSettings)
		settings.POST("/reload", h.reload)
		settings.GET("/:key", h.getSetting)
		settings.PUT("/:key", h.setSetting)
		settings.DELETE("/:key/cache", h.invalidate)
	}
}

// listSettings godoc
// @Summary List stored settings
// @Tags settings
// @Produce  json
// @Success 200 {object} dto.ListSettingsResponse
// @Security BearerAuth
// @Router /settings [get]
func (h *settingsHandler) listSettings(c *gin.Context) {
	settings, err := h.settingsService.ListSettings(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to list settings")
		return
	}
	c.JSON(http.StatusOK, dto.ListSettingsResponse{Settings: settings})
}

// getSetting godoc
// @Summary Get a setting
// @Tags settings
// @Produce  json
// @Param   key path string true "Setting key"
// @Success 200 {object} dto.SettingResponse
// @Failure 404 {object} map[string]string "Setting not found"
// @Security BearerAuth
// @Router /settings/{key} [get]
func (h *settingsHandler) getSetting(c *gin.Context) {
	key := c.Param("key")
	value, found, err := h.settingsService.Get(c.Request.Context(), key)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve setting")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "setting not found: " + key})
		return
	}
	c.JSON(http.StatusOK, dto.SettingResponse{Key: key, Value: value})
}

// setSetting godoc
// @Summary Store a setting
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   key path string true "Setting key"
// @Param   setting body dto.SetSettingRequest true "Value"
// @Success 200 {object} dto.SettingResponse
// @Failure 400 {object} map[string]string "Invalid value"
// @Security BearerAuth
// @Router /settings/{key} [put]
func (h *settingsHandler) setSetting(c *gin.Context) {
	var req dto.SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "SetSetting")
		return
	}
	actorID, ok := requireActor(c)
	if !ok {
		return
	}
	key := c.Param("key")
	if err := h.settingsService.Set(c.Request.Context(), key, req.Value, actorID); err != nil {
		respondWithError(c, err, "Failed to store setting")
		return
	}
	c.JSON(http.StatusOK, dto.SettingResponse{Key: key, Value: req.Value})
}

// invalidate godoc
// @Summary Drop one setting from the cache
// @Tags settings
// @Param   key path string true "Setting key"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /settings/{key}/cache [delete]
func (h *settingsHandler) invalidate(c *gin.Context) {
	if err := h.settingsService.Invalidate(c.Request.Context(), c.Param("key")); err != nil {
		respondWithError(c, err, "Failed to invalidate setting")
		return
	}
	c.Status(http.StatusNoContent)
}

// reload godoc
// @Summary Flush the settings cache
// @Tags settings
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /settings/reload [post]
func (h *settingsHandler) reload(c *gin.Context) {
	if err := h.settingsService.Reload(c.Request.Context()); err != nil {
		respondWithError(c, err, "Failed to reload settings")
		return
	}
	c.Status(http.StatusNoContent)
}
