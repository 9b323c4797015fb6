package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	{
		settings.GET("/rates", middleware.RequireRole(), h.ListRates)
		settings.PUT("/rates", middleware.RequireRole(model.RoleAdmin), h.UpdateRates)
		settings.GET("/referral-levels", middleware.RequireRole(), h.ListReferralLevels)
		settings.PUT("/referral-levels", middleware.RequireRole(model.RoleAdmin), h.UpdateReferralLevels)
	}
}

// ListRates returns the piece-rate table
// @Summary      List payout rates
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.PayoutRate}
// @Router       /api/settings/rates [get]
func (h *SettingsHandler) ListRates(c *gin.Context) {
	rates, err := h.settingsService.ListRates(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rates))
}

// UpdateRates upserts piece-rate entries
// @Summary      Update payout rates (admin)
// @Description  Rate changes apply to future payouts only
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateRatesRequest  true  "Rates to upsert"
// @Success      200      {object}  response.Response
// @Router       /api/settings/rates [put]
func (h *SettingsHandler) UpdateRates(c *gin.Context) {
	var req service.UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.settingsService.UpdateRates(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Rates updated"}))
}

// ListReferralLevels returns the cascade level percents
// @Summary      List referral levels
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ReferralLevel}
// @Router       /api/settings/referral-levels [get]
func (h *SettingsHandler) ListReferralLevels(c *gin.Context) {
	levels, err := h.settingsService.ListReferralLevels(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, levels))
}

// UpdateReferralLevels upserts cascade level percents
// @Summary      Update referral levels (admin)
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateReferralLevelsRequest  true  "Levels to upsert"
// @Success      200      {object}  response.Response
// @Router       /api/settings/referral-levels [put]
func (h *SettingsHandler) UpdateReferralLevels(c *gin.Context) {
	var req service.UpdateReferralLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.settingsService.UpdateReferralLevels(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Referral levels updated"}))
}
