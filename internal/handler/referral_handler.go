package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referralService service.ReferralService
}

func NewReferralHandler(referralService service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

func (h *ReferralHandler) RegisterRoutes(router *gin.RouterGroup) {
	referrals := router.Group("/api/referrals", middleware.RequireRole())
	{
		referrals.GET("/network", h.NetworkStats)
		referrals.GET("/team", h.Team)
		referrals.GET("/income", h.IncomeLog)
	}
}

// NetworkStats returns the caller's referral network summary
// @Summary      Referral network stats
// @Description  Per-level member counts and commission earned across the six cascade levels
// @Tags         referrals
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.NetworkStatsResponse}
// @Router       /api/referrals/network [get]
func (h *ReferralHandler) NetworkStats(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	stats, err := h.referralService.NetworkStats(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// Team returns every downline member within the cascade depth
// @Summary      Referral team
// @Tags         referrals
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.TeamMemberResponse}
// @Router       /api/referrals/team [get]
func (h *ReferralHandler) Team(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	team, err := h.referralService.Team(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, team))
}

// IncomeLog returns the caller's referral commission history
// @Summary      Referral income log
// @Tags         referrals
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/referrals/income [get]
func (h *ReferralHandler) IncomeLog(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	params := pagination.Parse(c)
	logs, total, err := h.referralService.IncomeLog(c.Request.Context(), actor.ID, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"income": logs,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}
