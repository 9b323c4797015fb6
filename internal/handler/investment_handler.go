package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvestmentHandler struct {
	investmentService service.InvestmentService
}

func NewInvestmentHandler(investmentService service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

func (h *InvestmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	investments := router.Group("/api/investments")
	{
		investments.POST("", middleware.RequireRole(model.RoleInvestor, model.RoleAdmin), h.CreateInvestment)
		investments.GET("", middleware.RequireRole(model.RoleAdmin), h.ListInvestments)
		investments.GET("/my", middleware.RequireRole(), h.MyInvestments)
		investments.POST("/dividends", middleware.RequireRole(model.RoleAdmin), h.DistributeDividends)
	}
}

// CreateInvestment starts an investment plan funded from the wallet
// @Summary      Create investment
// @Description  Debits the principal from the caller's wallet and opens a plan targeting three times the principal
// @Tags         investments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvestmentRequest  true  "Principal amount"
// @Success      201      {object}  response.Response{data=service.InvestmentResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/investments [post]
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	investment, err := h.investmentService.CreateInvestment(c.Request.Context(), actor, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, investment))
}

// MyInvestments returns the caller's plans
// @Summary      My investments
// @Tags         investments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.InvestmentResponse}
// @Router       /api/investments/my [get]
func (h *InvestmentHandler) MyInvestments(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	investments, err := h.investmentService.ListMyInvestments(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, investments))
}

// ListInvestments returns all plans, optionally filtered by status
// @Summary      List investments (admin)
// @Tags         investments
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (ACTIVE, COMPLETED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	params := pagination.Parse(c)
	investments, total, err := h.investmentService.ListInvestments(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"investments": investments,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// DistributeDividends runs the daily dividend distribution
// @Summary      Distribute dividends (admin)
// @Description  Splits one percent of the declared profit across active plans, capped at each plan's remaining target
// @Tags         investments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.DeclareProfitRequest  true  "Declared profit"
// @Success      200      {object}  response.Response{data=service.DividendRunResponse}
// @Router       /api/investments/dividends [post]
func (h *InvestmentHandler) DistributeDividends(c *gin.Context) {
	var req service.DeclareProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.investmentService.DistributeDailyDividends(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
