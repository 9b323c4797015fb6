package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WalletHandler struct {
	walletService service.WalletService
}

func NewWalletHandler(walletService service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup) {
	wallet := router.Group("/api/wallet")
	{
		wallet.GET("", middleware.RequireRole(), h.MyBalance)
		wallet.GET("/transactions", middleware.RequireRole(), h.MyTransactions)
		wallet.POST("/withdraw", middleware.RequireRole(), h.Withdraw)

		wallet.GET("/users/:userId", middleware.RequireRole(model.RoleAdmin), h.BalanceOf)
		wallet.GET("/users/:userId/transactions", middleware.RequireRole(model.RoleAdmin), h.TransactionsOf)
		wallet.POST("/transfer", middleware.RequireRole(model.RoleAdmin), h.Transfer)
		wallet.POST("/add-funds", middleware.RequireRole(model.RoleAdmin), h.AddFunds)
	}
}

// MyBalance returns the caller's ledger balance
// @Summary      My wallet balance
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.WalletResponse}
// @Router       /api/wallet [get]
func (h *WalletHandler) MyBalance(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	balance, err := h.walletService.Balance(c.Request.Context(), actor.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balance))
}

// MyTransactions returns the caller's ledger entries
// @Summary      My wallet transactions
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/wallet/transactions [get]
func (h *WalletHandler) MyTransactions(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	params := pagination.Parse(c)
	txns, total, err := h.walletService.ListTransactions(c.Request.Context(), actor.ID, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// Withdraw posts a balance-checked debit against the caller's wallet
// @Summary      Withdraw funds
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.WithdrawRequest  true  "Withdrawal amount"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/wallet/withdraw [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.walletService.WithdrawFunds(c.Request.Context(), actor.ID, req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Withdrawal recorded"}))
}

// BalanceOf returns any account's balance
// @Summary      Wallet balance of a user (admin)
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response{data=service.WalletResponse}
// @Router       /api/wallet/users/{userId} [get]
func (h *WalletHandler) BalanceOf(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user ID"))
		return
	}
	balance, err := h.walletService.Balance(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balance))
}

// TransactionsOf returns any account's ledger entries
// @Summary      Wallet transactions of a user (admin)
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      string  true   "User ID"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/wallet/users/{userId}/transactions [get]
func (h *WalletHandler) TransactionsOf(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user ID"))
		return
	}
	params := pagination.Parse(c)
	txns, total, err := h.walletService.ListTransactions(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// Transfer moves funds between two accounts
// @Summary      Transfer funds (admin)
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TransferRequest  true  "Transfer details"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/wallet/transfer [post]
func (h *WalletHandler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.walletService.TransferFunds(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Transfer completed"}))
}

// AddFunds credits an account from outside the ledger
// @Summary      Add funds (admin)
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AddFundsRequest  true  "Credit details"
// @Success      200      {object}  response.Response
// @Router       /api/wallet/add-funds [post]
func (h *WalletHandler) AddFunds(c *gin.Context) {
	var req service.AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.walletService.AddFunds(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Funds added"}))
}
