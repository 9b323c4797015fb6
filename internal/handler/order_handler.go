package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/bookings")
	{
		bookings.POST("", middleware.RequireRole(model.RoleShowroom, model.RoleBookingMaster, model.RoleAdmin), h.BookOrders)
	}

	orders := router.Group("/api/orders")
	{
		orders.GET("", middleware.RequireRole(), h.ListOrders)
		orders.GET("/:billNumber", middleware.RequireRole(), h.GetOrder)

		// Role capability on status transitions is enforced by the
		// workflow table in the service, not by the route guard.
		orders.PUT("/:billNumber/status", middleware.RequireRole(), h.UpdateStatus)
		orders.PUT("/:billNumber/force-status", middleware.RequireRole(model.RoleAdmin), h.ForceStatus)
		orders.POST("/:billNumber/logs", middleware.RequireRole(), h.AddOrderLog)
		orders.PUT("/:billNumber/priority", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleShowroom), h.UpdatePriority)
		orders.PUT("/:billNumber/notes", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleShowroom, model.RoleBookingMaster), h.UpdateNotes)

		orders.POST("/:billNumber/settle", middleware.RequireRole(model.RoleShowroom, model.RoleBookingMaster, model.RoleAdmin), h.SettlePayment)
		orders.POST("/:billNumber/handover", middleware.RequireRole(model.RoleDelivery, model.RoleAdmin), h.VerifyCashHandover)

		orders.DELETE("/:billNumber", middleware.RequireRole(model.RoleAdmin), h.DeleteOrder)
	}

	materials := router.Group("/api/materials")
	{
		materials.POST("/actions", middleware.RequireRole(model.RoleMaterial, model.RoleAdmin), h.RecordMaterialAction)
	}
}

// BookOrders books one or more garment items for a customer
// @Summary      Book orders
// @Description  Books catalogue items for a customer; composite items split into one order per physical garment
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BookingRequest  true  "Booking Payload"
// @Success      201      {object}  response.Response{data=[]service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bookings [post]
func (h *OrderHandler) BookOrders(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	orders, err := h.orderService.BookOrders(c.Request.Context(), actor, req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, orders))
}

// ListOrders returns a filtered, paginated order list
// @Summary      List orders
// @Description  Retrieves orders filtered by status, garment type, customer, or assigned worker
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by production status"
// @Param        garmentType  query     string  false  "Filter by garment type"
// @Param        customerId   query     string  false  "Filter by customer ID"
// @Param        workerId     query     string  false  "Filter by assigned worker ID"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.OrderListFilter{
		Status:      c.Query("status"),
		GarmentType: c.Query("garmentType"),
		Page:        params.Page,
		Limit:       params.Limit,
	}
	if raw := c.Query("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid customerId"))
			return
		}
		filter.CustomerID = &id
	}
	if raw := c.Query("workerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid workerId"))
			return
		}
		filter.AssignedWorkerID = &id
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// GetOrder returns one order with its full history
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        billNumber  path      string  true  "Bill number"
// @Success      200         {object}  response.Response{data=service.OrderResponse}
// @Failure      404         {object}  response.Response
// @Router       /api/orders/{billNumber} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("billNumber"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateStatus advances an order to its next production stage
// @Summary      Update order status
// @Description  Moves the order one stage forward; pays the acting worker the piece rate for the completed stage
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        billNumber  path      string                        true  "Bill number"
// @Param        payload     body      service.UpdateStatusRequest  true  "Target status"
// @Success      200         {object}  response.Response{data=service.OrderResponse}
// @Failure      403         {object}  response.Response
// @Failure      409         {object}  response.Response
// @Router       /api/orders/{billNumber}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), actor, c.Param("billNumber"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ForceStatus sets an order status directly, bypassing the workflow
// @Summary      Force order status (admin)
// @Description  Admin override that sets any status; the history entry is flagged as forced
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        billNumber  path      string                       true  "Bill number"
// @Param        payload     body      service.ForceStatusRequest  true  "Target status"
// @Success      200         {object}  response.Response{data=service.OrderResponse}
// @Router       /api/orders/{billNumber}/force-status [put]
func (h *OrderHandler) ForceStatus(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.ForceStatus(c.Request.Context(), actor, c.Param("billNumber"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// AddOrderLog appends a free-form note to the order history
// @Summary      Add order log
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        billNumber  path      string                       true  "Bill number"
// @Param        payload     body      service.AddOrderLogRequest  true  "Log entry"
// @Success      201         {object}  response.Response
// @Router       /api/orders/{billNumber}/logs [post]
func (h *OrderHandler) AddOrderLog(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.AddOrderLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.orderService.AddOrderLog(c.Request.Context(), actor, c.Param("billNumber"), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Log added"}))
}

// UpdatePriority changes an order's priority
// @Summary      Update order priority
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        billNumber  path      string                          true  "Bill number"
// @Param        payload     body      service.UpdatePriorityRequest  true  "Priority (High, Medium, Low)"
// @Success      200         {object}  response.Response
// @Router       /api/orders/{billNumber}/priority [put]
func (h *OrderHandler) UpdatePriority(c *gin.Context) {
	var req service.UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.orderService.UpdatePriority(c.Request.Context(), c.Param("billNumber"), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Priority updated"}))
}

// UpdateNotes replaces an order's notes
// @Summary      Update order notes
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        billNumber  path      string                       true  "Bill number"
// @Param        payload     body      service.UpdateNotesRequest  true  "Notes"
// @Success      200         {object}  response.Response
// @Router       /api/orders/{billNumber}/notes [put]
func (h *OrderHandler) UpdateNotes(c *gin.Context) {
	var req service.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.orderService.UpdateNotes(c.Request.Context(), c.Param("billNumber"), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Notes updated"}))
}

// SettlePayment records a customer payment against an order
// @Summary      Settle order payment
// @Description  Records a payment towards the pending amount and credits the house account
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        billNumber  path      string                          true  "Bill number"
// @Param        payload     body      service.SettlePaymentRequest  true  "Payment amount"
// @Success      200         {object}  response.Response{data=service.OrderResponse}
// @Failure      400         {object}  response.Response
// @Router       /api/orders/{billNumber}/settle [post]
func (h *OrderHandler) SettlePayment(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.SettlePayment(c.Request.Context(), actor, c.Param("billNumber"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// VerifyCashHandover completes a delivery with a PIN-verified cash handover
// @Summary      Verify cash handover
// @Description  Verifies the handover PIN, settles remaining dues, marks the order delivered, and pays the delivery bonus
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        billNumber  path      string                        true  "Bill number"
// @Param        payload     body      service.CashHandoverRequest  true  "Handover PIN"
// @Success      200         {object}  response.Response{data=service.OrderResponse}
// @Failure      403         {object}  response.Response
// @Router       /api/orders/{billNumber}/handover [post]
func (h *OrderHandler) VerifyCashHandover(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CashHandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.VerifyCashHandover(c.Request.Context(), actor, c.Param("billNumber"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// RecordMaterialAction records a material stock action and pays the incentive
// @Summary      Record material action
// @Tags         materials
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.MaterialActionRequest  true  "Material action"
// @Success      201      {object}  response.Response
// @Router       /api/materials/actions [post]
func (h *OrderHandler) RecordMaterialAction(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.MaterialActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.orderService.RecordMaterialAction(c.Request.Context(), actor, req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Material action recorded"}))
}

// DeleteOrder removes an order and its history
// @Summary      Delete order (admin)
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        billNumber  path      string  true  "Bill number"
// @Success      200         {object}  response.Response
// @Router       /api/orders/{billNumber} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("billNumber")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Order deleted"}))
}
