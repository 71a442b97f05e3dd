package api

import (
	"net/http"

	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

// placeOrder handles order creation
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// listOrders serves the store, status and customer order listings
func (h *Handler) listOrders(c *gin.Context) {
	storeID, ok := h.paramID(c, "storeId")
	if !ok {
		return
	}

	q := service.OrderQuery{StoreID: storeID, Status: c.Param("status")}
	if c.Param("customerId") != "" {
		if q.CustomerID, ok = h.paramID(c, "customerId"); !ok {
			return
		}
	}

	page := util.ParsePageRequest(c.Query("page"), c.Query("limit"))
	result, err := h.svc.Orders.ListOrders(c.Request.Context(), q, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.svc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listOrderEvents(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	events, err := h.svc.Orders.ListOrderEvents(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
