package api

import (
	"net/http"

	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) upsertCustomer(c *gin.Context) {
	var req service.UpsertCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.svc.Customers.Upsert(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) listCustomers(c *gin.Context) {
	storeID, ok := h.paramID(c, "storeId")
	if !ok {
		return
	}

	customers, err := h.svc.Customers.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}
