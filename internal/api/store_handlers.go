package api

import (
	"net/http"

	"storefront-service/internal/auth"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createStore(c *gin.Context) {
	var req service.CreateStoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	st, err := h.svc.Stores.Create(c.Request.Context(), auth.SellerID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) listMyStores(c *gin.Context) {
	stores, err := h.svc.Stores.ListMine(c.Request.Context(), auth.SellerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (h *Handler) getStore(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	st, err := h.svc.Stores.Get(c.Request.Context(), auth.SellerID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) updateStore(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateStoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	st, err := h.svc.Stores.Update(c.Request.Context(), auth.SellerID(c), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) deleteStore(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Stores.Delete(c.Request.Context(), auth.SellerID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
