package api

import (
	"net/http"

	"storefront-service/internal/auth"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listStoreProducts(c *gin.Context) {
	storeID, ok := h.paramID(c, "storeId")
	if !ok {
		return
	}

	products, err := h.svc.Products.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Products.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.svc.Products.Create(c.Request.Context(), auth.SellerID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.svc.Products.Update(c.Request.Context(), auth.SellerID(c), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Products.Delete(c.Request.Context(), auth.SellerID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getPublicStore(c *gin.Context) {
	st, err := h.svc.Public.GetStoreBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": st})
}

func (h *Handler) listPublicProducts(c *gin.Context) {
	page := util.ParsePageRequest(c.Query("page"), c.Query("limit"))

	result, err := h.svc.Public.ListStoreProducts(c.Request.Context(), c.Param("slug"), c.Query("search"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
