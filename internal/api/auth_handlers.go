package api

import (
	"net/http"

	"storefront-service/internal/auth"

	"github.com/gin-gonic/gin"
)

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

func (h *Handler) sendOTP(c *gin.Context) {
	var req sendOTPRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Auth.SendOTP(c.Request.Context(), req.Phone)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// verifyOTP signs the seller in by setting the session cookie
func (h *Handler) verifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !h.bindJSON(c, &req) {
		return
	}

	token, err := h.svc.Auth.VerifyOTP(c.Request.Context(), req.Phone, req.OTP)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.cfg.Cookies.Set(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

func (h *Handler) me(c *gin.Context) {
	profile, err := h.svc.Auth.Me(c.Request.Context(), auth.SellerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) logout(c *gin.Context) {
	h.cfg.Cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
