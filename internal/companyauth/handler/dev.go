package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	companydomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/devotp"
)

const devOTPNote = "DEV MODE ONLY"

// DevOTPHandler serves captured OTPs. Only registered when dev OTP is enabled and not production.
type DevOTPHandler struct {
	store devotp.Store
}

// NewDevOTPHandler returns a handler that reads OTPs from the given store.
func NewDevOTPHandler(store devotp.Store) *DevOTPHandler {
	return &DevOTPHandler{store: store}
}

// GetOTP handles GET /dev/company-auth/otp?phone=. Returns 404 if missing or expired.
func (h *DevOTPHandler) GetOTP(c *gin.Context) {
	phone := companydomain.NormalizePhone(c.Query("phone"))
	if strings.TrimSpace(phone) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "phone is required"})
		return
	}
	otp, ok := h.store.Get(c.Request.Context(), phone)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "OTP not found or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"otp": otp, "note": devOTPNote})
}
