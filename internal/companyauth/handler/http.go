// Package handler serves the /company-auth HTTP endpoints over the company auth service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	companydomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/company/domain"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/companyauth/service"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/logging"
)

// Client-facing messages.
const (
	MsgOTPSent           = "Tasdiqlash kodi muvaffaqqiyatli yuborildi"
	MsgNoPhone           = "Kompaniyaga telefon raqam biriktirilmagan"
	MsgOTPNotSent        = "Tasdiqlash kodini yuborib bo'lmadi"
	MsgTooManyRequests   = "Juda ko'p urinish. Birozdan so'ng qayta urinib ko'ring"
	MsgInvalidCredential = "Telefon raqami yoki OTP kodi noto'g'ri."
	MsgExpired           = "OTP kodi muddati tugagan."
	MsgNotFound          = "Not found."
	MsgForbidden         = "You do not have permission to perform this action."
	MsgInternal          = "internal server error"
)

// AuthService is the subset of the company auth service used by the handler.
type AuthService interface {
	IssueOTP(ctx context.Context, stir string) (*service.IssueResult, error)
	VerifyOTP(ctx context.Context, phone, code string) (*service.VerifyResult, error)
	Requests(ctx context.Context, companyID int64) ([]*companydomain.Request, error)
}

// Handler serves send_otp, verify_otp, get_me and requests.
type Handler struct {
	svc AuthService
	log *slog.Logger
}

// NewHandler returns a Handler over svc. log may be nil.
func NewHandler(svc AuthService, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: logging.OrDiscard(log)}
}

type sendOTPRequest struct {
	Stir string `json:"stir" binding:"required"`
}

// otpCode accepts the code as a JSON integer or a string of digits and keeps its canonical decimal
// form, so "0123456" and 123456 name the same code.
type otpCode string

func (o *otpCode) UnmarshalJSON(b []byte) error {
	var digits string
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		digits = n.String()
	} else if err := json.Unmarshal(b, &digits); err != nil {
		return errInvalidOTP
	}
	v, err := strconv.ParseUint(strings.TrimSpace(digits), 10, 32)
	if err != nil {
		return errInvalidOTP
	}
	*o = otpCode(strconv.FormatUint(v, 10))
	return nil
}

var errInvalidOTP = errors.New("otp must be an integer")

type verifyOTPRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required"`
	OTP         otpCode `json:"otp" binding:"required"`
}

type verifyOTPResponse struct {
	Token   string                `json:"token"`
	Company companydomain.Summary `json:"company"`
}

// SendOTP handles POST /company-auth/send_otp.
func (h *Handler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "stir is required"})
		return
	}
	res, err := h.svc.IssueOTP(c.Request.Context(), req.Stir)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": MsgOTPSent, "phone": res.Phone})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": MsgNotFound})
	case errors.Is(err, service.ErrMissingContact):
		c.JSON(http.StatusBadRequest, gin.H{"message": MsgNoPhone})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": MsgTooManyRequests})
	case errors.Is(err, service.ErrNotifyFailed):
		body := gin.H{"message": MsgOTPNotSent}
		if res != nil {
			body["phone"] = res.Phone
		}
		c.JSON(http.StatusBadGateway, body)
	default:
		h.internal(c, err)
	}
}

// VerifyOTP handles POST /company-auth/verify_otp.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "phone_number and otp are required"})
		return
	}
	res, err := h.svc.VerifyOTP(c.Request.Context(), req.PhoneNumber, string(req.OTP))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, verifyOTPResponse{Token: res.Token, Company: res.Company.Summary()})
	case errors.Is(err, service.ErrInvalidCredential):
		c.JSON(http.StatusBadRequest, gin.H{"detail": MsgInvalidCredential})
	case errors.Is(err, service.ErrExpired):
		c.JSON(http.StatusBadRequest, gin.H{"detail": MsgExpired})
	default:
		h.internal(c, err)
	}
}

// GetMe handles GET /company-auth/get_me.
func (h *Handler) GetMe(c *gin.Context) {
	company, ok := identity.CompanyFrom(c.Request.Context())
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"detail": MsgForbidden})
		return
	}
	c.JSON(http.StatusOK, company.Summary())
}

// Requests handles GET /company-auth/requests.
func (h *Handler) Requests(c *gin.Context) {
	company, ok := identity.CompanyFrom(c.Request.Context())
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"detail": MsgForbidden})
		return
	}
	list, err := h.svc.Requests(c.Request.Context(), company.ID)
	if err != nil {
		h.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) internal(c *gin.Context, err error) {
	h.log.ErrorContext(c.Request.Context(), "company auth request failed",
		"path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": MsgInternal})
}
