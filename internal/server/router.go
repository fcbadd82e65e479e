// Package server wires the HTTP router and the gRPC server.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/companyauth/handler"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/health"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/logging"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/devotp"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/platform/authz"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
)

// Deps holds the dependencies of the HTTP router.
type Deps struct {
	// Auth is the company auth service behind /company-auth.
	Auth handler.AuthService
	// Resolver binds company and staff identities on every request. Required.
	Resolver *identity.Resolver
	// Health serves /healthz. If nil, /healthz always reports ok.
	Health *health.Checker
	// DevOTPStore enables GET /dev/company-auth/otp. Set only when dev OTP mode is on and not production.
	DevOTPStore devotp.Store
	// Events receives one http_request event per request. nil disables it.
	Events telemetry.EventEmitter
	// ServiceName labels request spans.
	ServiceName string
	Logger      *slog.Logger
}

// NewRouter returns the gin engine serving the HTTP API.
//
// Routes:
//   - POST /company-auth/send_otp    public
//   - POST /company-auth/verify_otp  public
//   - GET  /company-auth/get_me      CompanyAuthenticated
//   - GET  /company-auth/requests    CompanyAuthenticated
//   - GET  /healthz                  public
//   - GET  /dev/company-auth/otp     public, dev OTP mode only
func NewRouter(deps Deps) *gin.Engine {
	log := logging.OrDiscard(deps.Logger)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		Tracing(deps.ServiceName),
		RequestLogger(log),
		RequestEvents(deps.Events, map[string]bool{"/healthz": true}),
		ClientIP(),
		ResolveIdentity(deps.Resolver),
	)

	if deps.Health != nil {
		r.GET("/healthz", deps.Health.Handle)
	} else {
		r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	}

	h := handler.NewHandler(deps.Auth, log)
	g := r.Group("/company-auth")
	g.POST("/send_otp", h.SendOTP)
	g.POST("/verify_otp", h.VerifyOTP)
	g.GET("/get_me", Require(authz.CompanyAuthenticated), h.GetMe)
	g.GET("/requests", Require(authz.CompanyAuthenticated), h.Requests)

	if deps.DevOTPStore != nil {
		r.GET("/dev/company-auth/otp", handler.NewDevOTPHandler(deps.DevOTPStore).GetOTP)
	}
	return r
}
