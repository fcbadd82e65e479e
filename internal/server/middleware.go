package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/audit"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/platform/authz"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
)

// MsgForbidden is the body detail of a request rejected by an authorization predicate.
const MsgForbidden = "You do not have permission to perform this action."

// EventHTTPRequest is emitted once per served HTTP request by RequestEvents.
const EventHTTPRequest = "http_request"

// ResolveIdentity binds the identities resolved from the Authorization header to the request context.
// It never rejects a request.
func ResolveIdentity(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := resolver.Bind(c.Request.Context(), c.GetHeader("Authorization"))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Require aborts with 403 unless every predicate allows the request.
func Require(preds ...authz.Predicate) gin.HandlerFunc {
	allowed := authz.All(preds...)
	return func(c *gin.Context) {
		if !allowed(authz.FromContext(c.Request.Context(), c.Request.Method)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": MsgForbidden})
			return
		}
		c.Next()
	}
}

// ClientIP records the caller IP on the request context for audit logging.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(audit.WithClientIP(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}

// Tracing starts a server span per request, continuing any incoming W3C trace context.
func Tracing(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer("staffflow.http")
	propagator := propagation.TraceContext{}
	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode string `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// RequestEvents emits an http_request event after each request. Best-effort; a nil emitter disables it.
// skipPaths holds routes (e.g. /healthz) that are not reported.
func RequestEvents(emitter telemetry.EventEmitter, skipPaths map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if emitter == nil || skipPaths[c.FullPath()] {
			return
		}
		meta, _ := json.Marshal(httpRequestMetadata{
			Method:     c.Request.Method,
			Route:      c.FullPath(),
			StatusCode: strconv.Itoa(c.Writer.Status()),
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   c.ClientIP(),
		})
		var companyID int64
		if company, ok := identity.CompanyFrom(c.Request.Context()); ok {
			companyID = company.ID
		}
		event := telemetry.NewEvent(companyID, EventHTTPRequest, nil)
		event.Source = "http_middleware"
		event.Metadata = meta
		telemetry.EmitAsync(emitter, c.Request.Context(), event)
	}
}
