package server

import (
	"log/slog"
	"maps"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/companyauth/handler"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/health"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/platform/authz"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/server/interceptors"
)

// GRPCDeps holds the dependencies of the gRPC server.
type GRPCDeps struct {
	// Resolver binds identities from "authorization" metadata. Required.
	Resolver *identity.Resolver
	// Health backs grpc.health.v1.Health. If nil, health checks only report that the process is up.
	Health *health.Checker
	// CompanyAuth backs the CompanyAuth service. If nil, the service is not registered.
	CompanyAuth handler.AuthService
	// Logger is used by the registered services. May be nil.
	Logger *slog.Logger
	// Requirements maps full method names to the predicate that must allow the call. Only listed
	// methods resolve identities. The CompanyAuth methods are added when CompanyAuth is set.
	Requirements map[string]authz.Predicate
}

// NewGRPCServer returns a gRPC server with OTel instrumentation, the identity interceptor, the
// health service and, when deps.CompanyAuth is set, the CompanyAuth service registered.
func NewGRPCServer(deps GRPCDeps) *grpc.Server {
	requirements := make(map[string]authz.Predicate)
	if deps.CompanyAuth != nil {
		maps.Copy(requirements, handler.GRPCRequirements())
	}
	maps.Copy(requirements, deps.Requirements)

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.ClientIPUnary(),
			interceptors.IdentityUnary(deps.Resolver, requirements),
		),
	)
	RegisterServices(s, deps)
	return s
}

// RegisterServices registers the gRPC services with s.
func RegisterServices(s grpc.ServiceRegistrar, deps GRPCDeps) {
	checker := deps.Health
	if checker == nil {
		checker = health.NewChecker(nil, nil)
	}
	healthpb.RegisterHealthServer(s, health.NewGRPCServer(checker))
	if deps.CompanyAuth != nil {
		handler.RegisterCompanyAuthServer(s, handler.NewGRPCHandler(deps.CompanyAuth, deps.Logger))
	}
}
