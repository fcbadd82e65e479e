package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/logging"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/platform/authz"
)

// gRPC names of the company auth service. Responses mirror the JSON bodies of the HTTP routes.
const (
	GRPCServiceName        = "staffflow.companyauth.v1.CompanyAuth"
	GRPCMethodGetMe        = "/" + GRPCServiceName + "/GetMe"
	GRPCMethodListRequests = "/" + GRPCServiceName + "/ListRequests"
)

// CompanyAuthServer is the gRPC surface for holders of a company token.
type CompanyAuthServer interface {
	GetMe(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	ListRequests(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

// GRPCRequirements returns the authorization predicate of every CompanyAuth method.
func GRPCRequirements() map[string]authz.Predicate {
	return map[string]authz.Predicate{
		GRPCMethodGetMe:        authz.CompanyAuthenticated,
		GRPCMethodListRequests: authz.CompanyAuthenticated,
	}
}

// GRPCHandler implements CompanyAuthServer over the identity bound by the identity interceptor.
type GRPCHandler struct {
	svc AuthService
	log *slog.Logger
}

// NewGRPCHandler returns a GRPCHandler over svc. log may be nil.
func NewGRPCHandler(svc AuthService, log *slog.Logger) *GRPCHandler {
	return &GRPCHandler{svc: svc, log: logging.OrDiscard(log)}
}

// GetMe returns the summary of the calling company.
func (h *GRPCHandler) GetMe(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	company, ok := identity.CompanyFrom(ctx)
	if !ok {
		return nil, status.Error(codes.PermissionDenied, MsgForbidden)
	}
	return h.toStruct(ctx, company.Summary())
}

// ListRequests returns {"requests": [...]} for the calling company.
func (h *GRPCHandler) ListRequests(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	company, ok := identity.CompanyFrom(ctx)
	if !ok {
		return nil, status.Error(codes.PermissionDenied, MsgForbidden)
	}
	list, err := h.svc.Requests(ctx, company.ID)
	if err != nil {
		h.log.ErrorContext(ctx, "list company requests failed", "company_id", company.ID, "error", err)
		return nil, status.Error(codes.Internal, MsgInternal)
	}
	return h.toStruct(ctx, map[string]any{"requests": list})
}

// toStruct converts v through its JSON encoding so gRPC and HTTP clients see the same field names.
func (h *GRPCHandler) toStruct(ctx context.Context, v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		h.log.ErrorContext(ctx, "encode response failed", "error", err)
		return nil, status.Error(codes.Internal, MsgInternal)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Error(codes.Internal, MsgInternal)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		h.log.ErrorContext(ctx, "encode response failed", "error", err)
		return nil, status.Error(codes.Internal, MsgInternal)
	}
	return out, nil
}

// RegisterCompanyAuthServer registers srv under GRPCServiceName.
func RegisterCompanyAuthServer(s grpc.ServiceRegistrar, srv CompanyAuthServer) {
	s.RegisterService(&companyAuthServiceDesc, srv)
}

var companyAuthServiceDesc = grpc.ServiceDesc{
	ServiceName: GRPCServiceName,
	HandlerType: (*CompanyAuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetMe", Handler: unaryHandler(GRPCMethodGetMe, CompanyAuthServer.GetMe)},
		{MethodName: "ListRequests", Handler: unaryHandler(GRPCMethodListRequests, CompanyAuthServer.ListRequests)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffflow/companyauth/v1/company_auth.proto",
}

type emptyMethod func(CompanyAuthServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call emptyMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CompanyAuthServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CompanyAuthServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}
