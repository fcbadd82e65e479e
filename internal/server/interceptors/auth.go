package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/platform/authz"
)

// IdentityUnary returns a unary server interceptor that gates the methods listed in requirements.
// For those methods the "authorization" metadata is resolved into request-scoped identities and the
// call fails with PermissionDenied when the predicate rejects them. Other methods pass through
// without touching the token store.
func IdentityUnary(resolver *identity.Resolver, requirements map[string]authz.Predicate) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		pred, ok := requirements[info.FullMethod]
		if !ok || pred == nil {
			return handler(ctx, req)
		}
		ctx = resolver.Bind(ctx, authorizationValue(ctx))
		// gRPC calls are treated as mutating for predicates that look at the method.
		if !pred(authz.FromContext(ctx, "POST")) {
			return nil, status.Error(codes.PermissionDenied, "permission denied")
		}
		return handler(ctx, req)
	}
}

// authorizationValue returns the raw authorization metadata value, or "".
func authorizationValue(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
