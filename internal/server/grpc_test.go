package server

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/companyauth/handler"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/companyauth/service"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/identity"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/devotp"
	tokendomain "github.com/abdul-rozzaq/StaffFlow-backend/internal/token/domain"
)

const grpcTestSecret = "0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f"

func TestNewGRPCServer_RegistersHealth(t *testing.T) {
	s := NewGRPCServer(GRPCDeps{Resolver: identity.NewResolver(nil, nil, nil)})
	defer s.Stop()

	info := s.GetServiceInfo()
	if _, ok := info["grpc.health.v1.Health"]; !ok {
		t.Fatalf("services = %v, want grpc.health.v1.Health registered", info)
	}
	if _, ok := info[handler.GRPCServiceName]; ok {
		t.Errorf("%s registered without a CompanyAuth service", handler.GRPCServiceName)
	}
}

func TestRegisterServices_NilHealthFallsBack(t *testing.T) {
	s := grpc.NewServer()
	defer s.Stop()

	RegisterServices(s, GRPCDeps{})
	if len(s.GetServiceInfo()) != 1 {
		t.Errorf("registered %d services, want 1", len(s.GetServiceInfo()))
	}
}

// dialGRPC serves deps over an in-memory listener and returns a client connection to it.
func dialGRPC(t *testing.T, deps GRPCDeps) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer(deps)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newCompanyAuthDeps() GRPCDeps {
	store := newMemStore()
	store.tokens[1] = &tokendomain.AccessToken{CompanyID: 1, Secret: grpcTestSecret, CreatedAt: time.Now().UTC()}
	svc := service.NewAuthService(store, otpStore{store}, tokenStore{store},
		devotp.NewNotifier(devotp.NewMemoryStore()), 5*time.Minute, time.Second)
	return GRPCDeps{
		Resolver:    identity.NewResolver(tokenStore{store}, store, nil),
		CompanyAuth: svc,
	}
}

func TestGRPC_CompanyAuth(t *testing.T) {
	conn := dialGRPC(t, newCompanyAuthDeps())

	tests := []struct {
		name string
		auth string
		code codes.Code
	}{
		{"bearer token", "Bearer " + grpcTestSecret, codes.OK},
		{"token scheme", "Token " + grpcTestSecret, codes.OK},
		{"unknown token", "Bearer " + grpcTestSecret[:62] + "aa", codes.PermissionDenied},
		{"no token", "", codes.PermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if tt.auth != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, "authorization", tt.auth)
			}
			out := new(structpb.Struct)
			err := conn.Invoke(ctx, handler.GRPCMethodGetMe, &emptypb.Empty{}, out)
			if status.Code(err) != tt.code {
				t.Fatalf("code = %v, want %v (err %v)", status.Code(err), tt.code, err)
			}
			if tt.code != codes.OK {
				return
			}
			if got := out.GetFields()["name"].GetStringValue(); got != "Acme" {
				t.Errorf("name = %q, want %q", got, "Acme")
			}
			if got := out.GetFields()["stir"].GetStringValue(); got != "123456789" {
				t.Errorf("stir = %q, want %q", got, "123456789")
			}
		})
	}
}

func TestGRPC_ListRequests(t *testing.T) {
	conn := dialGRPC(t, newCompanyAuthDeps())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+grpcTestSecret)
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, handler.GRPCMethodListRequests, &emptypb.Empty{}, out); err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	list := out.GetFields()["requests"].GetListValue().GetValues()
	if len(list) != 2 {
		t.Fatalf("requests = %d, want 2", len(list))
	}
	if got := list[0].GetStructValue().GetFields()["description"].GetStringValue(); got != "Leak" {
		t.Errorf("first description = %q, want %q", got, "Leak")
	}
}

func TestGRPC_HealthNeedsNoToken(t *testing.T) {
	conn := dialGRPC(t, newCompanyAuthDeps())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", resp.GetStatus())
	}
}
