package utilities

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestRegisterHealthServer(t *testing.T) {
	srv := grpc.NewServer()
	defer srv.Stop()

	hs := RegisterHealthServer(srv, "auth-service")
	ctx := context.Background()

	for _, svc := range []string{"", "auth-service"} {
		resp, err := hs.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("Check(%q): %v", svc, err)
		}
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("Check(%q) = %v, want SERVING", svc, resp.GetStatus())
		}
	}

	hs.Shutdown()

	resp, err := hs.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: "auth-service"})
	if err != nil {
		t.Fatalf("Check after shutdown: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("status after shutdown = %v, want NOT_SERVING", resp.GetStatus())
	}
}
