package discovery

import "testing"

func TestRegistration_AgentRegistration(t *testing.T) {
	asr, err := Registration{
		Name:     "auth-service",
		Host:     "10.0.0.5",
		HTTPPort: 8080,
		GRPCPort: 9090,
		Tags:     []string{"http"},
	}.agentRegistration()
	if err != nil {
		t.Fatalf("agentRegistration: %v", err)
	}

	if asr.ID != "auth-service-10.0.0.5-8080" {
		t.Errorf("ID = %q", asr.ID)
	}
	if asr.Port != 8080 || asr.Address != "10.0.0.5" {
		t.Errorf("address = %s:%d", asr.Address, asr.Port)
	}
	if asr.Check == nil || asr.Check.GRPC != "10.0.0.5:9090" {
		t.Fatalf("check = %+v, want gRPC health check on 10.0.0.5:9090", asr.Check)
	}
}

func TestRegistration_WithoutGRPCHasNoCheck(t *testing.T) {
	asr, err := Registration{Name: "auth-service", Host: "localhost", HTTPPort: 8080}.agentRegistration()
	if err != nil {
		t.Fatal(err)
	}
	if asr.Check != nil {
		t.Fatalf("check = %+v, want nil", asr.Check)
	}
}

func TestRegistration_Invalid(t *testing.T) {
	tests := map[string]Registration{
		"no name": {Host: "h", HTTPPort: 1},
		"no host": {Name: "n", HTTPPort: 1},
		"no port": {Name: "n", Host: "h"},
	}
	for name, reg := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := reg.agentRegistration(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
