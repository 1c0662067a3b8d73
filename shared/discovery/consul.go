package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

// Registration describes a service instance announced to the Consul agent.
type Registration struct {
	Name     string
	Host     string
	HTTPPort int
	GRPCPort int
	Tags     []string
}

// Registry registers and deregisters service instances with a Consul agent.
type Registry struct {
	agent *consulapi.Agent
}

// NewConsulRegistry creates a Registry talking to the agent at addr.
func NewConsulRegistry(addr string) (*Registry, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &Registry{agent: client.Agent()}, nil
}

// Register announces reg and returns the instance id needed to deregister it.
func (r *Registry) Register(reg Registration) (string, error) {
	asr, err := reg.agentRegistration()
	if err != nil {
		return "", err
	}

	if err := r.agent.ServiceRegister(asr); err != nil {
		return "", fmt.Errorf("register %s with consul: %w", asr.ID, err)
	}

	return asr.ID, nil
}

// Deregister removes the instance registered under id.
func (r *Registry) Deregister(id string) error {
	return r.agent.ServiceDeregister(id)
}

func (reg Registration) agentRegistration() (*consulapi.AgentServiceRegistration, error) {
	if reg.Name == "" {
		return nil, errors.New("service name is required")
	}
	if reg.Host == "" {
		return nil, errors.New("service host is required")
	}
	if reg.HTTPPort <= 0 {
		return nil, errors.New("service http port is required")
	}

	asr := &consulapi.AgentServiceRegistration{
		ID:      fmt.Sprintf("%s-%s-%d", reg.Name, reg.Host, reg.HTTPPort),
		Name:    reg.Name,
		Address: reg.Host,
		Port:    reg.HTTPPort,
		Tags:    reg.Tags,
	}

	if reg.GRPCPort > 0 {
		asr.Check = &consulapi.AgentServiceCheck{
			GRPC:                           net.JoinHostPort(reg.Host, strconv.Itoa(reg.GRPCPort)),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		}
	}

	return asr, nil
}
