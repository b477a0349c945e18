package consul

import (
	"fmt"

	"github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Service struct {
	id      string
	address string
	port    int
}

func (s *Service) Id() string {
	return s.id
}

func (s *Service) Address() string {
	return s.address
}

func (s *Service) Port() int {
	return s.port
}

func (s *Service) Url() string {
	return serviceUrl(s.address, s.port)
}

type Client interface {
	HealthServices(serviceName string) ([]*Service, error)
	RegisterService(serviceName, address string, port int) (string, error)
	DeregisterService(serviceId string) error
}

type client struct {
	l      zerolog.Logger
	cfg    *Config
	client *api.Client
}

func NewClient(cfg *Config) (Client, error) {
	cl, err := api.NewClient(cfg.toApiConfig())
	if err != nil {
		return nil, errors.Wrap(err, "error create consul client")
	}
	return &client{
		client: cl,
		cfg:    cfg,
		l: log.With().
			Str("domain", "consul").
			Str("type", "client").
			Logger(),
	}, nil
}

// HealthServices lists the instances of serviceName passing their checks.
func (c *client) HealthServices(serviceName string) ([]*Service, error) {
	entries, _, err := c.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error query %s instances", serviceName)
	}
	services := make([]*Service, 0, len(entries))
	for _, srv := range entries {
		services = append(services, &Service{
			id:      srv.Service.ID,
			address: srv.Service.Address,
			port:    srv.Service.Port,
		})
	}
	return services, nil
}

// RegisterService registers this instance and returns its service id.
func (c *client) RegisterService(serviceName, address string, port int) (string, error) {
	serviceId := fmt.Sprintf("%s-%s:%d", serviceName, address, port)
	registrationReq := &api.AgentServiceRegistration{
		ID:      serviceId,
		Name:    serviceName,
		Address: address,
		Port:    port,
		Check:   c.cfg.Health.toApiConfig(serviceUrl(address, port)),
	}
	if err := c.client.Agent().ServiceRegister(registrationReq); err != nil {
		return "", errors.Wrapf(err, "error register %s", serviceId)
	}
	c.l.Info().Str("service-id", serviceId).Msg("Service registered")
	return serviceId, nil
}

func (c *client) DeregisterService(serviceId string) error {
	if err := c.client.Agent().ServiceDeregister(serviceId); err != nil {
		return errors.Wrapf(err, "error deregister %s", serviceId)
	}
	c.l.Info().Str("service-id", serviceId).Msg("Service deregistered")
	return nil
}

func serviceUrl(address string, port int) string {
	return fmt.Sprintf("http://%s:%d", address, port)
}
