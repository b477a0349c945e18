package consul

import "github.com/hashicorp/consul/api"

type HealthConfig struct {
	Interval string `kdl:"interval"`
	Timeout  string `kdl:"timeout"`
	Http     string `kdl:"http"`
}

func DefaultHealthConfig() *HealthConfig {
	return &HealthConfig{
		Interval: "5s",
		Timeout:  "2s",
		Http:     "/api/health",
	}
}

// toApiConfig builds the HTTP check against the registered address. Http
// may be a path, which is resolved against baseUrl.
func (c *HealthConfig) toApiConfig(baseUrl string) *api.AgentServiceCheck {
	if c == nil {
		return nil
	}
	checkUrl := c.Http
	if len(checkUrl) > 0 && checkUrl[0] == '/' {
		checkUrl = baseUrl + checkUrl
	}
	return &api.AgentServiceCheck{
		HTTP:                           checkUrl,
		Timeout:                        c.Timeout,
		Interval:                       c.Interval,
		DeregisterCriticalServiceAfter: "1m",
	}
}

type Config struct {
	Address string        `kdl:"address"`
	Health  *HealthConfig `kdl:"health"`
}

func (c *Config) toApiConfig() *api.Config {
	cfg := api.DefaultConfig()
	cfg.Address = c.Address
	return cfg
}
