package consul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthConfig_ResolvesPathAgainstService(t *testing.T) {
	check := DefaultHealthConfig().toApiConfig(serviceUrl("10.0.0.5", 8080))
	require.NotNil(t, check)
	assert.Equal(t, "http://10.0.0.5:8080/api/health", check.HTTP)
	assert.Equal(t, "5s", check.Interval)
	assert.Equal(t, "2s", check.Timeout)
}

func TestHealthConfig_AbsoluteUrlKept(t *testing.T) {
	cfg := &HealthConfig{Http: "http://checker:9000/ok", Interval: "1s", Timeout: "1s"}
	assert.Equal(t, "http://checker:9000/ok", cfg.toApiConfig("http://ignored:1").HTTP)
}

func TestHealthConfig_NilDisablesCheck(t *testing.T) {
	var cfg *HealthConfig
	assert.Nil(t, cfg.toApiConfig("http://x:1"))
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(&Config{Address: "127.0.0.1:8500"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
