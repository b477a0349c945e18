package config

import (
	"github.com/pkg/errors"
	"github.com/ykhdr/hashbench/common/amqp"
	"github.com/ykhdr/hashbench/common/config"
	"github.com/ykhdr/hashbench/common/consul"
	"github.com/ykhdr/hashbench/common/store/mongo"
	"github.com/ykhdr/hashbench/internal/hashcrack/digest"
	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/internal/metrics"
)

type SearchConfig struct {
	Digest          string `kdl:"digest"`
	CheckpointEvery uint64 `kdl:"checkpoint-every"`
	ProgressEvery   uint64 `kdl:"progress-every"`
}

// EngineConfig resolves the digest name; unknown names are an error.
func (c *SearchConfig) EngineConfig() (search.Config, error) {
	if !digest.IsKnownName(c.Digest) {
		return search.Config{}, errors.Errorf("unknown digest %q", c.Digest)
	}
	return search.Config{
		Digest:          digest.ParseName(c.Digest),
		CheckpointEvery: c.CheckpointEvery,
		ProgressEvery:   c.ProgressEvery,
	}, nil
}

// BenchConfig configures hashbench. A nil Consul, Mongo, Amqp or Metrics
// block disables that integration.
type BenchConfig struct {
	config.LogConfig
	ServerAddr    string          `kdl:"server-addr"`
	SearchConfig  *SearchConfig   `kdl:"search"`
	ConsulConfig  *consul.Config  `kdl:"consul"`
	MongoConfig   *mongo.Config   `kdl:"mongo"`
	AmqpConfig    *amqp.Config    `kdl:"amqp"`
	MetricsConfig *metrics.Config `kdl:"metrics"`
}

func DefaultConfig() *BenchConfig {
	def := search.DefaultConfig()
	return &BenchConfig{
		LogConfig:  config.LogConfig{LogLevel: "info"},
		ServerAddr: "127.0.0.1:8080",
		SearchConfig: &SearchConfig{
			Digest:          digest.DefaultName(),
			CheckpointEvery: def.CheckpointEvery,
			ProgressEvery:   def.ProgressEvery,
		},
	}
}

func InitializeConfig(args []string) (*BenchConfig, error) {
	cfg, err := config.InitializeConfig[BenchConfig](args, *DefaultConfig())
	if err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func Parse(data []byte) (*BenchConfig, error) {
	cfg, err := config.Parse[BenchConfig](data, *DefaultConfig())
	if err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *BenchConfig) fillDefaults() {
	if c.SearchConfig == nil {
		c.SearchConfig = DefaultConfig().SearchConfig
	}
	def := search.DefaultConfig()
	if c.SearchConfig.Digest == "" {
		c.SearchConfig.Digest = digest.DefaultName()
	}
	if c.SearchConfig.CheckpointEvery == 0 {
		c.SearchConfig.CheckpointEvery = def.CheckpointEvery
	}
	if c.SearchConfig.ProgressEvery == 0 {
		c.SearchConfig.ProgressEvery = def.ProgressEvery
	}
	if c.ConsulConfig != nil && c.ConsulConfig.Health == nil {
		c.ConsulConfig.Health = consul.DefaultHealthConfig()
	}
	if c.MongoConfig != nil && c.MongoConfig.Database == "" {
		c.MongoConfig.Database = mongo.DefaultDatabase
	}
	if c.AmqpConfig != nil {
		defaults := amqp.DefaultConfig()
		if c.AmqpConfig.ReconnectTimeout <= 0 {
			c.AmqpConfig.ReconnectTimeout = defaults.ReconnectTimeout
		}
		if c.AmqpConfig.ConsumerConfig == nil {
			c.AmqpConfig.ConsumerConfig = defaults.ConsumerConfig
		}
		if c.AmqpConfig.PublisherConfig == nil {
			c.AmqpConfig.PublisherConfig = defaults.PublisherConfig
		}
	}
	if c.MetricsConfig != nil {
		defaults := metrics.DefaultConfig()
		if c.MetricsConfig.Endpoint == "" {
			c.MetricsConfig.Endpoint = defaults.Endpoint
		}
		if c.MetricsConfig.Interval <= 0 {
			c.MetricsConfig.Interval = defaults.Interval
		}
		if c.MetricsConfig.ServiceName == "" {
			c.MetricsConfig.ServiceName = defaults.ServiceName
		}
	}
}
