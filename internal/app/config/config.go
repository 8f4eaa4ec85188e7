package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/alert"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/opcua"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Data      DataConfig      `yaml:"data"`
	Nodes     NodesConfig     `yaml:"nodes"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	OPCUA     opcua.Config    `yaml:"opcua"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type DataConfig struct {
	Dir           string `yaml:"dir"`
	HistoryBlocks int    `yaml:"history_blocks"`
}

type NodesConfig struct {
	IDs      []string `yaml:"ids"`
	RealNode string   `yaml:"real_node"`
}

type BroadcastConfig struct {
	Keepalive time.Duration `yaml:"keepalive"`
}

type SimulatorConfig struct {
	// TickInterval <= 0 disables periodic drift.
	TickInterval time.Duration `yaml:"tick_interval"`
}

type AlertsConfig struct {
	Numbers  []string             `yaml:"numbers"`
	Twilio   alert.TwilioConfig   `yaml:"twilio"`
	Textbelt alert.TextbeltConfig `yaml:"textbelt"`
}

// PostgresConfig enables the durable prediction archive. An empty
// ConnString keeps history on the local file store only.
type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "./data"
	}
	if c.Data.HistoryBlocks <= 0 {
		c.Data.HistoryBlocks = 50
	}
	if len(c.Nodes.IDs) == 0 {
		c.Nodes.IDs = []string{"node0", "node1", "node2", "node3", "node4"}
	}
	if c.Nodes.RealNode == "" {
		c.Nodes.RealNode = "node0"
	}
	if c.Broadcast.Keepalive <= 0 {
		c.Broadcast.Keepalive = 20 * time.Second
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = "prediction_history"
	}
	if c.OPCUA.Enabled() {
		if c.OPCUA.NodeID == "" {
			c.OPCUA.NodeID = c.Nodes.RealNode
		}
		c.OPCUA.ApplyDefaults()
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	found := false
	for _, id := range c.Nodes.IDs {
		if id == c.Nodes.RealNode {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("nodes.real_node %q must be one of nodes.ids", c.Nodes.RealNode)
	}
	if c.OPCUA.Enabled() {
		if err := c.OPCUA.Validate(); err != nil {
			return fmt.Errorf("opcua config: %w", err)
		}
	}
	return nil
}
