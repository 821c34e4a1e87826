package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func validConfig() *Config {
	return &Config{
		DMR: DMRConfig{
			ColorCode:    1,
			Slot1:        true,
			Slot2:        true,
			Priority:     "rf",
			RFTimeoutMs:  1500,
			NetTimeoutMs: 1500,
			QueueSize:    16,
		},
	}
}

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// Spot-check a few defaults
	if cfg.DMR.ColorCode != 1 {
		t.Errorf("expected DMR.ColorCode default 1, got %d", cfg.DMR.ColorCode)
	}
	if !cfg.DMR.Duplex {
		t.Errorf("expected DMR.Duplex default true")
	}
	if cfg.DMR.Priority != "rf" {
		t.Errorf("expected DMR.Priority default rf, got %q", cfg.DMR.Priority)
	}
	if cfg.DMR.TGHangMs != 10000 {
		t.Errorf("expected DMR.TGHangMs default 10000, got %d", cfg.DMR.TGHangMs)
	}
	if cfg.Network.Port != 62031 {
		t.Errorf("expected Network.Port default 62031, got %d", cfg.Network.Port)
	}
	if cfg.Logging.Level == "" {
		t.Errorf("expected Logging.Level to be set (default info)")
	}
	if cfg.Metrics.Prometheus.Port != 9090 {
		t.Errorf("expected Prometheus.Port default 9090, got %d", cfg.Metrics.Prometheus.Port)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
dmr:
  color_code: 7
  priority: net
  tg_hang_ms: 0
network:
  enabled: true
  address: master.example.net
  radio_id: 3120001
  password: s3cret
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DMR.ColorCode != 7 || cfg.DMR.Priority != "net" || cfg.DMR.TGHangMs != 0 {
		t.Errorf("dmr section not applied: %+v", cfg.DMR)
	}
	if cfg.Network.Address != "master.example.net" || cfg.Network.RadioID != 3120001 {
		t.Errorf("network section not applied: %+v", cfg.Network)
	}
	// untouched keys keep their defaults
	if cfg.DMR.RFTimeoutMs != 1500 {
		t.Errorf("expected RFTimeoutMs default 1500, got %d", cfg.DMR.RFTimeoutMs)
	}
}

func TestLoadWithFlags(t *testing.T) {
	viper.Reset()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("dmr.color_code", 1, "")
	if err := fs.Parse([]string{"--dmr.color_code=12"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithFlags("", fs)
	if err != nil {
		t.Fatalf("LoadWithFlags returned error: %v", err)
	}
	if cfg.DMR.ColorCode != 12 {
		t.Errorf("expected flag override 12, got %d", cfg.DMR.ColorCode)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"channel id out of range", func(c *Config) { c.System.ChannelID = 16 }},
		{"channel number out of range", func(c *Config) { c.System.ChannelNo = 4096 }},
		{"color code out of range", func(c *Config) { c.DMR.ColorCode = 16 }},
		{"no slots", func(c *Config) { c.DMR.Slot1, c.DMR.Slot2 = false, false }},
		{"bad priority", func(c *Config) { c.DMR.Priority = "both" }},
		{"zero rf timeout", func(c *Config) { c.DMR.RFTimeoutMs = 0 }},
		{"negative hang", func(c *Config) { c.DMR.TGHangMs = -1 }},
		{"zero queue", func(c *Config) { c.DMR.QueueSize = 0 }},
		{"modem without port", func(c *Config) { c.Modem = ModemConfig{Enabled: true, Speed: 115200} }},
		{"network without address", func(c *Config) {
			c.Network = NetworkConfig{Enabled: true, Port: 62031, Password: "x", RadioID: 1, PingTime: 5, MaxMissed: 3, QueueSize: 8}
		}},
		{"network without password", func(c *Config) {
			c.Network = NetworkConfig{Enabled: true, Address: "h", Port: 62031, RadioID: 1, PingTime: 5, MaxMissed: 3, QueueSize: 8}
		}},
		{"invalid ACL prefix", func(c *Config) { c.Lookups = LookupConfig{UseACL: true, RadioACL: "ALLOW:1"} }},
		{"database without path", func(c *Config) { c.Database = DatabaseConfig{Enabled: true} }},
		{"invalid web port", func(c *Config) { c.Web = WebConfig{Enabled: true, Port: 70000} }},
		{"mqtt without broker", func(c *Config) { c.MQTT = MQTTConfig{Enabled: true} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	t.Run("valid", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
