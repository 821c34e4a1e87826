package config

import (
	"fmt"
	"strings"
)

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.System.ChannelID < 0 || cfg.System.ChannelID > 15 {
		return fmt.Errorf("system.channel_id must be between 0 and 15")
	}
	if cfg.System.ChannelNo < 0 || cfg.System.ChannelNo > 4095 {
		return fmt.Errorf("system.channel_no must be between 0 and 4095")
	}

	// Validate DMR config
	if cfg.DMR.ColorCode < 0 || cfg.DMR.ColorCode > 15 {
		return fmt.Errorf("dmr.color_code must be between 0 and 15")
	}
	if !cfg.DMR.Slot1 && !cfg.DMR.Slot2 {
		return fmt.Errorf("at least one of dmr.slot1 and dmr.slot2 must be enabled")
	}
	switch strings.ToLower(cfg.DMR.Priority) {
	case "", "rf", "net", "network":
	default:
		return fmt.Errorf("dmr.priority must be rf or net")
	}
	if cfg.DMR.RFTimeoutMs <= 0 || cfg.DMR.NetTimeoutMs <= 0 {
		return fmt.Errorf("dmr.rf_timeout_ms and dmr.net_timeout_ms must be positive")
	}
	if cfg.DMR.CallLimitSec < 0 || cfg.DMR.TGHangMs < 0 {
		return fmt.Errorf("dmr.call_limit and dmr.tg_hang_ms must not be negative")
	}
	if cfg.DMR.QueueSize <= 0 {
		return fmt.Errorf("dmr.queue_size must be positive")
	}
	if cfg.DMR.PendingSize < 0 {
		return fmt.Errorf("dmr.pending_size must not be negative")
	}

	// Validate modem config
	if cfg.Modem.Enabled {
		if cfg.Modem.Port == "" {
			return fmt.Errorf("modem.port is required when the modem is enabled")
		}
		if cfg.Modem.Speed <= 0 {
			return fmt.Errorf("modem.speed must be positive")
		}
		if cfg.Modem.TXHang < 0 {
			return fmt.Errorf("modem.tx_hang_ms must not be negative")
		}
	}

	// Validate network config
	if cfg.Network.Enabled {
		if cfg.Network.Address == "" {
			return fmt.Errorf("network.address is required when the network is enabled")
		}
		if cfg.Network.Port <= 0 || cfg.Network.Port > 65535 {
			return fmt.Errorf("network.port must be between 1 and 65535")
		}
		if cfg.Network.LocalPort < 0 || cfg.Network.LocalPort > 65535 {
			return fmt.Errorf("network.local_port must be between 0 and 65535")
		}
		if cfg.Network.Password == "" {
			return fmt.Errorf("network.password is required when the network is enabled")
		}
		if cfg.Network.RadioID <= 0 {
			return fmt.Errorf("network.radio_id is required when the network is enabled")
		}
		if cfg.Network.PingTime <= 0 || cfg.Network.MaxMissed <= 0 {
			return fmt.Errorf("network.ping_time and network.max_missed must be positive")
		}
		if cfg.Network.QueueSize <= 0 {
			return fmt.Errorf("network.queue_size must be positive")
		}
	}

	// Validate ACLs if enabled
	if cfg.Lookups.UseACL {
		for _, acl := range []string{cfg.Lookups.RadioACL, cfg.Lookups.TalkgroupACL} {
			if acl != "" && !strings.HasPrefix(acl, "PERMIT:") && !strings.HasPrefix(acl, "DENY:") {
				return fmt.Errorf("lookups: ACL must start with PERMIT: or DENY:")
			}
		}
	}

	// Validate database config
	if cfg.Database.Enabled && cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required when the database is enabled")
	}
	if cfg.Database.MinCallMs < 0 || cfg.Database.RetentionDays < 0 {
		return fmt.Errorf("database.min_call_ms and database.retention_days must not be negative")
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	// Validate MQTT config
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}

	// Validate metrics config
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
	}

	return nil
}
