package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	System   SystemConfig   `mapstructure:"system"`
	DMR      DMRConfig      `mapstructure:"dmr"`
	Modem    ModemConfig    `mapstructure:"modem"`
	Network  NetworkConfig  `mapstructure:"network"`
	Lookups  LookupConfig   `mapstructure:"lookups"`
	Database DatabaseConfig `mapstructure:"database"`
	Web      WebConfig      `mapstructure:"web"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// SystemConfig holds site identification
type SystemConfig struct {
	Identity    string `mapstructure:"identity"`
	Description string `mapstructure:"description"`
	ChannelID   int    `mapstructure:"channel_id"` // iden table entry
	ChannelNo   int    `mapstructure:"channel_no"` // logical channel number
}

// DMRConfig holds the per-channel protocol settings
type DMRConfig struct {
	ColorCode int    `mapstructure:"color_code"`
	Slot1     bool   `mapstructure:"slot1"`
	Slot2     bool   `mapstructure:"slot2"`
	Duplex    bool   `mapstructure:"duplex"`
	Priority  string `mapstructure:"priority"` // rf or net

	RFTimeoutMs  int `mapstructure:"rf_timeout_ms"`  // RF inactivity
	NetTimeoutMs int `mapstructure:"net_timeout_ms"` // network inactivity
	CallLimitSec int `mapstructure:"call_limit"`     // 0 disables
	TGHangMs     int `mapstructure:"tg_hang_ms"`
	QueueSize    int `mapstructure:"queue_size"` // frames per slot
	PendingSize  int `mapstructure:"pending_size"`

	Verbose bool `mapstructure:"verbose"`
	Debug   bool `mapstructure:"debug"`
}

// ModemConfig holds the MMDVM serial modem settings
type ModemConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
	Speed   int    `mapstructure:"speed"`
	TXDelay int    `mapstructure:"tx_delay"` // ms
	RXLevel int    `mapstructure:"rx_level"` // percent
	TXLevel int    `mapstructure:"tx_level"` // percent
	TXHang  int    `mapstructure:"tx_hang_ms"`
}

// NetworkConfig holds the HomeBrew master connection
type NetworkConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Port      int    `mapstructure:"port"`
	LocalPort int    `mapstructure:"local_port"`
	RadioID   int    `mapstructure:"radio_id"`
	Password  string `mapstructure:"password"`
	PingTime  int    `mapstructure:"ping_time"`  // Seconds between pings
	MaxMissed int    `mapstructure:"max_missed"` // Max missed pings before reconnect
	QueueSize int    `mapstructure:"queue_size"` // receive queue depth

	Callsign    string  `mapstructure:"callsign"`
	RXFreq      int     `mapstructure:"rx_freq"`
	TXFreq      int     `mapstructure:"tx_freq"`
	TXPower     int     `mapstructure:"tx_power"`
	Latitude    float64 `mapstructure:"latitude"`
	Longitude   float64 `mapstructure:"longitude"`
	Height      int     `mapstructure:"height"`
	Location    string  `mapstructure:"location"`
	Description string  `mapstructure:"description"`
	URL         string  `mapstructure:"url"`
	SoftwareID  string  `mapstructure:"software_id"`
	PackageID   string  `mapstructure:"package_id"`
}

// LookupConfig holds the id tables and their sources
type LookupConfig struct {
	RadioIDFile     string `mapstructure:"radio_id_file"`
	TalkgroupFile   string `mapstructure:"talkgroup_file"`
	IdenTableFile   string `mapstructure:"iden_table_file"`
	RSSIMappingFile string `mapstructure:"rssi_mapping_file"`
	UseACL          bool   `mapstructure:"use_acl"`
	RadioACL        string `mapstructure:"radio_acl"`     // PERMIT:/DENY: rule
	TalkgroupACL    string `mapstructure:"talkgroup_acl"` // PERMIT:/DENY: rule
	ReloadMinutes   int    `mapstructure:"reload_minutes"`
	RadioIDURL      string `mapstructure:"radio_id_url"` // download source, empty disables
	RadioIDSyncHrs  int    `mapstructure:"radio_id_sync_hours"`
}

// DatabaseConfig holds the sqlite store for ids and call records
type DatabaseConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	MinCallMs     int    `mapstructure:"min_call_ms"`    // shorter calls are not logged
	RetentionDays int    `mapstructure:"retention_days"` // 0 keeps every record
}

// WebConfig holds web dashboard configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// MQTTConfig holds MQTT client configuration
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         byte   `mapstructure:"qos"`
	Retained    bool   `mapstructure:"retained"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	return LoadWithFlags(configFile, nil)
}

// LoadWithFlags is Load with command line overrides. Flags are bound by
// their long name, so a flag named "dmr.color_code" overrides that key.
func LoadWithFlags(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// Set defaults
	setDefaults()

	// Set config file
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/dvmhost")
	}

	// Environment variables
	viper.SetEnvPrefix("DVM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if flags != nil {
		if err := viper.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal to struct
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// System defaults
	viper.SetDefault("system.identity", "DVMHOST")
	viper.SetDefault("system.description", "Go DMR site controller")
	viper.SetDefault("system.channel_id", 0)
	viper.SetDefault("system.channel_no", 0)

	// DMR defaults
	viper.SetDefault("dmr.color_code", 1)
	viper.SetDefault("dmr.slot1", true)
	viper.SetDefault("dmr.slot2", true)
	viper.SetDefault("dmr.duplex", true)
	viper.SetDefault("dmr.priority", "rf")
	viper.SetDefault("dmr.rf_timeout_ms", 1500)
	viper.SetDefault("dmr.net_timeout_ms", 1500)
	viper.SetDefault("dmr.call_limit", 180)
	viper.SetDefault("dmr.tg_hang_ms", 10000)
	viper.SetDefault("dmr.queue_size", 128)
	viper.SetDefault("dmr.pending_size", 32)
	viper.SetDefault("dmr.verbose", true)
	viper.SetDefault("dmr.debug", false)

	// Modem defaults
	viper.SetDefault("modem.enabled", false)
	viper.SetDefault("modem.port", "/dev/ttyUSB0")
	viper.SetDefault("modem.speed", 115200)
	viper.SetDefault("modem.tx_delay", 100)
	viper.SetDefault("modem.rx_level", 50)
	viper.SetDefault("modem.tx_level", 50)
	viper.SetDefault("modem.tx_hang_ms", 500)

	// Network defaults
	viper.SetDefault("network.enabled", false)
	viper.SetDefault("network.port", 62031)
	viper.SetDefault("network.local_port", 0)
	viper.SetDefault("network.ping_time", 5)
	viper.SetDefault("network.max_missed", 3)
	viper.SetDefault("network.queue_size", 256)
	viper.SetDefault("network.software_id", "dvmhost-go")
	viper.SetDefault("network.package_id", "dvmhost-go")

	// Lookup defaults
	viper.SetDefault("lookups.use_acl", false)
	viper.SetDefault("lookups.radio_acl", "PERMIT:ALL")
	viper.SetDefault("lookups.talkgroup_acl", "PERMIT:ALL")
	viper.SetDefault("lookups.reload_minutes", 0)
	viper.SetDefault("lookups.radio_id_url", "")
	viper.SetDefault("lookups.radio_id_sync_hours", 24)

	// Database defaults
	viper.SetDefault("database.enabled", true)
	viper.SetDefault("database.path", "dvmhost.db")
	viper.SetDefault("database.min_call_ms", 500)
	viper.SetDefault("database.retention_days", 0)

	// Web defaults
	viper.SetDefault("web.enabled", false)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// MQTT defaults
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.topic_prefix", "dvm/host")
	viper.SetDefault("mqtt.client_id", "dvmhost")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.retained", false)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
