package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/calllog"
	"github.com/dbehnke/dvmhost-go/pkg/config"
	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/dmr"
	"github.com/dbehnke/dvmhost-go/pkg/host"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/lookup"
	"github.com/dbehnke/dvmhost-go/pkg/metrics"
	"github.com/dbehnke/dvmhost-go/pkg/modem"
	"github.com/dbehnke/dvmhost-go/pkg/mqtt"
	"github.com/dbehnke/dvmhost-go/pkg/network"
	"github.com/dbehnke/dvmhost-go/pkg/radioid"
	"github.com/dbehnke/dvmhost-go/pkg/web"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	// Parse command line flags
	flags := pflag.NewFlagSet("dvmhost", pflag.ExitOnError)
	configFile := flags.StringP("config", "c", "config.yaml", "Path to configuration file")
	showVersion := flags.BoolP("version", "v", false, "Show version information")
	validate := flags.Bool("validate", false, "Validate configuration and exit")
	flags.String("logging.level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("dmr.debug", false, "Log every frame")
	_ = flags.Parse(os.Args[1:])

	// Show version
	if *showVersion {
		fmt.Printf("dvmhost %s (%s, built %s)\n", version, commit, buildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.LoadWithFlags(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate only mode
	if *validate {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	out, closeLog, err := logOutput(cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
	log.Info("Starting dvmhost",
		logger.String("version", version),
		logger.String("build_time", buildTime),
		logger.String("identity", cfg.System.Identity),
		logger.String("config_file", *configFile))
	web.SetVersionInfo(version, commit, buildTime)

	if err := run(cfg, log); err != nil {
		log.Error("dvmhost failed", logger.Error(err))
		closeLog()
		os.Exit(1)
	}
	log.Info("dvmhost stopped")
}

func logOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return f, func() { once.Do(func() { _ = f.Close() }) }, nil
}

func run(cfg *config.Config, log *logger.Logger) error {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Initialize wait group for goroutines
	var wg sync.WaitGroup
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && err != context.Canceled {
				log.Error(name+" stopped", logger.Error(err))
			}
		}()
	}

	events := &call.Dispatcher{}
	var observers host.Observers

	// Database, lookups and the call log
	var db *database.DB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewDB(database.Config{Path: cfg.Database.Path}, log.WithComponent("database"))
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Warn("Failed to close database", logger.Error(err))
			}
		}()
	}

	tables, err := lookup.Open(cfg.Lookups, db, log)
	if err != nil {
		return fmt.Errorf("lookups: %w", err)
	}
	start("Lookup reloader", func(ctx context.Context) error {
		tables.Run(ctx)
		return nil
	})

	if cfg.Lookups.RadioIDURL != "" {
		var store radioid.Store
		if db != nil {
			store = db.Radios()
		}
		syncer := radioid.NewSyncer(cfg.Lookups.RadioIDURL,
			time.Duration(cfg.Lookups.RadioIDSyncHrs)*time.Hour, tables.Radios, store, log)
		start("Radio id syncer", syncer.Start)
	}

	var recorder *calllog.Recorder
	var history web.CallHistory
	if db != nil {
		repo := db.CallRecords()
		history = repo
		recorder = calllog.New(repo, calllog.Options{
			MinDuration: time.Duration(cfg.Database.MinCallMs) * time.Millisecond,
			Retention:   time.Duration(cfg.Database.RetentionDays) * 24 * time.Hour,
		}, log)
		events.Add(recorder)
		start("Call log", recorder.Run)
	}

	// Telemetry
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		events.Add(collector)
		observers = append(observers, collector)
		if cfg.Metrics.Prometheus.Enabled {
			server := metrics.NewPrometheusServer(metrics.PrometheusConfig{
				Enabled: true,
				Port:    cfg.Metrics.Prometheus.Port,
				Path:    cfg.Metrics.Prometheus.Path,
			}, collector, log)
			start("Prometheus metrics server", server.Start)
		}
	}

	if cfg.MQTT.Enabled {
		publisher := mqtt.New(mqtt.Config{
			Enabled:     true,
			Broker:      cfg.MQTT.Broker,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			QoS:         cfg.MQTT.QoS,
			Retained:    cfg.MQTT.Retained,
		}, log)
		events.Add(publisher)
		start("MQTT publisher", publisher.Start)
	}

	if cfg.Web.Enabled {
		board := web.NewSlotBoard()
		observers = append(observers, board)
		src := web.Sources{Slots: board, History: history}
		if recorder != nil {
			src.Active = recorder
		}
		server := web.NewServer(cfg.Web, src, log)
		events.Add(server)
		start("Web server", server.Start)
	}

	// Modem
	var rf host.Modem
	if cfg.Modem.Enabled {
		m, err := modem.Open(cfg.Modem.Port, cfg.Modem.Speed, modem.Options{
			ColorCode: uint8(cfg.DMR.ColorCode),
			Duplex:    cfg.DMR.Duplex,
			TXDelayMs: cfg.Modem.TXDelay,
			RXLevel:   cfg.Modem.RXLevel,
			TXLevel:   cfg.Modem.TXLevel,
		}, log)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		defer func() { _ = m.Close() }()
		rf = m
		start("Modem", m.Run)
	} else {
		log.Warn("Modem disabled, running network only")
	}

	// Network
	var demux *network.SlotDemux
	if cfg.Network.Enabled {
		peer := network.NewPeer(cfg.Network, repeaterInfo(cfg, tables.Iden, log), log)
		demux = network.NewSlotDemux(peer, cfg.Network.QueueSize)
		start("Network peer", peer.Run)
	}

	// Slot controllers
	slots, err := newSlots(cfg, demux, tables, log)
	if err != nil {
		cancel()
		wg.Wait()
		return err
	}

	site := host.New(host.Options{
		TXHangMs: uint32(cfg.Modem.TXHang),
		Duplex:   cfg.DMR.Duplex,
	}, slots, rf, demux, events, observers, log)
	start("Host", site.Run)

	log.Info("dvmhost initialized",
		logger.Int("slots", len(slots)),
		logger.Int("event_sinks", events.Len()))

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal",
		logger.String("signal", sig.String()))

	// Cancel context to trigger graceful shutdown
	cancel()

	// Wait for all components to stop
	wg.Wait()
	return nil
}

func newSlots(cfg *config.Config, demux *network.SlotDemux, tables *lookup.Tables, log *logger.Logger) ([]*dmr.Control, error) {
	priority, err := call.ParsePriority(cfg.DMR.Priority)
	if err != nil {
		return nil, err
	}

	var rssi lookup.RSSIMapper
	if tables.RSSI.Len() > 0 {
		rssi = tables.RSSI
	}

	var slots []*dmr.Control
	for i, enabled := range []bool{cfg.DMR.Slot1, cfg.DMR.Slot2} {
		if !enabled {
			continue
		}
		slot := uint8(i + 1)
		collab := dmr.Collaborators{
			RadioIDs:   tables.Radios,
			Talkgroups: tables.Talkgroups,
			RSSI:       rssi,
			Logger:     log,
		}
		if demux != nil {
			collab.Network = demux.Slot(slot)
		}
		c, err := dmr.NewControl(dmr.Options{
			Slot:         slot,
			ColorCode:    uint8(cfg.DMR.ColorCode),
			Duplex:       cfg.DMR.Duplex,
			Priority:     priority,
			RFTimeoutMs:  uint32(cfg.DMR.RFTimeoutMs),
			NetTimeoutMs: uint32(cfg.DMR.NetTimeoutMs),
			CallLimitMs:  uint32(cfg.DMR.CallLimitSec) * 1000,
			TGHangMs:     uint32(cfg.DMR.TGHangMs),
			QueueSize:    cfg.DMR.QueueSize,
			PendingSize:  cfg.DMR.PendingSize,
			Verbose:      cfg.DMR.Verbose,
			Debug:        cfg.DMR.Debug,
		}, collab)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", slot, err)
		}
		slots = append(slots, c)
	}
	return slots, nil
}

// repeaterInfo describes the site to the master. With an iden table loaded
// the frequencies come from the configured channel, otherwise from the
// network section.
func repeaterInfo(cfg *config.Config, iden *lookup.IdenTable, log *logger.Logger) network.RepeaterInfo {
	rxFreq, txFreq := uint32(cfg.Network.RXFreq), uint32(cfg.Network.TXFreq)
	if iden != nil && iden.Len() > 0 {
		tx, rx, ok := iden.Frequencies(uint8(cfg.System.ChannelID), uint32(cfg.System.ChannelNo))
		if ok {
			txFreq, rxFreq = tx, rx
			log.Info("Site frequencies from iden table",
				logger.Int("channel_id", cfg.System.ChannelID),
				logger.Int("channel_no", cfg.System.ChannelNo),
				logger.Uint32("tx", tx),
				logger.Uint32("rx", rx))
		} else {
			log.Warn("Channel id not in iden table, using configured frequencies",
				logger.Int("channel_id", cfg.System.ChannelID))
		}
	}

	var enabled []string
	if cfg.DMR.Slot1 {
		enabled = append(enabled, "1")
	}
	if cfg.DMR.Slot2 {
		enabled = append(enabled, "2")
	}
	slots := "4" // both slots, HomeBrew convention
	if len(enabled) == 1 {
		slots = enabled[0]
	}
	return network.RepeaterInfo{
		Callsign:    strings.ToUpper(cfg.Network.Callsign),
		RXFreq:      rxFreq,
		TXFreq:      txFreq,
		TXPower:     uint8(cfg.Network.TXPower),
		ColorCode:   uint8(cfg.DMR.ColorCode),
		Latitude:    cfg.Network.Latitude,
		Longitude:   cfg.Network.Longitude,
		Height:      cfg.Network.Height,
		Location:    cfg.Network.Location,
		Description: cfg.Network.Description,
		Slots:       slots,
		URL:         cfg.Network.URL,
		SoftwareID:  cfg.Network.SoftwareID,
		PackageID:   cfg.Network.PackageID,
	}
}
