// Package mqtt publishes call events to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	queueSize      = 256
)

// Config holds MQTT publisher configuration
type Config struct {
	Enabled     bool
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retained    bool
}

// client is the part of the paho client the publisher uses.
type client interface {
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher forwards call events to the broker. HandleCallEvent never
// blocks; events are queued and published from Start's goroutine.
type Publisher struct {
	config  Config
	log     *logger.Logger
	client  client
	queue   chan call.Event
	dropped atomic.Uint64
}

// CallMessage is the JSON payload published for each call event.
type CallMessage struct {
	Event     string    `json:"event"`
	Slot      uint8     `json:"slot"`
	Origin    string    `json:"origin"`
	CallType  string    `json:"call_type"`
	SrcID     uint32    `json:"src_id"`
	DstID     uint32    `json:"dst_id"`
	Group     bool      `json:"group"`
	Reason    string    `json:"reason,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Duration  float64   `json:"duration_s,omitempty"`
	Frames    uint32    `json:"frames,omitempty"`
	Errors    uint32    `json:"errors,omitempty"`
	RSSI      *RSSI     `json:"rssi,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RSSI summarises signal strength over an RF call.
type RSSI struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Average int `json:"avg"`
}

// New creates a new MQTT publisher
func New(config Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	if config.ClientID == "" {
		config.ClientID = "dvmhost"
	}

	p := &Publisher{
		config: config,
		log:    log.WithComponent("mqtt"),
		queue:  make(chan call.Event, queueSize),
	}
	if config.Enabled {
		opts := paho.NewClientOptions().AddBroker(config.Broker)
		opts.ClientID = config.ClientID
		opts.Username = config.Username
		opts.Password = config.Password
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		p.client = paho.NewClient(opts)
	}
	return p
}

// Start connects and publishes queued events until ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) error {
	if !p.config.Enabled {
		p.log.Info("MQTT publisher disabled")
		return nil
	}

	p.log.Info("Starting MQTT publisher",
		logger.String("broker", p.config.Broker),
		logger.String("client_id", p.config.ClientID))

	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		p.log.Warn("MQTT broker not reachable yet, retrying in background")
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	defer p.client.Disconnect(250)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Stopping MQTT publisher")
			return ctx.Err()
		case ev := <-p.queue:
			if err := p.publish(ev); err != nil {
				p.log.Warn("Publish failed",
					logger.String("topic", p.Topic(ev)),
					logger.Error(err))
			}
		}
	}
}

// HandleCallEvent queues an event for publishing.
func (p *Publisher) HandleCallEvent(ev call.Event) {
	if !p.config.Enabled {
		return
	}
	select {
	case p.queue <- ev:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded on a full queue.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Topic returns the topic an event is published to:
// <prefix>/slot<N>/<event type>.
func (p *Publisher) Topic(ev call.Event) string {
	return p.formatTopic(fmt.Sprintf("slot%d/%s", ev.Slot, ev.Type))
}

func (p *Publisher) publish(ev call.Event) error {
	payload, err := json.Marshal(NewCallMessage(ev))
	if err != nil {
		return err
	}

	token := p.client.Publish(p.Topic(ev), p.config.QoS, p.config.Retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish timed out")
	}
	return token.Error()
}

// NewCallMessage converts an event into its published form.
func NewCallMessage(ev call.Event) CallMessage {
	m := CallMessage{
		Event:     ev.Type.String(),
		Slot:      ev.Slot,
		Origin:    ev.Origin.String(),
		CallType:  ev.CallType.String(),
		SrcID:     ev.SrcID,
		DstID:     ev.DstID,
		Group:     ev.Group,
		Detail:    ev.Detail,
		Timestamp: ev.Timestamp,
	}
	if ev.Type == call.EventCallEnd {
		m.Reason = ev.Reason.String()
		m.Duration = ev.Duration.Seconds()
		m.Frames = ev.Frames
		m.Errors = ev.Errors
		if ev.RSSI.Samples > 0 {
			m.RSSI = &RSSI{Min: ev.RSSI.Min, Max: ev.RSSI.Max, Average: ev.RSSI.Average}
		}
	}
	return m
}

// formatTopic formats a topic with the configured prefix
func (p *Publisher) formatTopic(suffix string) string {
	prefix := strings.TrimSuffix(p.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s/%s", prefix, suffix)
}
