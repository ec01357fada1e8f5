package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremetrics "github.com/kilianp07/plb/core/metrics"
	"github.com/kilianp07/plb/infra/logger"
)

// DefaultTopic is the topic prefix used when none is configured.
const DefaultTopic = "plb/runs"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	Topic      string      `json:"topic"`
	QoS        byte        `json:"qos"`
	Retain     bool        `json:"retain"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	LWTTopic   string      `json:"lwt_topic"`
	LWTPayload string      `json:"lwt_payload"`
	LWTQoS     byte        `json:"lwt_qos"`
	LWTRetain  bool        `json:"lwt_retain"`
	MaxRetries int         `json:"max_retries"`
	BackoffMS  int         `json:"backoff_ms"`
	TLSConfig  *tls.Config `json:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// RunPublisher publishes planning run events to an MQTT broker.
// It implements metrics.MetricsSink and metrics.BatchRecorder.
type RunPublisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewRunPublisher connects to the MQTT broker.
func NewRunPublisher(cfg Config) (*RunPublisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_publisher")
	p := &RunPublisher{
		topic:      strings.TrimSuffix(cfg.Topic, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if p.topic == "" {
		p.topic = DefaultTopic
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "plb-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

type runMessage struct {
	MessageID    string  `json:"message_id"`
	Source       string  `json:"source"`
	Index        int     `json:"index"`
	Period       int64   `json:"period"`
	Jobs         int     `json:"jobs"`
	Calibrations int     `json:"calibrations"`
	Rounds       int     `json:"rounds"`
	Seconds      float64 `json:"seconds"`
	Feasible     bool    `json:"feasible"`
	Timestamp    int64   `json:"timestamp"`
}

type batchMessage struct {
	MessageID  string  `json:"message_id"`
	Source     string  `json:"source"`
	Instances  int     `json:"instances"`
	Infeasible int     `json:"infeasible"`
	Failed     int     `json:"failed"`
	Seconds    float64 `json:"seconds"`
	Timestamp  int64   `json:"timestamp"`
}

// RunTopic returns the topic a run event is published on.
func (p *RunPublisher) RunTopic(ev coremetrics.RunEvent) string {
	return fmt.Sprintf("%s/%s", p.topic, ev.Outcome())
}

// BatchTopic returns the topic batch summaries are published on.
func (p *RunPublisher) BatchTopic() string { return p.topic + "/batch" }

// RecordRun publishes the event as JSON.
func (p *RunPublisher) RecordRun(ev coremetrics.RunEvent) error {
	msg := runMessage{
		MessageID:    uuid.NewString(),
		Source:       ev.Source,
		Index:        ev.Index,
		Period:       ev.Period,
		Jobs:         ev.Jobs,
		Calibrations: ev.Calibrations,
		Rounds:       ev.Rounds,
		Seconds:      ev.Duration.Seconds(),
		Feasible:     ev.Feasible,
		Timestamp:    ev.Time.UnixMilli(),
	}
	return p.publish(p.RunTopic(ev), msg)
}

// RecordBatch publishes the batch summary as JSON.
func (p *RunPublisher) RecordBatch(ev coremetrics.BatchEvent) error {
	msg := batchMessage{
		MessageID:  uuid.NewString(),
		Source:     ev.Source,
		Instances:  ev.Instances,
		Infeasible: ev.Infeasible,
		Failed:     ev.Failed,
		Seconds:    ev.Duration.Seconds(),
		Timestamp:  ev.Time.UnixMilli(),
	}
	return p.publish(p.BatchTopic(), msg)
}

func (p *RunPublisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *RunPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
