package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/plb/core/metrics"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	_, err := NewClientOptions(Config{Broker: "ssl://localhost:8883", UseTLS: true})
	assert.Error(t, err)
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = prev })
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)
	assert.Equal(t, "id", opts.ClientID)
}

func TestNewClientOptionsGeneratedID(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	assert.Contains(t, opts.ClientID, "plb-")
}

func TestNewRunPublisherRequiresBroker(t *testing.T) {
	_, err := NewRunPublisher(Config{})
	assert.Error(t, err)
}

func TestRecordRunPublishesJSON(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewRunPublisher(Config{Broker: "tcp://localhost:1883", Topic: "lab/plb/", QoS: 1})
	require.NoError(t, err)

	now := time.UnixMilli(1700000000000)
	ev := coremetrics.RunEvent{Source: "a.txt", Index: 2, Period: 7, Jobs: 10, Calibrations: 3, Rounds: 2, Duration: time.Millisecond, Feasible: true, Time: now}
	require.NoError(t, pub.RecordRun(ev))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "lab/plb/feasible", mc.published[0].topic)
	assert.Equal(t, byte(1), mc.published[0].qos)

	var msg runMessage
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &msg))
	assert.NotEmpty(t, msg.MessageID)
	assert.Equal(t, "a.txt", msg.Source)
	assert.Equal(t, 3, msg.Calibrations)
	assert.Equal(t, int64(1700000000000), msg.Timestamp)
}

func TestRecordBatchTopic(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewRunPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	require.NoError(t, pub.RecordBatch(coremetrics.BatchEvent{Source: "gen", Instances: 4, Infeasible: 1}))
	require.Len(t, mc.published, 1)
	assert.Equal(t, DefaultTopic+"/batch", mc.published[0].topic)
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	pub, err := NewRunPublisher(cfg)
	require.NoError(t, err)
	assert.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	pub.Disconnect()
	assert.Empty(t, mc.published)
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	withMockClient(t, mc)
	pub, err := NewRunPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, pub.RecordRun(coremetrics.RunEvent{Source: "x"}))
	assert.Len(t, mc.published, 2)
}

func TestRetryExhausted(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	withMockClient(t, mc)
	pub, err := NewRunPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	err = pub.RecordRun(coremetrics.RunEvent{})
	assert.ErrorIs(t, err, fail)
	assert.Len(t, mc.published, 3)
}

func TestMQTTSinkRegistered(t *testing.T) {
	assert.Contains(t, coremetrics.SinkTypes(), "mqtt")
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic, qos, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
