package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/util"
	"github.com/google/uuid"
)

// MQTT publishes audit entries as json to <topic>/audit
type MQTT struct {
	log     *util.Logger
	client  paho.Client
	topic   string
	qos     byte
	timeout time.Duration
}

func init() {
	registry.Add("mqtt", NewMQTTFromConfig)
}

// NewMQTTFromConfig creates an mqtt audit log from generic config
func NewMQTTFromConfig(other map[string]interface{}) (api.AuditLogger, error) {
	cc := struct {
		Broker, User, Password, ClientID string
		Topic                            string
		QoS                              byte
		Timeout                          time.Duration
	}{
		Topic:   "fieldcalc",
		Timeout: 10 * time.Second,
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	if cc.Broker == "" {
		return nil, errors.New("missing broker")
	}

	if cc.ClientID == "" {
		cc.ClientID = "fieldcalc-" + uuid.New().String()[:8]
	}

	return NewMQTT(cc.Broker, cc.User, cc.Password, cc.ClientID, cc.Topic, cc.QoS, cc.Timeout)
}

// NewMQTT connects to the broker and creates an mqtt audit log
func NewMQTT(broker, user, password, clientID, topic string, qos byte, timeout time.Duration) (*MQTT, error) {
	log := util.NewLogger("mqtt")
	log.Redact(password)

	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opt := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetUsername(user).
		SetPassword(password).
		SetConnectTimeout(timeout).
		SetAutoReconnect(true)

	client := paho.NewClient(opt)

	if token := client.Connect(); !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect %s: timeout", broker)
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", broker, err)
	}

	log.DEBUG.Printf("connected to %s", broker)

	return &MQTT{
		log:     log,
		client:  client,
		topic:   strings.TrimSuffix(topic, "/") + "/audit",
		qos:     qos,
		timeout: timeout,
	}, nil
}

// Log implements the api.AuditLogger interface
func (m *MQTT) Log(entry api.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	token := m.client.Publish(m.topic, m.qos, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}

	return token.Error()
}

// Close disconnects from the broker
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
