package notify

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTTransport delivers notifications over an MQTT broker.
type MQTTTransport struct {
	client mqtt.Client
	qos    byte
}

// MQTTOptions configures the MQTT transport.
type MQTTOptions struct {
	Broker   string
	ClientID string
	QoS      byte
}

// NewMQTTTransport creates and connects an MQTT transport. The underlying
// client reconnects on its own; Publish blocks until the broker acknowledges
// or the client gives up.
func NewMQTTTransport(opts MQTTOptions) (*MQTTTransport, error) {
	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(60 * time.Second)

	client := mqtt.NewClient(clientOpts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", opts.Broker, err)
	}

	return &MQTTTransport{client: client, qos: opts.QoS}, nil
}

func (t *MQTTTransport) Publish(_ context.Context, topic string, payload []byte) error {
	token := t.client.Publish(topic, t.qos, false, payload)
	token.Wait()
	return token.Error()
}

func (t *MQTTTransport) Close() error {
	t.client.Disconnect(1000)
	return nil
}
