/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/params"
)

// Topics maps export ports to MQTT topics.
type Topics map[string]string

// Dial connects to broker with auto-reconnect enabled.
func Dial(ctx context.Context, broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Str("client_id", clientID).Msg("MQTT connection established")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost, will auto-reconnect")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, fmt.Errorf("mqtt connect: %w", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}

// MQTTSink publishes messages on MQTT. Binary records are base64 encoded.
type MQTTSink struct {
	client mqtt.Client
	topics Topics
	qos    byte
}

// NewMQTTSink publishes through client with QoS 1.
func NewMQTTSink(client mqtt.Client, topics Topics) *MQTTSink {
	return &MQTTSink{client: client, topics: topics, qos: 1}
}

func (s *MQTTSink) Publish(ctx context.Context, msg Message) error {
	topic := msg.Topic
	if topic == "" {
		topic = s.topics[msg.Port]
	}
	if topic == "" {
		return fmt.Errorf("mqtt: no topic for port %q", msg.Port)
	}
	payload := msg.Payload
	if msg.Format == params.FormatBase64 {
		payload = []byte(base64.StdEncoding.EncodeToString(msg.Payload))
	}

	token := s.client.Publish(topic, s.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish: %w", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	log.Debug().Str("topic", topic).Str("id", msg.ID).Int("size", len(payload)).Msg("Published")
	return nil
}

// Close disconnects with a short grace period.
func (s *MQTTSink) Close() error {
	if s.client.IsConnected() {
		s.client.Disconnect(250)
		log.Info().Msg("MQTT disconnected")
	}
	return nil
}
