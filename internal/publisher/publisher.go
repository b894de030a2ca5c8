// Package publisher pushes a finished usage summary to Home Assistant, over
// MQTT, the HA REST API, or both.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/jgoulah/octousage/internal/config"
	"github.com/jgoulah/octousage/pkg/models"
)

// DefaultTopicPrefix is used when the MQTT config leaves it empty
const DefaultTopicPrefix = "octopus_energy"

// ErrNotEnabled is returned by Publish when no sink is configured
var ErrNotEnabled = errors.New("no publisher enabled in config (mqtt or home_assistant)")

// messagePublisher is the part of mqtt.Client the publisher needs
type messagePublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher handles publishing to Home Assistant
type Publisher struct {
	client      mqtt.Client
	messages    messagePublisher
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
	log         zerolog.Logger
}

// connectTimeout bounds the initial broker connection
const connectTimeout = 10 * time.Second

// New creates a new publisher (supports both MQTT and HA HTTP API).
// The MQTT connection is attempted once and gives up when ctx is done or
// connectTimeout passes.
func New(ctx context.Context, mqttCfg config.MQTTConfig, haCfg config.HAConfig, log zerolog.Logger) (*Publisher, error) {
	if err := validateHA(haCfg); err != nil {
		return nil, err
	}

	p := &Publisher{
		haConfig:   haCfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("octousage")
		opts.SetAutoReconnect(false)
		opts.SetConnectRetry(false)
		opts.SetConnectTimeout(connectTimeout)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client := mqtt.NewClient(opts)
		if err := waitToken(ctx, client.Connect(), connectTimeout); err != nil {
			return nil, fmt.Errorf("connecting to MQTT broker %s: %w", mqttCfg.Broker, err)
		}
		p.client = client
		p.messages = client
		p.topicPrefix = topicPrefix(mqttCfg)
		log.Debug().Str("broker", mqttCfg.Broker).Str("topic_prefix", p.topicPrefix).Msg("connected to MQTT broker")
	}

	return p, nil
}

// waitToken waits for a paho token without outliving ctx
func waitToken(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	}
}

func validateHA(haCfg config.HAConfig) error {
	if !haCfg.Enabled {
		return nil
	}
	if haCfg.URL == "" {
		return fmt.Errorf("Home Assistant URL is required when enabled")
	}
	if haCfg.Token == "" {
		return fmt.Errorf("Home Assistant token is required when enabled")
	}
	if haCfg.EntityID == "" {
		return fmt.Errorf("Home Assistant entity_id is required when enabled")
	}
	return nil
}

func topicPrefix(cfg config.MQTTConfig) string {
	if cfg.TopicPrefix == "" {
		return DefaultTopicPrefix
	}
	return cfg.TopicPrefix
}

// Enabled reports whether at least one sink is configured
func (p *Publisher) Enabled() bool {
	return p.messages != nil || p.haConfig.Enabled
}

// Publish sends the summary to every configured sink. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, s models.Summary) error {
	if !p.Enabled() {
		return ErrNotEnabled
	}

	if p.messages != nil {
		if err := p.publishMQTT(s); err != nil {
			return err
		}
	}

	if p.haConfig.Enabled {
		if err := p.publishHA(ctx, s); err != nil {
			return err
		}
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
