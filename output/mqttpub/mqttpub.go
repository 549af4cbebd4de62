package mqttpub

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gophertribe/ranging/output"
)

const (
	DefaultServer   = "tcp://localhost:1883"
	DefaultClientID = "ranging"
	DefaultTopic    = "ranging/%s"
)

type Config struct {
	Server   string `yaml:"server"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
	// Topic may contain a %s formatter that receives the sensor position.
	Topic string `yaml:"topic"`
}

type MQTTOutput struct {
	client mqtt.Client
	topic  string
}

func NewMQTT(cfg Config) (output.Output, error) {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTOutput{client: client, topic: cfg.Topic}, nil
}

func (m *MQTTOutput) Publish(readings []output.Reading) error {
	for _, r := range readings {
		payload, err := json.Marshal(r)
		if err != nil {
			return err
		}
		token := m.client.Publish(topicFor(m.topic, r), 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			return fmt.Errorf("mqtt publish: %w", token.Error())
		}
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

func topicFor(topic string, r output.Reading) string {
	if strings.Contains(topic, "%s") {
		return fmt.Sprintf(topic, r.Position)
	}
	return topic
}
