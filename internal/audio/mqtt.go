package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/transport/mqtt"
)

// Subscriber is the part of the MQTT client the audio feed needs.
type Subscriber interface {
	Topics() mqtt.Topics
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string)
}

// MQTTSource receives JSON Analysis frames published by an external capture process.
type MQTTSource struct {
	sub   Subscriber
	topic string
}

// NewMQTTSource listens on topic, or the default audio topic when empty.
func NewMQTTSource(sub Subscriber, topic string) *MQTTSource {
	if topic == "" {
		topic = sub.Topics().Audio()
	}
	return &MQTTSource{sub: sub, topic: topic}
}

func (m *MQTTSource) Run(ctx context.Context, fn func(Analysis)) error {
	err := m.sub.Subscribe(m.topic, 0, func(_ string, payload []byte) error {
		a, err := Decode(payload)
		if err != nil {
			return err
		}
		fn(a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe audio: %w", err)
	}
	<-ctx.Done()
	m.sub.Unsubscribe(m.topic)
	return nil
}

// Decode parses one JSON analysis frame, clamping amplitudes into range.
func Decode(payload []byte) (Analysis, error) {
	var a Analysis
	if err := json.Unmarshal(payload, &a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	for i, v := range a.Amplitudes {
		a.Amplitudes[i] = min(max(v, 0), MaxAmplitude)
	}
	if a.Time.IsZero() {
		a.Time = time.Now()
	}
	return a, nil
}
