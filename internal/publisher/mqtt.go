package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jgoulah/octousage/pkg/models"
)

const publishTimeout = 5 * time.Second

type message struct {
	topic   string
	payload []byte
}

// mqttMessages builds the retained messages for one summary:
// the full JSON summary plus one plain state per figure
func mqttMessages(prefix string, s models.Summary) ([]message, error) {
	summary, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}

	return []message{
		{topic: prefix + "/summary", payload: summary},
		{topic: prefix + "/daily_average", payload: []byte(s.DailyAverage.StringFixed(2))},
		{topic: prefix + "/total_usage", payload: []byte(s.TotalUsage.StringFixed(2))},
	}, nil
}

func (p *Publisher) publishMQTT(s models.Summary) error {
	msgs, err := mqttMessages(p.topicPrefix, s)
	if err != nil {
		return err
	}

	for _, m := range msgs {
		token := p.messages.Publish(m.topic, 1, true, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publishing %s: timed out", m.topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing %s: %w", m.topic, err)
		}
		p.log.Debug().Str("topic", m.topic).Int("bytes", len(m.payload)).Msg("published")
	}
	return nil
}
