package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jgoulah/octousage/pkg/models"
)

// HAState is the body of POST /api/states/<entity_id>
type HAState struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// haState reports the daily average as the entity state, with the rest of the
// summary as attributes
func haState(s models.Summary) HAState {
	return HAState{
		State: s.DailyAverage.StringFixed(2),
		Attributes: map[string]any{
			"unit_of_measurement": "kWh",
			"device_class":        "energy",
			"friendly_name":       "Octopus Energy daily average",
			"total_usage":         s.TotalUsage.StringFixed(2),
			"start_date":          s.StartDate.String(),
			"end_date":            s.EndDate.String(),
			"days":                len(s.Days),
			"readings":            s.Readings,
		},
	}
}

func (p *Publisher) publishHA(ctx context.Context, s models.Summary) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimRight(p.haConfig.URL, "/"), p.haConfig.EntityID)

	body, err := json.Marshal(haState(s))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	// 200 updates an existing entity, 201 creates it
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	p.log.Debug().Str("entity_id", p.haConfig.EntityID).Int("status", resp.StatusCode).Msg("updated Home Assistant state")
	return nil
}
