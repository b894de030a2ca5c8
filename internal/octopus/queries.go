package octopus

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jgoulah/octousage/internal/localtime"
	"github.com/jgoulah/octousage/pkg/models"
)

const (
	opObtainToken        = "obtainKrakenToken"
	opAccountViewer      = "accountViewer"
	opHalfHourlyReadings = "halfHourlyReadings"
)

// The API expects millisecond precision in UTC
const apiTimeLayout = "2006-01-02T15:04:05.000Z"

const obtainTokenMutation = `mutation obtainKrakenToken($input: ObtainJSONWebTokenInput!) {
  obtainKrakenToken(input: $input) {
    refreshToken
    refreshExpiresIn
    payload
    token
  }
}`

const accountViewerQuery = `query accountViewer {
  viewer {
    accounts {
      number
    }
  }
}`

const halfHourlyReadingsQuery = `query halfHourlyReadings($accountNumber: String!, $fromDatetime: DateTime, $toDatetime: DateTime) {
  account(accountNumber: $accountNumber) {
    properties {
      electricitySupplyPoints {
        halfHourlyReadings(fromDatetime: $fromDatetime, toDatetime: $toDatetime) {
          startAt
          endAt
          version
          value
        }
      }
    }
  }
}`

// Authenticate exchanges an email and password for a bearer token
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	var data struct {
		ObtainKrakenToken struct {
			Token string `json:"token"`
		} `json:"obtainKrakenToken"`
	}

	err := c.do(ctx, opObtainToken, "", obtainTokenMutation, map[string]any{
		"input": map[string]any{
			"email":    email,
			"password": password,
		},
	}, &data)
	if err != nil {
		return "", err
	}

	if data.ObtainKrakenToken.Token == "" {
		return "", errors.New("obtainKrakenToken: received empty token")
	}
	return data.ObtainKrakenToken.Token, nil
}

// FetchAccountNumber returns the first account visible to the token
func (c *Client) FetchAccountNumber(ctx context.Context, token string) (string, error) {
	var data struct {
		Viewer struct {
			Accounts []struct {
				Number string `json:"number"`
			} `json:"accounts"`
		} `json:"viewer"`
	}

	if err := c.do(ctx, opAccountViewer, token, accountViewerQuery, nil, &data); err != nil {
		return "", err
	}

	if len(data.Viewer.Accounts) == 0 || data.Viewer.Accounts[0].Number == "" {
		return "", errors.New("accountViewer: no accounts found for this login")
	}
	return data.Viewer.Accounts[0].Number, nil
}

// FetchReadings returns the half-hourly readings of the account's first
// electricity supply point in [from, to). A nil to leaves the window open-ended.
func (c *Client) FetchReadings(ctx context.Context, accountNumber, token string, from localtime.Instant, to *localtime.Instant) ([]models.Reading, error) {
	variables := map[string]any{
		"accountNumber": accountNumber,
		"fromDatetime":  from.UTC().Format(apiTimeLayout),
	}
	if to != nil {
		variables["toDatetime"] = to.UTC().Format(apiTimeLayout)
	}

	var data struct {
		Account struct {
			Properties []struct {
				ElectricitySupplyPoints []struct {
					HalfHourlyReadings []struct {
						StartAt string          `json:"startAt"`
						EndAt   string          `json:"endAt"`
						Version string          `json:"version"`
						Value   decimal.Decimal `json:"value"`
					} `json:"halfHourlyReadings"`
				} `json:"electricitySupplyPoints"`
			} `json:"properties"`
		} `json:"account"`
	}

	if err := c.do(ctx, opHalfHourlyReadings, token, halfHourlyReadingsQuery, variables, &data); err != nil {
		return nil, err
	}

	if len(data.Account.Properties) == 0 {
		return nil, fmt.Errorf("halfHourlyReadings: account %s has no properties", accountNumber)
	}
	points := data.Account.Properties[0].ElectricitySupplyPoints
	if len(points) == 0 {
		return nil, fmt.Errorf("halfHourlyReadings: account %s has no electricity supply points", accountNumber)
	}

	raw := points[0].HalfHourlyReadings
	readings := make([]models.Reading, 0, len(raw))
	for i, r := range raw {
		startAt, err := localtime.ParseInstant(r.StartAt)
		if err != nil {
			return nil, fmt.Errorf("halfHourlyReadings: reading %d startAt: %w", i, err)
		}
		endAt, err := localtime.ParseInstant(r.EndAt)
		if err != nil {
			return nil, fmt.Errorf("halfHourlyReadings: reading %d endAt: %w", i, err)
		}
		readings = append(readings, models.Reading{
			StartAt: startAt,
			EndAt:   endAt,
			Version: r.Version,
			Value:   r.Value,
		})
	}

	c.log.Debug().Int("readings", len(readings)).Str("from", from.String()).Msg("fetched half-hourly readings")
	return readings, nil
}
