package octopus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/octousage/internal/localtime"
	"github.com/jgoulah/octousage/internal/metrics"
)

type recordedRequest struct {
	Authorization string
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

// fakeKraken answers each operation with a canned body and records what it saw
type fakeKraken struct {
	t         *testing.T
	responses map[string]string
	status    int
	requests  []recordedRequest
}

func (f *fakeKraken) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.Equal(f.t, http.MethodPost, r.Method)
	require.Equal(f.t, "application/json", r.Header.Get("Content-Type"))

	var req recordedRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	req.Authorization = r.Header.Get("Authorization")
	f.requests = append(f.requests, req)

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = w.Write([]byte(f.responses[req.OperationName]))
}

func newTestClient(t *testing.T, f *fakeKraken, opts ...Option) *Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, opts...)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opObtainToken: `{"data":{"obtainKrakenToken":{"token":"tok-123","refreshToken":"r","refreshExpiresIn":3600,"payload":{}}}}`,
	}}
	c := newTestClient(t, f)

	token, err := c.Authenticate(context.Background(), "me@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	require.Len(t, f.requests, 1)
	assert.Empty(t, f.requests[0].Authorization)
	input := f.requests[0].Variables["input"].(map[string]any)
	assert.Equal(t, "me@example.com", input["email"])
	assert.Equal(t, "hunter2", input["password"])
}

func TestAuthenticate_UpstreamErrors(t *testing.T) {
	t.Parallel()

	raw := `[{"message":"Invalid data.","extensions":{"errorCode":"KT-CT-1138"}}]`
	f := &fakeKraken{responses: map[string]string{
		opObtainToken: `{"data":{"obtainKrakenToken":null},"errors":` + raw + `}`,
	}}
	m := metrics.New()
	c := newTestClient(t, f, WithMetrics(m))

	_, err := c.Authenticate(context.Background(), "me@example.com", "wrong")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.JSONEq(t, raw, string(upstream.Errors))
	assert.Equal(t, opObtainToken, upstream.Operation)
	assert.Contains(t, err.Error(), "Invalid data.")

	families, gatherErr := m.Registry().Gather()
	require.NoError(t, gatherErr)
	assert.NotEmpty(t, families)
}

func TestFetchAccountNumber(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opAccountViewer: `{"data":{"viewer":{"accounts":[{"number":"A-1234ABCD"},{"number":"A-9999"}]}}}`,
	}}
	c := newTestClient(t, f)

	number, err := c.FetchAccountNumber(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "A-1234ABCD", number)
	assert.Equal(t, "JWT tok-123", f.requests[0].Authorization)
}

func TestFetchAccountNumber_NoAccounts(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opAccountViewer: `{"data":{"viewer":{"accounts":[]}}}`,
	}}
	c := newTestClient(t, f)

	_, err := c.FetchAccountNumber(context.Background(), "tok-123")
	require.Error(t, err)
}

func TestFetchReadings(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opHalfHourlyReadings: `{"data":{"account":{"properties":[{"electricitySupplyPoints":[{"halfHourlyReadings":[
			{"startAt":"2022-09-05T00:00:00+09:00","endAt":"2022-09-05T00:30:00+09:00","version":"1","value":"0.25"},
			{"startAt":"2022-09-05T00:30:00+09:00","endAt":"2022-09-05T01:00:00+09:00","version":"2","value":"0.1"}
		]}]}]}}}`,
	}}
	c := newTestClient(t, f)

	from := localtime.InstantOf(time.Date(2022, 9, 4, 15, 0, 0, 0, time.UTC))
	to := from.Add(24 * time.Hour)

	readings, err := c.FetchReadings(context.Background(), "A-1234ABCD", "tok-123", from, &to)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.True(t, readings[0].StartAt.Equal(from))
	assert.Equal(t, 30*time.Minute, readings[0].EndAt.Sub(readings[0].StartAt))
	assert.Equal(t, "2", readings[1].Version)
	assert.True(t, decimal.RequireFromString("0.1").Equal(readings[1].Value))

	vars := f.requests[0].Variables
	assert.Equal(t, "A-1234ABCD", vars["accountNumber"])
	assert.Equal(t, "2022-09-04T15:00:00.000Z", vars["fromDatetime"])
	assert.Equal(t, "2022-09-05T15:00:00.000Z", vars["toDatetime"])
	assert.Equal(t, "JWT tok-123", f.requests[0].Authorization)
}

func TestFetchReadings_OpenEnded(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opHalfHourlyReadings: `{"data":{"account":{"properties":[{"electricitySupplyPoints":[{"halfHourlyReadings":[]}]}]}}}`,
	}}
	c := newTestClient(t, f)

	from := localtime.InstantOf(time.Date(2022, 9, 4, 15, 0, 0, 0, time.UTC))
	readings, err := c.FetchReadings(context.Background(), "A-1", "tok", from, nil)
	require.NoError(t, err)
	assert.Empty(t, readings)

	_, present := f.requests[0].Variables["toDatetime"]
	assert.False(t, present)
}

func TestFetchReadings_NaiveTimestampRejected(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opHalfHourlyReadings: `{"data":{"account":{"properties":[{"electricitySupplyPoints":[{"halfHourlyReadings":[
			{"startAt":"2022-09-05T00:00:00","endAt":"2022-09-05T00:30:00","version":"1","value":"0.25"}
		]}]}]}}}`,
	}}
	c := newTestClient(t, f)

	_, err := c.FetchReadings(context.Background(), "A-1", "tok", localtime.InstantOf(time.Now()), nil)
	require.ErrorIs(t, err, localtime.ErrInvalidInput)
}

func TestFetchReadings_NoSupplyPoints(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opHalfHourlyReadings: `{"data":{"account":{"properties":[{"electricitySupplyPoints":[]}]}}}`,
	}}
	c := newTestClient(t, f)

	_, err := c.FetchReadings(context.Background(), "A-1", "tok", localtime.InstantOf(time.Now()), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no electricity supply points")
}

func TestDo_AuthError(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{
		status:    http.StatusUnauthorized,
		responses: map[string]string{opAccountViewer: `{"detail":"expired"}`},
	}
	m := metrics.New()
	c := newTestClient(t, f, WithMetrics(m))

	_, err := c.FetchAccountNumber(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestDo_HTTPError(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{
		status:    http.StatusBadGateway,
		responses: map[string]string{opAccountViewer: `<html>bad gateway</html>`},
	}
	c := newTestClient(t, f)

	_, err := c.FetchAccountNumber(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.False(t, IsAuthError(err))
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, hasErrors(nil))
	assert.False(t, hasErrors(json.RawMessage(`null`)))
	assert.False(t, hasErrors(json.RawMessage(`[]`)))
	assert.True(t, hasErrors(json.RawMessage(`[{"message":"x"}]`)))
	assert.True(t, hasErrors(json.RawMessage(`{"message":"x"}`)))
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "***", maskToken("short"))
	assert.Equal(t, "eyJ0eX...9xYz", maskToken("eyJ0eXAiOiJKV1QiLCJhbGciOi9xYz"))
}

func TestObserveUpstreamOnSuccess(t *testing.T) {
	t.Parallel()

	f := &fakeKraken{responses: map[string]string{
		opAccountViewer: `{"data":{"viewer":{"accounts":[{"number":"A-1"}]}}}`,
	}}
	m := metrics.New()
	c := newTestClient(t, f, WithMetrics(m))

	_, err := c.FetchAccountNumber(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry(), "octousage_upstream_requests_total", "octousage_upstream_request_duration_seconds"))
}
